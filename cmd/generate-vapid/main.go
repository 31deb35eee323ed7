package main

import (
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"webpush-backend/config"
	"webpush-backend/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Erreur lors du chargement de la configuration: %v", err)
	}

	publicPath := flag.String("public", cfg.PublicKeyPath, "fichier DER de la clé publique")
	privatePath := flag.String("private", cfg.PrivateKeyPath, "fichier DER de la clé privée")
	flag.Parse()

	log.Println("🔐 Génération ou chargement des clés du serveur...")

	keys, err := services.NewServerKeysService(*publicPath, *privatePath, zap.NewNop())
	if err != nil {
		log.Fatalf("❌ Erreur lors de la génération des clés: %v", err)
	}
	privateKey, err := keys.PrivateKeyBase64()
	if err != nil {
		log.Fatalf("❌ Erreur lors de l'encodage de la clé privée: %v", err)
	}

	fmt.Println("\n✅ Clés du serveur prêtes!")
	fmt.Printf("\nClé publique (%s):\n", *publicPath)
	fmt.Println("VAPID_PUBLIC_KEY=" + keys.PublicKeyBase64())
	fmt.Printf("\nClé privée (%s):\n", *privatePath)
	fmt.Println("VAPID_PRIVATE_KEY=" + privateKey)
	fmt.Println("VAPID_SUBJECT=" + cfg.VAPIDSubject)
	fmt.Println("\n⚠️  Important: Ne partagez JAMAIS votre clé privée!")
}
