package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"webpush-backend/client"
	"webpush-backend/config"
	"webpush-backend/logger"
	"webpush-backend/tui"
	"webpush-backend/useragent"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("erreur lors du chargement de la configuration: %w", err)
	}

	// Les logs vont dans un fichier pour ne pas corrompre l'interface
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.DemoLog)
	if err != nil {
		return err
	}
	defer log.Sync()

	listener, err := net.Listen("tcp", cfg.PushListen)
	if err != nil {
		return fmt.Errorf("erreur lors de l'ouverture du service push sur %s: %w", cfg.PushListen, err)
	}

	browser, err := useragent.New(useragent.Options{
		Origin:      cfg.BackendURL,
		PushBaseURL: "http://" + listener.Addr().String(),
		Log:         log.Named("useragent"),
	})
	if err != nil {
		listener.Close()
		return err
	}

	pushServer := &http.Server{
		Handler:           browser.PushHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("🚀 Service push démarré", zap.String("addr", listener.Addr().String()))
		if err := pushServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("❌ Erreur du service push", zap.Error(err))
		}
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := pushServer.Shutdown(ctx); err != nil {
			log.Error("❌ Erreur lors de l'arrêt du service push", zap.Error(err))
		}
	}()

	if _, err := browser.OpenPage("/index.html"); err != nil {
		return err
	}

	controller := client.NewController(browser, client.NewAPI(cfg.BackendURL), log.Named("page"))
	program := tea.NewProgram(tui.New(controller), tea.WithAltScreen())

	browser.OnNotification(func(n *useragent.Notification) {
		program.Send(tui.NotificationMsg{
			Title: n.Title(),
			Body:  n.Body(),
			Open: func(ctx context.Context) error {
				return browser.Click(ctx, n)
			},
		})
	})

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("erreur de l'interface: %w", err)
	}
	return nil
}
