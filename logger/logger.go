package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New construit un logger zap. format "json" donne la configuration de production,
// toute autre valeur la sortie console de développement.
// outputs remplace la sortie standard (ex: un fichier pour la démo TUI).
func New(levelStr, format string, outputs ...string) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	switch levelStr {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	if len(outputs) > 0 {
		cfg.OutputPaths = outputs
		cfg.ErrorOutputPaths = outputs
	}

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la création du logger: %w", err)
	}
	return log, nil
}
