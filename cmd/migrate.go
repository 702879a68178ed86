package cmd

import (
	"context"

	"go.uber.org/zap"

	"droscher.com/WineLovers/configs"
	"droscher.com/WineLovers/pkg/repository"
)

type MigrateCmd struct {
	ConfigFile string `default:".WineLovers.toml" help:"Path to config file" short:"c"`
}

func (m *MigrateCmd) Run(cliContext *Context) error {
	logger := commandLogger(cliContext)
	defer logger.Sync() //nolint:errcheck // we don't care about logger sync errors

	conf, err := configs.GetConfig(m.ConfigFile, logger)
	if err != nil {
		logger.Error("error loading config", zap.Error(err))

		return err
	}

	repo, err := repository.Open(conf, logger)
	if err != nil {
		logger.Error("error connecting to database", zap.Error(err))

		return err
	}
	defer repo.Close()

	if err := repo.Migrate(context.Background()); err != nil {
		logger.Error("migration failed", zap.Error(err))

		return err
	}

	logger.Info("Migration complete")

	return nil
}

// commandLogger is the logger of the one-shot commands.
func commandLogger(cliContext *Context) *zap.Logger {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.DisableStacktrace = true

	if cliContext != nil && !cliContext.Debug {
		logConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger, _ := logConfig.Build()

	return logger
}
