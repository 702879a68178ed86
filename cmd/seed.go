package cmd

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"droscher.com/WineLovers/configs"
	"droscher.com/WineLovers/pkg/catalog"
	"droscher.com/WineLovers/pkg/repository"
)

var errNoSeedFile = errors.New("no wines file given")

type SeedCmd struct {
	ConfigFile  string `default:".WineLovers.toml"                       help:"Path to config file" short:"c"`
	WinesFile   string `help:"Wines CSV, defaults to Store.SeedFile"     short:"w"                  type:"existingfile"`
	RatingsFile string `help:"Ratings CSV, defaults to Store.RatingsFile" short:"r"                  type:"existingfile"`
}

func (s *SeedCmd) Run(cliContext *Context) error {
	logger := commandLogger(cliContext)
	defer logger.Sync() //nolint:errcheck // we don't care about logger sync errors

	conf, err := configs.GetConfig(s.ConfigFile, logger)
	if err != nil {
		logger.Error("error loading config", zap.Error(err))

		return err
	}

	winesFile, ratingsFile := s.files(conf)
	if winesFile == "" {
		return fmt.Errorf("%w: pass --wines-file or set Store.SeedFile", errNoSeedFile)
	}

	snapshot, err := catalog.ImportFiles(winesFile, ratingsFile, logger)
	if err != nil {
		logger.Error("error importing catalog", zap.String("file", winesFile), zap.Error(err))

		return err
	}

	repo, err := repository.Open(conf, logger)
	if err != nil {
		logger.Error("error connecting to database", zap.Error(err))

		return err
	}
	defer repo.Close()

	if err := repo.SaveSnapshot(context.Background(), snapshot); err != nil {
		return err
	}

	logger.Info("Seed complete", zap.Any("counts", snapshot.Counts()))

	return nil
}

func (s *SeedCmd) files(conf *configs.Config) (string, string) {
	winesFile, ratingsFile := s.WinesFile, s.RatingsFile

	if winesFile == "" {
		winesFile = conf.Store.SeedFile
	}

	if ratingsFile == "" {
		ratingsFile = conf.Store.RatingsFile
	}

	return winesFile, ratingsFile
}
