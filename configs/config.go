package configs

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kkyr/fig"
	"go.uber.org/zap"
)

type DB struct {
	Host               string `default:"localhost"`
	Port               int    `default:"5432"`
	User               string `default:"postgres"`
	Password           string
	Database           string `default:"postgres"`
	MaxIdleConnections int    `default:"10"`
	MaxOpenConnections int    `default:"10"`
}

type Server struct {
	Port           int           `default:"8080"`
	RequestTimeout time.Duration `default:"10s"`
}

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Store struct {
	Driver   string `validate:"required"`
	SeedFile string
	// RatingsFile is optional; without it every wine is unrated.
	RatingsFile string
	// The postgres store stops querying for BreakerTimeout after BreakerFailures consecutive
	// failures.
	BreakerFailures uint32        `default:"5"`
	BreakerTimeout  time.Duration `default:"30s"`
	OptionCacheSize int           `default:"256"`
}

type Search struct {
	DefaultLimit                   int     `default:"50"`
	MaxLimit                       int     `default:"500"`
	LiveDefaultLimit               int     `default:"5"`
	LiveMaxLimit                   int     `default:"20"`
	NameSimilarityThreshold        float64 `default:"0.3"`
	DescriptionSimilarityThreshold float64 `default:"0.2"`
	FacetParallelism               int     `default:"4"`
}

type Config struct {
	DB     DB
	Server Server
	Store  Store
	Search Search
}

const envPrefix = "WINELOVERS" // env prefix for env vars

var ErrConfiguration = errors.New("configuration error")

func GetConfig(configFileName string, logger *zap.Logger) (*Config, error) {
	config := Config{}
	homeDir, _ := os.UserHomeDir()

	logger.Info("Loading config", zap.String("file", configFileName))

	err := fig.Load(&config, fig.File(configFileName), fig.Dirs(".", homeDir), fig.UseEnv(envPrefix))
	if err != nil {
		if strings.Contains(err.Error(), "file not found") {
			logger.Warn("Could not find config file", zap.String("file", configFileName))

			err = fig.Load(&config, fig.IgnoreFile(), fig.UseEnv(envPrefix))
			if err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

//nolint:cyclop // one check per setting
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StorePostgres:
		if c.DB.Password == "" {
			return fmt.Errorf("%w: DB.Password is required for the %s store", ErrConfiguration, StorePostgres)
		}

		if c.Store.BreakerFailures == 0 || c.Store.OptionCacheSize <= 0 {
			return fmt.Errorf("%w: Store.BreakerFailures and Store.OptionCacheSize must be positive", ErrConfiguration)
		}
	case StoreMemory:
		if c.Store.SeedFile == "" {
			return fmt.Errorf("%w: Store.SeedFile is required for the %s store", ErrConfiguration, StoreMemory)
		}
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrConfiguration, c.Store.Driver)
	}

	return c.Search.Validate()
}

func (s Search) Validate() error {
	if s.DefaultLimit <= 0 || s.MaxLimit < s.DefaultLimit {
		return fmt.Errorf("%w: search limits must satisfy 0 < DefaultLimit <= MaxLimit", ErrConfiguration)
	}

	if s.LiveDefaultLimit <= 0 || s.LiveMaxLimit < s.LiveDefaultLimit {
		return fmt.Errorf("%w: live search limits must satisfy 0 < LiveDefaultLimit <= LiveMaxLimit", ErrConfiguration)
	}

	if !inUnitInterval(s.NameSimilarityThreshold) || !inUnitInterval(s.DescriptionSimilarityThreshold) {
		return fmt.Errorf("%w: similarity thresholds must be within [0, 1]", ErrConfiguration)
	}

	if s.FacetParallelism <= 0 {
		return fmt.Errorf("%w: FacetParallelism must be positive", ErrConfiguration)
	}

	return nil
}

func inUnitInterval(value float64) bool {
	return value >= 0 && value <= 1
}
