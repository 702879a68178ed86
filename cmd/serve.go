package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bufbuild/connect-go"
	grpchealth "github.com/bufbuild/connect-grpchealth-go"
	grpcreflect "github.com/bufbuild/connect-grpcreflect-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"droscher.com/WineLovers/configs"
	"droscher.com/WineLovers/pkg/catalog"
	"droscher.com/WineLovers/pkg/repository"
	"droscher.com/WineLovers/pkg/search"
	"droscher.com/WineLovers/pkg/server"
	"droscher.com/WineLovers/pkg/server/api/v1/apiv1connect"
)

const timeout = 5 * time.Second

type ServeCmd struct {
	ConfigFile string `default:".WineLovers.toml" help:"Path to config file" short:"c"`
}

func (s *ServeCmd) Run(cliContext *Context) error {
	logConfig := zap.NewProductionConfig()
	if cliContext != nil && cliContext.Debug {
		logConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, _ := logConfig.Build()
	defer logger.Sync() //nolint:errcheck // we don't care about logger sync errors

	conf, err := configs.GetConfig(s.ConfigFile, logger)
	if err != nil {
		logger.Error("error loading config", zap.Error(err))

		return err
	}

	store, closeStore, err := openStore(conf, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	engine := search.NewEngine(store, conf.Search, logger)

	interceptors := connect.WithInterceptors(
		server.NewLoggingInterceptor(logger),
		server.NewTimeoutInterceptor(conf.Server.RequestTimeout),
	)

	mux := http.NewServeMux()

	path, handler := apiv1connect.NewSearchServiceHandler(server.NewSearchServer(engine, logger),
		connect.WithCodec(server.JSONCodec{}), interceptors)
	mux.Handle(path, handler)

	// the search service carries plain JSON messages and has no descriptors to reflect
	reflector := grpcreflect.NewStaticReflector(grpchealth.HealthV1ServiceName)
	checker := grpchealth.NewStaticChecker(apiv1connect.SearchServiceName)
	mux.Handle(grpchealth.NewHandler(checker))
	mux.Handle(grpcreflect.NewHandlerV1(reflector))
	mux.Handle(grpcreflect.NewHandlerV1Alpha(reflector))
	mux.Handle("/metrics", promhttp.Handler())

	address := fmt.Sprintf(":%d", conf.Server.Port)

	// Configure CORS first
	corsHandler := configureCORS(mux)
	serverHandler := h2c.NewHandler(corsHandler, &http2.Server{})

	svr := &http.Server{
		Addr:              address,
		ReadHeaderTimeout: timeout,
		Handler:           serverHandler,
	}

	logger.Info("Starting server", zap.String("address", address), zap.String("store", conf.Store.Driver))

	err = svr.ListenAndServe()
	if err != nil {
		logger.Error("failed to start server", zap.Error(err))

		return err
	}

	return nil
}

// openStore opens the catalog store selected by Store.Driver. The returned func releases it.
func openStore(conf *configs.Config, logger *zap.Logger) (search.Store, func(), error) {
	if conf.Store.Driver == configs.StoreMemory {
		store, err := catalog.LoadMemoryStore(conf.Store.SeedFile, conf.Store.RatingsFile, logger)
		if err != nil {
			logger.Error("error loading catalog", zap.String("file", conf.Store.SeedFile), zap.Error(err))

			return nil, nil, err
		}

		return store, func() {}, nil
	}

	repo, err := repository.Open(conf, logger)
	if err != nil {
		logger.Error("error connecting to database", zap.Error(err))

		return nil, nil, err
	}

	store, err := repository.NewGuardedStore(repo, conf.Store, logger)
	if err != nil {
		repo.Close()

		return nil, nil, err
	}

	return store, repo.Close, nil
}

func configureCORS(mux *http.ServeMux) http.Handler {
	corsOpts := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS", "HEAD"},
		AllowedHeaders: []string{
			"accept",
			"accept-encoding",
			"accept-language",
			"cache-control",
			"connect-accept-encoding",
			"connect-content-encoding",
			"connect-protocol-version",
			"connect-timeout-ms",
			"content-encoding",
			"content-length",
			"content-type",
			"date",
			"grpc-accept-encoding",
			"grpc-encoding",
			"grpc-message",
			"grpc-status",
			"grpc-status-details-bin",
			"grpc-timeout",
			"keep-alive",
			"origin",
			"referer",
			"user-agent",
			"x-request-id",
			"x-accept-content-transfer-encoding",
			"x-accept-response-streaming",
			"x-grpc-web",
			"x-user-agent",
		},
		ExposedHeaders: []string{
			"connect-protocol-version",
			"grpc-message",
			"grpc-status",
			"grpc-status-details-bin",
			"x-request-id",
		},
		MaxAge:             86400, // 24 hours
		OptionsPassthrough: false, // Handle OPTIONS requests in CORS middleware
	})

	// Apply CORS to the main mux, then wrap with h2c
	corsHandler := corsOpts.Handler(mux)

	return corsHandler
}
