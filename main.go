package main

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/padraicbc/dogapi/config"
	"github.com/padraicbc/dogapi/db"
	"github.com/padraicbc/dogapi/handlers"
	applog "github.com/padraicbc/dogapi/logger"
	mw "github.com/padraicbc/dogapi/middleware"
	"github.com/padraicbc/dogapi/pipeline"
	"github.com/padraicbc/dogapi/topaz"
)

//go:embed all:public/*
var embeddedFiles embed.FS

func main() {
	cfg := config.Load()
	cfg.RequireJWT()

	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	bdb := db.Setup(cfg)
	defer bdb.Close()

	if err := db.CreateTables(context.Background(), bdb); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	deps := pipeline.Deps{
		DB:             bdb,
		Client:         topaz.New(cfg.TopazBaseURL, cfg.TopazAPIKey),
		Log:            logger,
		Jurisdictions:  cfg.Jurisdictions,
		RaceFetchDelay: cfg.RaceFetchDelay,
		Timezone:       cfg.Timezone,
	}

	h := handlers.New(bdb, deps, cfg.JWTKey())

	e := echo.New()
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"*", "Authorization"},
		AllowCredentials: true,
	}))

	// Public
	e.POST("/api/signin", h.Signin)
	e.GET("/api/daily-races", h.DailyRaces)
	e.POST("/api/races/rank", h.RankRace)

	// Protected: require valid JWT in Authorization header
	priv := e.Group("/api", mw.JWT(cfg.JWTKey()))
	priv.GET("/races/today/all", h.TodayAll)
	priv.POST("/admin/compute", h.TriggerCompute)

	// Strip the "public/" prefix so URLs work correctly
	subFS, err := fs.Sub(embeddedFiles, "public")
	if err != nil {
		logger.Fatal("open embedded public fs failed", zap.Error(err))
	}
	fileServer := http.FileServer(http.FS(subFS))
	e.GET("/*", func(c echo.Context) error {
		path := c.Request().URL.Path

		// If request is for a static file, serve it
		if strings.Contains(path, ".") { // Matches JS, CSS, images, etc.
			http.StripPrefix("/", fileServer).ServeHTTP(c.Response(), c.Request())
			return nil
		}
		// Otherwise serve the dashboard page
		indexFile, err := subFS.Open("index.html")
		if err != nil {
			return c.NoContent(http.StatusNotFound)
		}
		defer indexFile.Close()

		return c.Stream(http.StatusOK, "text/html", indexFile)
	})

	if cfg.Debug {
		logger.Info("starting server", zap.String("mode", "debug"), zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil {
			logger.Fatal("server exited", zap.Error(err))
		}
		return
	}

	autoTLS := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(".cache"),
		HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
	}

	s := &http.Server{
		Addr:         ":443",
		Handler:      e,
		TLSConfig:    autoTLS.TLSConfig(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	if err := s.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
		logger.Error("tls server exited", zap.Error(err))
		os.Exit(1)
	}
}
