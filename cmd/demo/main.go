// Command demo runs a small weft application showing the middleware
// pipeline, body-type dispatch, and error handling.
//
// Configuration is loaded from weft.yaml (or WEFT_CONFIG) with
// WEFT_-prefixed environment overrides:
//
//	WEFT_ADDR   - Listen address (default: ":8080")
//	WEFT_ENV    - Environment name (default: "development")
//	WEFT_PROXY  - Trust X-Forwarded-* headers ("true"/"false")
//	WEFT_SILENT - Suppress error logging ("true"/"false")
//	WEFT_KEYS   - Comma-separated signing keys
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weft-dev/weft/pkg/config"
	"github.com/weft-dev/weft/pkg/middleware"
	"github.com/weft-dev/weft/pkg/observability"
	"github.com/weft-dev/weft/pkg/server"
	"github.com/weft-dev/weft/pkg/weft"
)

func main() {
	if err := run(); err != nil {
		slog.Error("demo failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.Default()

	app := weft.New()
	app.Env = cfg.App.Env
	app.Proxy = cfg.App.Proxy
	app.SubdomainOffset = cfg.App.SubdomainOffset
	app.Keys = cfg.App.Keys
	app.Silent = cfg.App.Silent
	app.Logger = logger

	app.Use(middleware.Recovery())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logging(logger))
	app.Use(observability.Metrics())
	if cfg.Auth.Type == "jwt" {
		app.Use(middleware.JWT(middleware.JWTConfig{
			Issuer:   cfg.Auth.Issuer,
			Audience: cfg.Auth.Audience,
		}))
	}
	app.Use(routes())

	mux := http.NewServeMux()
	if cfg.Observability.Metrics.Enabled {
		mux.Handle(cfg.Observability.Metrics.Path, promhttp.Handler())
	}
	mux.Handle("/", app.Callback())

	srv := server.New(mux,
		server.WithAddr(cfg.Server.Addr),
		server.WithReadTimeout(cfg.Server.ReadTimeout),
		server.WithWriteTimeout(cfg.Server.WriteTimeout),
		server.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		server.WithLogger(logger),
	)
	return srv.ListenAndServe()
}

// routes is the innermost handler, dispatching on the request path to
// show each body kind. Unknown paths fall through to the framework's
// 404 default.
func routes() weft.Handler {
	return func(c *weft.Context, next weft.Next) error {
		switch c.Request.Path() {
		case "/":
			c.Response.SetBody("Hello World")
		case "/json":
			c.Response.SetBody(map[string]any{
				"env":       c.App().Env,
				"path":      c.Request.Path(),
				"requestID": c.State[middleware.RequestIDKey],
			})
		case "/stream":
			c.Response.SetType("text/plain; charset=utf-8")
			c.Response.SetBody(strings.NewReader("streamed without buffering\n"))
		case "/redirect":
			c.Response.Redirect("/")
		case "/error":
			return c.Throw(http.StatusTeapot, "short and stout")
		case "/boom":
			return fmt.Errorf("unexpected internal failure")
		}
		return next()
	}
}
