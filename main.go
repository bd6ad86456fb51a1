package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"quotedesk/auth"
	"quotedesk/collections"
	"quotedesk/config"
	"quotedesk/handlers"
	"quotedesk/logging"
	"quotedesk/metrics"
)

func main() {
	cfg := loadConfig(os.Stderr)
	metrics.Init()

	app := pocketbase.New()
	app.RootCmd.AddCommand(seedCommand(app))

	session := handlers.Session{
		Tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		CookieName: cfg.Auth.CookieName,
	}

	// Create collections, backfill counters and seed on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.MigrateQuotationExactTotals(app); err != nil {
			slog.Warn("main: quotation totals migration failed", "error", err)
		}
		if err := collections.MigrateQuotationCounters(app); err != nil {
			slog.Warn("main: quotation counter migration failed", "error", err)
		}
		if cfg.SeedDemo {
			if err := collections.Seed(app); err != nil {
				slog.Warn("main: demo seed failed", "error", err)
			}
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		loginLimit, err := handlers.RateLimit(cfg.Auth.LoginRateLimit)
		if err != nil {
			return err
		}

		se.Router.GET("/static/{path...}", apis.Static(os.DirFS(cfg.StaticDir), false))
		se.Router.GET("/metrics", apis.WrapStdHandler(promhttp.Handler()))

		// ── Auth (public) ────────────────────────────────────────
		se.Router.POST("/api/auth/register", handlers.HandleRegister(app, session)).BindFunc(loginLimit)
		se.Router.POST("/api/auth/login", handlers.HandleLogin(app, session)).BindFunc(loginLimit)
		se.Router.POST("/api/auth/verify", handlers.HandleVerify(app, session))
		se.Router.POST("/api/auth/logout", handlers.HandleLogout(session))

		// ── JSON API (token required) ───────────────────────────
		api := se.Router.Group("/api")
		api.BindFunc(handlers.RequireAuth(session))

		api.GET("/company", handlers.HandleCompanyGet(app))
		api.PUT("/company", handlers.HandleCompanyUpdate(app))

		// Fixed paths are registered before /quotations/{id}
		api.GET("/quotations", handlers.HandleQuotationList(app))
		api.GET("/quotations/next/number", handlers.HandleQuotationNextNumber(app, cfg.Quotations))
		api.GET("/quotations/stats", handlers.HandleQuotationStats(app))
		api.POST("/quotations/preview", handlers.HandleQuotationPreview())
		api.POST("/quotations", handlers.HandleQuotationCreate(app, cfg.Quotations))
		api.GET("/quotations/{id}", handlers.HandleQuotationGet(app))
		api.PUT("/quotations/{id}", handlers.HandleQuotationUpdate(app, cfg.Quotations))
		api.DELETE("/quotations/{id}", handlers.HandleQuotationDelete(app))
		api.GET("/quotations/{id}/pdf", handlers.HandleQuotationExport(app, handlers.FormatPDF))
		api.GET("/quotations/{id}/xlsx", handlers.HandleQuotationExport(app, handlers.FormatXLSX))

		api.POST("/products/import", handlers.HandleProductImport(app))
		api.POST("/products/import/errors", handlers.HandleProductImportErrors())

		for _, c := range []struct {
			path    string
			catalog handlers.Catalog
		}{
			{"/products", handlers.Products},
			{"/clients", handlers.Clients},
		} {
			api.GET(c.path, handlers.HandleCatalogList(app, c.catalog))
			api.POST(c.path, handlers.HandleCatalogSave(app, c.catalog))
			api.GET(c.path+"/search/{query}", handlers.HandleCatalogSearch(app, c.catalog))
			api.GET(c.path+"/{id}", handlers.HandleCatalogGet(app, c.catalog))
			api.PUT(c.path+"/{id}", handlers.HandleCatalogSave(app, c.catalog))
			api.DELETE(c.path+"/{id}", handlers.HandleCatalogDelete(app, c.catalog))
		}

		// ── HTML pages ───────────────────────────────────────────
		se.Router.GET("/login", handlers.HandleLoginPage(session))
		se.Router.POST("/login", handlers.HandleLoginSubmit(app, session)).BindFunc(loginLimit)
		se.Router.GET("/logout", handlers.HandleLogoutPage(session))

		pages := se.Router.Group("")
		pages.BindFunc(handlers.RequirePageAuth(session))
		pages.GET("/{$}", handlers.HandleDashboard(app))
		pages.GET("/quotations/{id}/print", handlers.HandleQuotationPrint(app))
		pages.DELETE("/quotations/{id}", handlers.HandleQuotationDeletePage(app))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		slog.Error("main: server stopped", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads .env and installs the logger at LOG_LEVEL before the
// configuration is built, so its warnings use that logger.
func loadConfig(w io.Writer) config.Config {
	envErr := config.LoadEnvFile()
	logging.Setup(w, config.LogLevel())
	if envErr != nil {
		slog.Debug("config: no .env file found, using environment variables")
	}
	return config.FromEnv()
}

// seedCommand creates the demo company, admin user and catalog without
// starting the server.
func seedCommand(app *pocketbase.PocketBase) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo company, admin user and catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.IsBootstrapped() {
				if err := app.Bootstrap(); err != nil {
					return err
				}
			}
			collections.Setup(app)
			if err := collections.Seed(app); err != nil {
				return err
			}
			slog.Info("seed: demo data ready", "email", collections.DemoAdminEmail)
			return nil
		},
	}
}
