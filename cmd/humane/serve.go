package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/humane/internal/billing"
	"github.com/jonathan/humane/internal/config"
	"github.com/jonathan/humane/internal/db"
	"github.com/jonathan/humane/internal/llm"
	"github.com/jonathan/humane/internal/metrics"
	"github.com/jonathan/humane/internal/quota"
	"github.com/jonathan/humane/internal/rewriting"
	"github.com/jonathan/humane/internal/server"
	"github.com/jonathan/humane/internal/server/middleware"
	"github.com/jonathan/humane/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var (
	servePort    int
	serveRules   string
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that scores and rewrites posts, keeps rewrite history and handles billing webhooks.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides PORT)")
	serveCmd.Flags().StringVar(&serveRules, "rules", "", "Path to a YAML rule table (overrides RULES_FILE)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply the database schema before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if serveRules != "" {
		cfg.RulesFile = serveRules
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.RequireServer(); err != nil {
		return err
	}

	tokens, err := tokenValidator(cfg)
	if err != nil {
		return err
	}

	scorer, err := loadScorer(cfg.RulesFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if serveMigrate {
		if err := database.Migrate(ctx); err != nil {
			return err
		}
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if cfg.UsageResetSchedule != "" {
		resetter, err := quota.NewResetter(database, cfg.UsageResetSchedule)
		if err != nil {
			return err
		}
		resetter.Start()
		defer resetter.Stop()
		log.Printf("[quota] usage resets on %q, next at %s", cfg.UsageResetSchedule, resetter.Next().Format("2006-01-02 15:04 MST"))
	}

	var webhooks server.WebhookProcessor
	if cfg.BillingEnabled() {
		var fetcher billing.SubscriptionFetcher
		if cfg.StripeSecretKey != "" {
			fetcher = billing.NewStripeFetcher(cfg.StripeSecretKey)
		}
		webhooks = billing.NewWebhookHandler(cfg.StripeWebhookSecret, database, fetcher)
	} else {
		log.Println("[billing] STRIPE_WEBHOOK_SECRET not set; webhook endpoint disabled")
	}

	rateLimit, err := ratelimit.LoadConfig()
	if err != nil {
		return err
	}

	srv, err := server.New(server.Deps{
		Config:    cfg,
		Scorer:    scorer,
		Rewriter:  rewriting.New(client),
		History:   database,
		Quota:     quota.NewChecker(database, cfg.FreeRewriteLimit),
		Webhooks:  webhooks,
		Tokens:    tokens,
		Metrics:   metrics.New(),
		RateLimit: rateLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}

// tokenValidator builds the bearer-token validator. Development servers may
// run without a secret, in which case only anonymous requests are served.
func tokenValidator(cfg *config.AppConfig) (middleware.TokenValidator, error) {
	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		if cfg.IsDevelopment() {
			log.Printf("[auth] %v; accepting anonymous requests only", err)
			return nil, nil
		}
		return nil, err
	}
	return server.NewJWTService(jwtCfg).AsTokenValidator(), nil
}
