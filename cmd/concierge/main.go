package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chat-concierge/internal/common/config"
	"chat-concierge/internal/common/database"
	"chat-concierge/internal/common/errors"
	"chat-concierge/internal/common/logger"
	"chat-concierge/internal/connectors"
	"chat-concierge/internal/genai"
	"chat-concierge/internal/persona"
	"chat-concierge/internal/pipeline"
	"chat-concierge/internal/session"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("failed to load configuration", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("failed to open postgres", zap.Error(err))
	}
	defer pg.Close()
	if err := retryWithBackoff(ctx, 5, 2*time.Second, func() error {
		return pg.Ping(ctx)
	}); err != nil {
		zapLog.Fatal("postgres unreachable", zap.Error(err))
	}

	// The cache is best-effort: lookups fall through to postgres without it.
	var rdb *database.RedisClient
	if client, err := database.NewRedis(cfg.Database.Redis); err == nil {
		if err := client.Ping(ctx); err != nil {
			zapLog.Warn("redis unreachable, lookup cache disabled", zap.Error(err))
			client.Close()
		} else {
			rdb = client
			defer rdb.Close()
		}
	}

	genaiClient := genai.NewClient(cfg.Provider, log)
	manager := session.NewManager(session.GenAIFactory{Client: genaiClient}, log)
	webhooks := connectors.NewWebhookSubmitter(config.GetDuration(cfg.Webhooks.Timeout), log)
	printLogs := connectors.NewPrintLogStore(pg.GetDB(), rdb, cfg.Lookup, log)

	pipe := pipeline.New(pipeline.Dependencies{
		Manager:           manager,
		Webhooks:          webhooks,
		PrintLogs:         printLogs,
		SalesWebhookURL:   cfg.Webhooks.SalesURL,
		SupportWebhookURL: cfg.Webhooks.SupportURL,
		Logger:            log,
	})

	go serveMetrics(cfg.Server.MetricsAddress, zapLog)

	zapLog.Info("chat concierge ready",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	runConsole(ctx, pipe, manager, cfg)
	zapLog.Info("shutting down")
}

// serveMetrics exposes liveness, readiness, and prometheus metrics.
func serveMetrics(addr string, zapLog *zap.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"healthy"}`)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"ready"}`)
	})
	mux.Handle("/metrics", promhttp.Handler())

	zapLog.Info("metrics server listening", zap.String("address", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		zapLog.Error("metrics server stopped", zap.Error(err))
	}
}

func retryWithBackoff(ctx context.Context, attempts int, base time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(base * time.Duration(i+1)):
		}
	}
	return err
}

// runConsole drives the chat loop on stdin. Persona and mode are switchable
// between turns; the session manager notices and rebuilds the session.
func runConsole(ctx context.Context, pipe *pipeline.Pipeline, manager *session.Manager, cfg *config.Config) {
	pers := persona.Sales
	mode := session.ModeRetrieval

	creds := session.Credentials{
		APIKey:    cfg.Provider.APIKey,
		ProjectID: cfg.Vertex.ProjectID,
		Location:  cfg.Vertex.Location,
		CorpusID:  cfg.Vertex.CorpusID,
	}

	fmt.Printf("Chatting with %s. Commands: /persona sales|support, /mode search|retrieval, /clear, /quit\n", pers.DisplayName())
	fmt.Printf("> %s\n", pers.Placeholder())

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := handleCommand(line, &pers, &mode, manager); quit {
				return
			}
			continue
		}

		providerCfg := session.ProviderConfig{Mode: effectiveMode(pers, mode), Credentials: creds}
		res, err := pipe.HandleTurn(ctx, pers, providerCfg, line)
		if err != nil {
			if errors.IsConfiguration(err) {
				fmt.Printf("[config] %s\n", err)
			} else {
				fmt.Printf("[error] %s\n", err)
			}
			continue
		}

		fmt.Printf("%s: %s\n", pers.DisplayName(), res.AssistantText)
		if res.OutcomeMessage != "" {
			fmt.Println(res.OutcomeMessage)
		}
	}
}

func handleCommand(line string, pers *persona.Persona, mode *session.ProviderMode, manager *session.Manager) bool {
	parts := strings.Fields(line)
	switch parts[0] {
	case "/quit", "/exit":
		return true
	case "/clear":
		manager.Invalidate()
		fmt.Println("Conversation cleared.")
	case "/persona":
		if len(parts) < 2 {
			fmt.Println("Usage: /persona sales|support")
			return false
		}
		p, err := persona.Parse(parts[1])
		if err != nil {
			fmt.Println(err)
			return false
		}
		*pers = p
		fmt.Printf("Now chatting with %s.\n", p.DisplayName())
	case "/mode":
		if len(parts) < 2 {
			fmt.Println("Usage: /mode search|retrieval")
			return false
		}
		switch session.ProviderMode(parts[1]) {
		case session.ModeSearch:
			*mode = session.ModeSearch
		case session.ModeRetrieval:
			*mode = session.ModeRetrieval
		default:
			fmt.Printf("unknown mode %q\n", parts[1])
			return false
		}
		fmt.Printf("Mode set to %s.\n", *mode)
	default:
		fmt.Printf("Unknown command %s\n", parts[0])
	}
	return false
}

// effectiveMode pins the support persona to search; only the sales persona
// can be backed by the retrieval corpus.
func effectiveMode(p persona.Persona, requested session.ProviderMode) session.ProviderMode {
	if p == persona.Support {
		return session.ModeSearch
	}
	return requested
}
