// Package cli implements the mindvault CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/mindvault/internal/chat"
	"github.com/rcliao/mindvault/internal/config"
	"github.com/rcliao/mindvault/internal/embedding"
	"github.com/rcliao/mindvault/internal/emotion"
	"github.com/rcliao/mindvault/internal/journal"
	"github.com/rcliao/mindvault/internal/llm"
	"github.com/rcliao/mindvault/internal/logger"
	"github.com/rcliao/mindvault/internal/metrics"
	"github.com/rcliao/mindvault/internal/persona"
	"github.com/rcliao/mindvault/internal/store"
)

var (
	configPath   string
	dataDirFlag  string
	backendFlag  string
	logLevelFlag string
	formatFlag   string

	cfg *config.Config
)

// noModels marks commands that only read the journal and need no API key.
const noModels = "no-models"

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "mindvault",
	Short: "Mood-journaling chat companion",
	Long: "MindVault tags every message with an emotion, remembers it for similarity search, " +
		"keeps a plain-text journal, and replies as a coach, listener or cheerleader.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	f := RootCmd.PersistentFlags()
	f.StringVarP(&configPath, "config", "c", "", "Config file (default: ./mindvault.yaml if present)")
	f.StringVarP(&dataDirFlag, "data-dir", "d", "", "Data directory (default: $MINDVAULT_DATA_DIR or ~/.mindvault)")
	f.StringVar(&backendFlag, "store", "", "Memory store backend: sqlite or flat")
	f.StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	f.StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dataDirFlag != "" {
		c.DataDir = dataDirFlag
	}
	if backendFlag != "" {
		c.Store.Backend = backendFlag
	}
	if logLevelFlag != "" {
		c.Log.Level = logLevelFlag
	}
	if err := logger.Init(c.Log.Level, c.Log.Format); err != nil {
		return err
	}

	err = c.Finalize()
	if errors.Is(err, config.ErrMissingAPIKey) && cmd.Annotations[noModels] != "" {
		err = nil
	}
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

func openEmbedder(ctx context.Context) (embedding.Embedder, error) {
	return embedding.New(ctx, embedding.Options{
		Provider: cfg.Embed.Provider,
		Model:    cfg.Embed.Model,
		URL:      cfg.Embed.URL,
		APIKey:   cfg.Secrets.GoogleAPIKey,
	})
}

func openStore(ctx context.Context) (store.Store, error) {
	emb, err := openEmbedder(ctx)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}
	return store.Open(cfg.Store.Backend, cfg.Store.Path, emb)
}

func openJournal() *journal.Log {
	return journal.New(cfg.JournalPath)
}

// app is everything a chat needs, wired from the config.
type app struct {
	store    store.Store
	journal  *journal.Log
	sessions persona.SessionStore
	metrics  *metrics.Metrics
	chat     *chat.Orchestrator
}

func (a *app) Close() {
	a.sessions.Close()
	a.store.Close()
}

func openApp(ctx context.Context) (*app, error) {
	m := metrics.New()

	chatModel, err := llm.NewChatModel(ctx, llm.Options{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
		APIKey:   cfg.LLM.APIKey,
	})
	if err != nil {
		return nil, err
	}

	s, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := persona.OpenSessionStore(ctx, cfg.Session.Backend, cfg.Session.RedisURL, cfg.Session.TTL)
	if err != nil {
		s.Close()
		return nil, err
	}

	j := openJournal()
	classifier := emotion.New(chatModel,
		emotion.WithLogger(logger.With("emotion")),
		emotion.WithFallbackHook(m.ClassifyFallback),
	)
	orch := chat.New(classifier, s, j, sessions, chatModel,
		chat.WithLogger(logger.With("chat")),
		chat.WithMetrics(m),
	)
	return &app{store: s, journal: j, sessions: sessions, metrics: m, chat: orch}, nil
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
