package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avast/retry-go"
	"github.com/spf13/cobra"

	"github.com/abhisek/eduagent/internal/llm"
	"github.com/abhisek/eduagent/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web app and JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().Bool("wait-for-model", false, "Wait for the Ollama server to have the model before listening")
	cmd.Flags().Duration("wait-timeout", 2*time.Minute, "How long --wait-for-model keeps trying")
}

func runServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if wait, _ := cmd.Flags().GetBool("wait-for-model"); wait {
		timeout, _ := cmd.Flags().GetDuration("wait-timeout")
		if err := waitForModel(ctx, appConfig.LLM, timeout); err != nil {
			return err
		}
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	pipeline, provider, err := newPipeline(ctx, st)
	if err != nil {
		return err
	}

	srv, err := server.New(pipeline, st.GenerationRepo(), server.Options{
		AllowOrigins: appConfig.Server.AllowOrigins,
		Model:        provider.ModelID(),
	})
	if err != nil {
		return err
	}

	addr := appConfig.Server.Addr
	if a, _ := cmd.Flags().GetString("addr"); a != "" {
		addr = a
	}
	return srv.ListenAndServe(ctx, addr)
}

// waitForModel polls the Ollama server with exponential backoff until it
// lists the configured model or timeout elapses. Hosted providers need no
// wait.
func waitForModel(ctx context.Context, cfg llm.Config, timeout time.Duration) error {
	if cfg.Provider != "ollama" {
		slog.Info("skipping model wait", "provider", cfg.Provider)
		return nil
	}

	p, err := llm.NewOllamaProvider(cfg.Ollama)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	slog.Info("waiting for model", "base_url", cfg.Ollama.BaseURL, "model", cfg.Ollama.Model)
	err = retry.Do(
		func() error { return p.Ping(ctx) },
		retry.Context(ctx),
		retry.Attempts(50),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(10*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("model not ready", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("model %s not ready after %s: %w", cfg.Ollama.Model, timeout, err)
	}
	slog.Info("model ready", "model", cfg.Ollama.Model)
	return nil
}
