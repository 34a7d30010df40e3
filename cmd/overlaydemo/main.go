package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"overlaykit/internal/config"
	"overlaykit/internal/logging"
	"overlaykit/internal/telemetry"
	"overlaykit/internal/ui"
)

const shutdownTimeout = 3 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overlaydemo",
		Short: "Interactive demo of overlays, focus zones and filtered lists",
		Long: `overlaydemo renders a page of stories in the terminal. Each story opens
an overlay: an anchored menu, a confirmation dialog, a filterable list and a
pair of nested overlays. Tab moves focus, Escape or a click outside closes the
innermost overlay.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cfg := config.Register(cmd.Flags(), os.Environ())
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if err := config.Validate(*cfg); err != nil {
			return err
		}
		return run(cmd.Context(), *cfg)
	}
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Logging.FilePath != "" {
		if err := logging.Configure(cfg.Logging.FilePath, cfg.Logging.SlogLevel()); err != nil {
			return err
		}
		defer logging.Close()
	}
	logging.SetTraceEnabled(cfg.Logging.Trace)

	provider, err := telemetry.NewProvider(ctx)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	provider.Install()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(sctx); err != nil {
			logging.L().Warn("tracer shutdown", "error", err)
		}
	}()

	width, height := cfg.Width, cfg.Height
	if width == 0 || height == 0 {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			if width == 0 {
				width = w
			}
			if height == 0 {
				height = h
			}
		}
	}

	host, err := ui.NewHost(ui.Options{
		Width:  width,
		Height: height,
		Story:  cfg.Story,
		Tracer: provider.Tracer("overlaykit/ui"),
	})
	if err != nil {
		return err
	}
	logging.L().Info("starting", "story", cfg.Story, "width", width, "height", height, "mouse", cfg.Mouse)

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	if _, err := tea.NewProgram(host, opts...).Run(); err != nil {
		return err
	}
	return nil
}
