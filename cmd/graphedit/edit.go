package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/cluso-graphedit/pkg/config"
	"github.com/dd0wney/cluso-graphedit/pkg/editor"
	"github.com/dd0wney/cluso-graphedit/pkg/logging"
	"github.com/dd0wney/cluso-graphedit/pkg/metrics"
)

func editCmd() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "edit [file]",
		Short: "Open the interactive editor",
		Long: "Open the terminal editor, optionally loading a saved graph first.\n" +
			subtle.Sprint("Logs go to the file named by logging.file; stdout belongs to the editor"),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if metricsAddr != "" {
				cfg.Metrics.Addr = metricsAddr
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			initial := ""
			if len(args) == 1 {
				initial = args[0]
			}
			return runEditor(cmd.Context(), cfg, initial)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this host:port while editing")
	return cmd
}

func runEditor(ctx context.Context, cfg *config.Config, initial string) error {
	logger, closer, err := logging.OpenFile(cfg.Logging.File, logging.ParseLevel(cfg.Logging.Level))
	if err != nil {
		return err
	}
	defer closer.Close()

	reg := metrics.NewRegistry()
	ctrl, err := editor.New(editor.Options{
		Width:              float64(cfg.Viewport.Width),
		Height:             float64(cfg.Viewport.Height),
		HitRadius:          cfg.Editor.HitRadius,
		AsyncPathThreshold: cfg.Editor.AsyncPathThreshold,
		Persistence:        newArchive(cfg),
		Logger:             logger,
		Metrics:            reg,
	})
	if err != nil {
		return fmt.Errorf("create editor: %w", err)
	}
	defer ctrl.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	m := newModel(gctx, ctrl, cfg)
	if initial != "" {
		m.location = initial
		if _, err := ctrl.Dispatch(gctx, editor.Load{Location: initial}); err != nil {
			m.setError(fmt.Errorf("load %s: %w", initial, err))
		} else {
			m.setMessage("loaded " + initial)
		}
		m.frame = ctrl.Frame()
	}

	logger.Info("editor started",
		logging.Session(ctrl.Session()),
		logging.String("metrics_addr", cfg.Metrics.Addr))

	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", reg.Handler())
		srv := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer cancel()
		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(gctx))
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})

	err = g.Wait()
	logger.Info("editor stopped", logging.Error(err))
	return err
}
