// cmd/run.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/labelpilot/internal/browser"
	"github.com/xkilldash9x/labelpilot/internal/bulkselect"
	"github.com/xkilldash9x/labelpilot/internal/config"
	"github.com/xkilldash9x/labelpilot/internal/dispatch"
	"github.com/xkilldash9x/labelpilot/internal/inject"
	"github.com/xkilldash9x/labelpilot/internal/ledger"
	"github.com/xkilldash9x/labelpilot/internal/observability"
	"github.com/xkilldash9x/labelpilot/internal/reconcile"
	"github.com/xkilldash9x/labelpilot/internal/resolve"
)

// newRunCmd creates the `run` command: attach to the console's browser and
// keep reconciling until the page goes away or a shutdown signal arrives.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Attach to the shipping console and run the automation loop",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags so they override config-file and env values with the
			// right precedence.
			if err := viper.BindPFlag("browser.remote_url", cmd.Flags().Lookup("attach")); err != nil {
				return err
			}
			if err := viper.BindPFlag("browser.start_url", cmd.Flags().Lookup("url")); err != nil {
				return err
			}
			return viper.BindPFlag("bulk.country", cmd.Flags().Lookup("country"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := observability.GetLogger()

			var cfg config.Config
			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("failed to unmarshal config with flag overrides: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			session, err := browser.New(ctx, cfg.Browser, logger)
			if err != nil {
				return fmt.Errorf("could not reach the browser: %w", err)
			}
			defer session.Close()

			led := ledger.New(session.Storage(), cfg.Print.CooldownWindow, logger)
			dispatcher := dispatch.New(browser.NewExecutor(session), cfg.Print.SettleDelay, logger)
			loop := reconcile.New(
				session,
				session,
				resolve.New(logger),
				dispatcher,
				led,
				inject.Set(logger, cfg.Bulk.Country),
				logger,
			)
			engine := bulkselect.New(session, bulkselect.Config{
				InterClickDelay: cfg.Bulk.InterClickDelay,
				SettleDelay:     cfg.Bulk.SettleDelay,
				ClearTimeout:    cfg.Bulk.ClearTimeout,
				PollInterval:    cfg.Bulk.PollInterval,
				MaxRetries:      cfg.Bulk.MaxRetries,
			}, logger)

			logger.Info("Automation loop starting.", zap.String("country", cfg.Bulk.Country))
			logger.Debug("Effective timing configuration.",
				zap.Duration("cooldown_window", cfg.Print.CooldownWindow),
				zap.Duration("settle_delay", cfg.Print.SettleDelay),
				zap.Duration("inter_click_delay", cfg.Bulk.InterClickDelay),
				zap.Duration("bulk_settle_delay", cfg.Bulk.SettleDelay),
				zap.Duration("clear_timeout", cfg.Bulk.ClearTimeout),
				zap.Duration("poll_interval", cfg.Bulk.PollInterval),
				zap.Int("max_retries", cfg.Bulk.MaxRetries))

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return loop.Run(gctx)
			})
			g.Go(func() error {
				return pumpHotkeys(gctx, session, loop)
			})
			g.Go(func() error {
				return pumpBulkRequests(gctx, session, engine, cfg.Bulk.Country, logger)
			})

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logger.Info("Automation loop stopped.")
			return nil
		},
	}

	runCmd.Flags().String("attach", "", "DevTools websocket URL of a running browser (ws://...)")
	runCmd.Flags().String("url", "", "page to open when launching a browser instead of attaching")
	runCmd.Flags().String("country", "", "country whose import rows the bulk-select helper checks")
	return runCmd
}

// pumpHotkeys forwards Ctrl+Shift+P gestures into manual triggers. Returns
// nil when the session's stream closes.
func pumpHotkeys(ctx context.Context, session *browser.Session, loop *reconcile.Loop) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-session.Hotkeys():
			if !ok {
				return nil
			}
			loop.TriggerManual(ctx)
		}
	}
}

// pumpBulkRequests runs one bulk-selection task per button click. A click
// while a task is in flight is dropped with a warning; anything else about a
// task's outcome is in its report.
func pumpBulkRequests(ctx context.Context, session *browser.Session, engine *bulkselect.Engine, country string, logger *zap.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-session.BulkRequests():
			if !ok {
				return nil
			}
			report, err := engine.Run(ctx, country)
			switch {
			case errors.Is(err, bulkselect.ErrBusy):
				logger.Warn("Bulk selection request ignored; a task is already running.")
			case err != nil:
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Error("Bulk selection task failed.", zap.Error(err))
			default:
				logger.Info("Bulk selection task finished.",
					zap.String("task_id", report.TaskID.String()),
					zap.Int("targeted", report.Targeted),
					zap.Int("checked", report.Checked),
					zap.Int("attempts", report.Attempts),
					zap.Bool("converged", report.Converged))
			}
		}
	}
}
