// Package worker runs the lifecycle sweeps and the event subscriber as a
// long-lived process.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"serialhub/internal/shared/constants"

	"serialhub/internal/infrastructure/scheduler"
	"serialhub/internal/interfaces/cli/app"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the lifecycle sweep worker",
		Long:  `Runs the expiration warning sweep and the expiry enforcement sweep on their configured cadences, plus a subscriber logging lifecycle events.`,
		RunE:  run,
	}
	cmd.Flags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	application, err := app.New(env)
	if err != nil {
		return err
	}
	defer application.Close()

	log := application.Logger
	serialCfg := application.Config.Serial

	manager, err := scheduler.NewManager(log)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	warningInterval := time.Duration(serialCfg.WarningSweepHours) * time.Hour
	if err := manager.RegisterWarningSweep(scheduler.SweepJobFunc(func(ctx context.Context) (int, error) {
		result, err := application.Serials.WarnExpiring(ctx)
		if result == nil {
			return 0, err
		}
		return result.Warned, err
	}), warningInterval); err != nil {
		return fmt.Errorf("failed to register warning sweep: %w", err)
	}

	enforcementInterval := time.Duration(serialCfg.EnforcementSweepMinutes) * time.Minute
	if err := manager.RegisterEnforcementSweep(scheduler.SweepJobFunc(func(ctx context.Context) (int, error) {
		result, err := application.Serials.ExpireSerials(ctx)
		if result == nil {
			return 0, err
		}
		return result.Expired, err
	}), enforcementInterval); err != nil {
		return fmt.Errorf("failed to register enforcement sweep: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Log every lifecycle event this instance sees; downstream consumers
	// subscribe to the same channel.
	go func() {
		err := application.EventBus.Subscribe(ctx, func(ctx context.Context, event string, payload json.RawMessage) {
			log.Infow("lifecycle event", "event", event, "payload", string(payload))
		})
		if err != nil && ctx.Err() == nil {
			log.Errorw("event subscriber exited", "error", err)
		}
	}()

	manager.Start()
	log.Infow("worker started",
		"warning_interval", warningInterval,
		"enforcement_interval", enforcementInterval,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Infow("shutting down worker", "signal", sig.String())

	cancel()
	if err := manager.Stop(); err != nil {
		log.Errorw("failed to stop scheduler", "error", err)
	}
	return nil
}
