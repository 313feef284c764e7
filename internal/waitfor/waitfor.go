// Package waitfor blocks container startup until declared dependencies accept
// connections. Migrations run against a live database, so the readiness gate
// sits in front of the migration step.
package waitfor

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/quiz-k8s/entryctl/internal/config"
)

// WaitAll probes each target in order until it is ready or its deadline
// expires. The first target that never becomes ready aborts startup.
func WaitAll(ctx context.Context, logger *slog.Logger, targets []config.WaitTarget) error {
	for _, target := range targets {
		if err := waitOne(ctx, logger, target); err != nil {
			return err
		}
	}
	return nil
}

func waitOne(ctx context.Context, logger *slog.Logger, target config.WaitTarget) error {
	timeout, err := target.ProbeTimeout()
	if err != nil {
		return err
	}
	interval, err := target.ProbeInterval()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Info("waiting for dependency", "target", target.Name, "kind", target.Kind, "timeout", timeout)

	var lastErr error
	for attempt := 1; ; attempt++ {
		lastErr = probe(ctx, target)
		if lastErr == nil {
			logger.Info("dependency ready", "target", target.Name, "attempts", attempt)
			return nil
		}
		logger.Debug("dependency not ready", "target", target.Name, "attempt", attempt, "error", lastErr)

		select {
		case <-ctx.Done():
			return fmt.Errorf("dependency %q not ready after %s: %w", target.Name, timeout, lastErr)
		case <-time.After(interval):
		}
	}
}

func probe(ctx context.Context, target config.WaitTarget) error {
	switch target.Kind {
	case "tcp":
		return probeTCP(ctx, target.Address)
	case "postgres":
		return probePostgres(ctx, target.DSN)
	default:
		return fmt.Errorf("unknown wait target kind %q", target.Kind)
	}
}

func probeTCP(ctx context.Context, address string) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return err
	}
	return conn.Close()
}
