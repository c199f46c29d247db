// Package retry waits for a backing service to answer a ping, backing off
// exponentially between attempts.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudnotes/cloudnotes/internal/logger"
)

// Policy defines how long and how often to retry.
type Policy struct {
	Timeout       time.Duration // total time allowed for all attempts (ex: 30s)
	Initial       time.Duration // first wait between attempts, doubles each time (ex: 2s)
	MaxWait       time.Duration // cap for the wait between attempts (ex: 10s)
	PingTimeout   time.Duration // budget of a single attempt (ex: 5s)
	WarnThreshold int           // attempts logged as warnings before switching to errors
}

// Validate ensures all durations are usable.
func (p Policy) Validate() error {
	switch {
	case p.Timeout <= 0:
		return fmt.Errorf("Timeout must be > 0, got %v", p.Timeout)
	case p.Initial <= 0:
		return fmt.Errorf("Initial must be > 0, got %v", p.Initial)
	case p.MaxWait <= 0:
		return fmt.Errorf("MaxWait must be > 0, got %v", p.MaxWait)
	case p.PingTimeout <= 0:
		return fmt.Errorf("PingTimeout must be > 0, got %v", p.PingTimeout)
	case p.WarnThreshold < 0:
		return fmt.Errorf("WarnThreshold must be >= 0, got %d", p.WarnThreshold)
	}
	return nil
}

// PingFunc performs one connectivity check.
type PingFunc func(ctx context.Context) error

// Ping calls ping until it succeeds or the policy timeout is exhausted.
// service and addr only label log lines and errors.
func Ping(ctx context.Context, service, addr string, p Policy, ping PingFunc, log logger.Logger) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid %s retry policy: %w", service, err)
	}
	log = log.With(logger.String("service", service), logger.String("addr", addr))

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	log.Info("connecting", logger.Duration("timeout", p.Timeout))
	start := time.Now()
	wait := p.Initial

	for attempt := 1; ; attempt++ {
		pingCtx, pingCancel := context.WithTimeout(ctx, p.PingTimeout)
		err := ping(pingCtx)
		pingCancel()

		if err == nil {
			if attempt > 1 {
				log.Warn("connected after retry",
					logger.Int("attempts", attempt),
					logger.Duration("elapsed", time.Since(start)))
			} else {
				log.Info("connected")
			}
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Error("unavailable, giving up",
				logger.Int("attempts", attempt),
				logger.Error(err))
			return fmt.Errorf("%s unavailable at %s after %d attempts (timeout: %v): %w",
				service, addr, attempt, p.Timeout, err)

		case <-timer.C:
			logAttempt(log, attempt, timeLeft(ctx), wait, p.WarnThreshold, err)
			wait *= 2
			if wait > p.MaxWait {
				wait = p.MaxWait
			}
		}
	}
}

func logAttempt(log logger.Logger, attempt int, remaining, waited time.Duration, warnThreshold int, err error) {
	fields := []logger.Field{
		logger.Int("attempt", attempt),
		logger.Duration("waited", waited),
		logger.Error(err),
	}
	switch {
	case remaining < 10*time.Second:
		log.Error("still down, timeout approaching", append(fields, logger.Duration("remaining", remaining))...)
	case attempt <= warnThreshold:
		log.Warn("connection failed, retrying", fields...)
	default:
		log.Error("still unavailable", fields...)
	}
}

// timeLeft returns the remaining time before context deadline.
func timeLeft(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	return time.Until(deadline)
}
