// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// GamificationMetrics tracks XP ledger activity and account events.
type GamificationMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	xpAdjustmentsTotal *Counter
	levelUpsTotal      *Counter
	loginTotal         *Counter
	registrationTotal  *Counter

	// Gauge metrics (point-in-time values)
	registeredUsers *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	userCounter UserCountProvider
}

// UserCountProvider supplies the registered user count for periodic
// collection. It keeps the telemetry layer from depending on the identity
// domain directly.
type UserCountProvider interface {
	Count(ctx context.Context) (int64, error)
}

// GamificationMetricsConfig holds configuration for gamification metrics.
type GamificationMetricsConfig struct {
	Meter       metric.Meter
	Logger      *zap.Logger
	UserCounter UserCountProvider
}

// NewGamificationMetrics creates a new GamificationMetrics instance.
func NewGamificationMetrics(cfg GamificationMetricsConfig) (*GamificationMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	gm := &GamificationMetrics{
		meter:       cfg.Meter,
		logger:      logger,
		stopChan:    make(chan struct{}),
		userCounter: cfg.UserCounter,
	}

	var err error

	gm.xpAdjustmentsTotal, err = NewCounter(
		cfg.Meter,
		"wikiboard_xp_adjustments_total",
		"Total number of XP ledger entries recorded",
		"{adjustments}",
	)
	if err != nil {
		return nil, err
	}

	gm.levelUpsTotal, err = NewCounter(
		cfg.Meter,
		"wikiboard_level_changes_total",
		"Total number of adjustments that changed a user's level",
		"{changes}",
	)
	if err != nil {
		return nil, err
	}

	gm.loginTotal, err = NewCounter(
		cfg.Meter,
		"wikiboard_login_total",
		"Total number of login attempts",
		"{logins}",
	)
	if err != nil {
		return nil, err
	}

	gm.registrationTotal, err = NewCounter(
		cfg.Meter,
		"wikiboard_registration_total",
		"Total number of account registrations",
		"{registrations}",
	)
	if err != nil {
		return nil, err
	}

	gm.registeredUsers, err = NewGauge(
		cfg.Meter,
		"wikiboard_registered_users",
		"Current number of registered accounts",
		"{users}",
	)
	if err != nil {
		return nil, err
	}

	return gm, nil
}

// AuthOutcome labels the result of a login attempt.
type AuthOutcome string

const (
	AuthOutcomeSuccess   AuthOutcome = "success"
	AuthOutcomeFailed    AuthOutcome = "failed"
	AuthOutcomeSuspended AuthOutcome = "suspended"
)

// RecordXPAdjustment records a committed XP ledger entry.
// Called from the application layer after the adjustment transaction commits.
func (gm *GamificationMetrics) RecordXPAdjustment(ctx context.Context, action string, delta int64, levelChanged bool) {
	direction := "gain"
	if delta < 0 {
		direction = "loss"
	}
	gm.xpAdjustmentsTotal.Inc(ctx,
		AttrXPAction.String(action),
		AttrXPDirection.String(direction),
	)
	if levelChanged {
		gm.levelUpsTotal.Inc(ctx, AttrXPAction.String(action))
	}
}

// RecordLogin records a login attempt and its outcome.
func (gm *GamificationMetrics) RecordLogin(ctx context.Context, outcome AuthOutcome) {
	gm.loginTotal.Inc(ctx, AttrAuthOutcome.String(string(outcome)))
}

// RecordRegistration records a completed account registration.
func (gm *GamificationMetrics) RecordRegistration(ctx context.Context) {
	gm.registrationTotal.Inc(ctx)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// Non-blocking; use Stop() to stop collection.
func (gm *GamificationMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	gm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go gm.runPeriodicCollection(ctx, interval)
	})
}

func (gm *GamificationMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	gm.collectUserMetrics(ctx)

	for {
		select {
		case <-gm.stopChan:
			gm.logger.Info("Stopping periodic gamification metrics collection")
			return
		case <-ctx.Done():
			gm.logger.Info("Context cancelled, stopping periodic gamification metrics collection")
			return
		case <-ticker.C:
			gm.collectUserMetrics(ctx)
		}
	}
}

func (gm *GamificationMetrics) collectUserMetrics(ctx context.Context) {
	if gm.userCounter == nil {
		gm.logger.Debug("No user count provider configured, skipping user metrics collection")
		return
	}

	count, err := gm.userCounter.Count(ctx)
	if err != nil {
		gm.logger.Warn("Failed to count registered users", zap.Error(err))
		return
	}
	gm.registeredUsers.Record(ctx, count)
}

// Stop stops the periodic collection.
func (gm *GamificationMetrics) Stop() {
	gm.stopOnce.Do(func() {
		close(gm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewGamificationMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
