package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ContextPinger is satisfied by *sql.DB.
type ContextPinger interface {
	PingContext(ctx context.Context) error
}

// WaitForDB pings db every interval until it answers or ctx is done.
func WaitForDB(ctx context.Context, db ContextPinger, interval time.Duration, logger *logrus.Logger) error {
	for attempt := 1; ; attempt++ {
		err := db.PingContext(ctx)
		if err == nil {
			logger.WithField("attempts", attempt).Info("database available")
			return nil
		}
		logger.WithError(err).WithField("attempt", attempt).Warn("database unavailable, waiting...")

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for database: %w", ctx.Err())
		case <-time.After(interval):
		}
	}
}
