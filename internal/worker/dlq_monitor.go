package worker

// dlq_monitor.go
// Background goroutine that periodically reports dead letter queue depth and
// the SMTP circuit state, so stuck notifications show up in the logs.

import (
	"context"
	"time"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/infra"

	"github.com/rs/zerolog/log"
)

const dlqTickInterval = 60 * time.Second

// BreakerReporter is satisfied by *infra.Mailer.
type BreakerReporter interface {
	BreakerState() infra.CBState
}

// StartDLQMonitor ticks every minute until ctx is cancelled.
func StartDLQMonitor(ctx context.Context, q Queue, smtp BreakerReporter) {
	go func() {
		ticker := time.NewTicker(dlqTickInterval)
		defer ticker.Stop()

		log.Info().Msg("dlq_monitor: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("dlq_monitor: shutting down")
				return
			case <-ticker.C:
				reportDLQ(ctx, q, smtp)
			}
		}
	}()
}

func reportDLQ(ctx context.Context, q Queue, smtp BreakerReporter) {
	for _, queue := range []string{QueueOfertas, QueueEmail} {
		n, err := DLQLength(ctx, q, queue)
		if err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("dlq_monitor: failed to read DLQ length")
			continue
		}
		if n > 0 {
			log.Warn().Str("queue", queue).Int64("pending", n).Msg("dlq_monitor: dead letters pending inspection")
		}
	}
	if smtp != nil {
		if st := smtp.BreakerState(); st != infra.CBClosed {
			log.Warn().Str("state", st.String()).Msg("dlq_monitor: SMTP circuit breaker not closed")
		}
	}
}
