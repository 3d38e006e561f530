package reminder

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/meditrack/meditrack/internal/platform/clock"
)

// Runner drives the dispatcher on a fixed interval. It is owned by the
// process lifecycle: main starts it after wiring and stops it during
// shutdown.
type Runner struct {
	dispatcher *Dispatcher
	clock      clock.Clock
	interval   time.Duration
	logger     zerolog.Logger
	stop       chan struct{}
	done       chan struct{}
}

func NewRunner(dispatcher *Dispatcher, clk clock.Clock, interval time.Duration, logger zerolog.Logger) *Runner {
	return &Runner{
		dispatcher: dispatcher,
		clock:      clk,
		interval:   interval,
		logger:     logger,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the background loop. The first sweep happens after one
// full interval.
func (r *Runner) Start() {
	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		r.logger.Info().Dur("interval", r.interval).Msg("reminder runner started")
		for {
			select {
			case <-ticker.C:
				if _, err := r.dispatcher.Dispatch(context.Background(), r.clock.Now()); err != nil {
					r.logger.Error().Err(err).Msg("reminder sweep failed")
				}
			case <-r.stop:
				return
			}
		}
	}()
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (r *Runner) Stop() {
	close(r.stop)
	<-r.done
	r.logger.Info().Msg("reminder runner stopped")
}
