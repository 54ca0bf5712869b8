package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const sweepTimeout = 30 * time.Second

type expiredSessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// SessionSweeper periodically deletes expired sessions. Validation already
// treats them as invalid, so the sweeper only keeps the table small.
type SessionSweeper struct {
	purger   expiredSessionPurger
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewSessionSweeper(purger expiredSessionPurger, interval time.Duration) *SessionSweeper {
	return &SessionSweeper{
		purger:   purger,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. A non-positive interval disables it.
func (s *SessionSweeper) Start() {
	if s.purger == nil || s.interval <= 0 {
		close(s.done)
		return
	}

	go s.loop()

	log.Info().Dur("interval", s.interval).Msg("session sweeper started")
}

// Stop ends the loop and waits for an in-flight sweep to finish.
func (s *SessionSweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	<-s.done
}

func (s *SessionSweeper) loop() {
	defer close(s.done)

	// Run on startup as well as by interval.
	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *SessionSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	n, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("session sweep failed")
		return
	}
	if n > 0 {
		log.Info().Int64("deleted", n).Msg("expired sessions removed")
	}
}
