package gesture

import (
	"context"
	"sync"
	"time"

	"github.com/gethiox/padmacro/internal/pkg/event"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session serializes access to one Detector, input processing and hold polling
// may be called from different goroutines.
type Session struct {
	id       uuid.UUID
	mutex    *sync.Mutex
	detector *Detector
	log      *zap.Logger
}

func NewSession(cfg Config, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.New()
	return &Session{
		id:       id,
		mutex:    &sync.Mutex{},
		detector: NewDetector(cfg),
		log:      log.With(zap.String("session", id.String())),
	}
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

func (s *Session) Process(in event.Input) []event.Gesture {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.detector.Process(in)
}

func (s *Session) PollHolds(now time.Time) []event.Gesture {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.detector.PollHolds(now)
}

func (s *Session) Config() Config {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.detector.Config()
}

func (s *Session) SetConfig(cfg Config) {
	s.mutex.Lock()
	s.detector.SetConfig(cfg)
	s.mutex.Unlock()
	s.log.Debug("detector config updated",
		zap.Duration("chord_window", cfg.ChordWindow),
		zap.Duration("double_tap_timeout", cfg.DoubleTapTimeout),
		zap.Duration("hold_threshold", cfg.HoldThreshold),
		zap.Bool("hold_once", cfg.HoldOnce),
	)
}

func (s *Session) Reset() {
	s.mutex.Lock()
	s.detector.Reset()
	s.mutex.Unlock()
}

// RunHoldPoller polls for holds every interval until ctx is done and hands
// non-empty results to sink. Caller is responsible for wg.Add.
func (s *Session) RunHoldPoller(ctx context.Context, wg *sync.WaitGroup, interval time.Duration, sink func([]event.Gesture)) {
	defer wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Debug("hold poller started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Debug("hold poller stopped")
			return
		case now := <-ticker.C:
			gestures := s.PollHolds(now)
			if len(gestures) > 0 {
				sink(gestures)
			}
		}
	}
}
