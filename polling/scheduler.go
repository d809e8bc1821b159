// Package polling keeps dashboard data fresh when the push channel is absent.
package polling

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultConnectedInterval    = 30 * time.Second
	DefaultDisconnectedInterval = 3 * time.Second
)

type Config struct {
	// ConnectedInterval is only a safety net against missed push messages.
	ConnectedInterval    time.Duration
	DisconnectedInterval time.Duration
	Logger               logrus.FieldLogger
}

// Scheduler triggers a full refresh on every interval expiry. The interval is
// short while the push channel is down and long while it is up.
type Scheduler struct {
	cfg    Config
	onTick func()
	log    logrus.FieldLogger

	mu        sync.Mutex
	connected bool
	interval  time.Duration
	started   bool

	resetChan chan struct{}
	stopChan  chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
}

func NewScheduler(cfg Config, onTick func()) *Scheduler {
	if cfg.ConnectedInterval <= 0 {
		cfg.ConnectedInterval = DefaultConnectedInterval
	}
	if cfg.DisconnectedInterval <= 0 {
		cfg.DisconnectedInterval = DefaultDisconnectedInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if onTick == nil {
		onTick = func() {}
	}
	return &Scheduler{
		cfg:       cfg,
		onTick:    onTick,
		log:       cfg.Logger.WithField("component", "polling"),
		interval:  cfg.DisconnectedInterval,
		resetChan: make(chan struct{}, 1),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *Scheduler) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// SetConnected switches regimes. The running ticker is re-armed with the new
// interval; ticks of the old interval never fire after that.
func (s *Scheduler) SetConnected(connected bool) {
	s.mu.Lock()
	if s.connected == connected {
		s.mu.Unlock()
		return
	}
	s.connected = connected
	if connected {
		s.interval = s.cfg.ConnectedInterval
	} else {
		s.interval = s.cfg.DisconnectedInterval
	}
	interval := s.interval
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"connected": connected, "interval": interval}).Info("polling interval changed")

	select {
	case s.resetChan <- struct{}{}:
	default:
	}
}

// Tick refreshes every partition, whatever the channel state.
func (s *Scheduler) Tick() {
	s.onTick()
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.Interval())
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Tick()
			case <-s.resetChan:
				ticker.Reset(s.Interval())
			case <-s.stopChan:
				return
			}
		}
	}()
}

// Stop clears the pending tick. Safe to call more than once, or before Start.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.mu.Lock()
		started := s.started
		s.started = true
		s.mu.Unlock()
		if started {
			<-s.done
		}
	})
}
