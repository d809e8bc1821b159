// Package dashboard mounts the live order synchronization for one open view
// and releases every resource it acquired on Unmount.
package dashboard

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-dashboard/invalidation"
	"github.com/yeremiapane/restaurant-dashboard/models"
	"github.com/yeremiapane/restaurant-dashboard/polling"
	"github.com/yeremiapane/restaurant-dashboard/realtime"
	"github.com/yeremiapane/restaurant-dashboard/viewmodel"
)

// Mode is the connectivity badge shown next to the board.
type Mode string

const (
	ModeRealtime Mode = "real-time"
	ModePolling  Mode = "polling"
)

type Options struct {
	Channel      realtime.Config
	Polling      polling.Config
	Invalidation invalidation.Config
	View         viewmodel.Config
	Logger       logrus.FieldLogger
}

// Session wires channel -> router <- scheduler, router -> store -> view.
type Session struct {
	store     *invalidation.Store
	router    *invalidation.Router
	scheduler *polling.Scheduler
	channel   *realtime.Manager
	view      *viewmodel.View
	log       logrus.FieldLogger

	unsubscribe func()

	// renderGate is held shared while an update renders and exclusively
	// by Unmount. An onUpdate callback must not call Unmount.
	renderGate sync.RWMutex

	mu       sync.Mutex
	closed   bool
	onUpdate func(viewmodel.Page)
	once     sync.Once
}

// Mount builds and starts every component, then asks for a full refresh.
func Mount(ctx context.Context, opts Options, fetcher invalidation.Fetcher) (*Session, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.Channel.Logger == nil {
		opts.Channel.Logger = log
	}
	if opts.Polling.Logger == nil {
		opts.Polling.Logger = log
	}
	if opts.Invalidation.Logger == nil {
		opts.Invalidation.Logger = log
	}
	if opts.View == (viewmodel.Config{}) {
		opts.View = viewmodel.DefaultConfig()
	}

	view, err := viewmodel.NewView(opts.View)
	if err != nil {
		return nil, err
	}

	s := &Session{
		store: invalidation.NewStore(),
		view:  view,
		log:   log.WithField("component", "dashboard"),
	}
	s.router = invalidation.NewRouter(fetcher, s.store, opts.Invalidation)
	s.scheduler = polling.NewScheduler(opts.Polling, s.router.InvalidateAll)

	s.channel, err = realtime.New(opts.Channel, s.router, s.scheduler.SetConnected)
	if err != nil {
		s.router.Close()
		return nil, err
	}

	s.unsubscribe = s.store.Subscribe(s.handleApplied)

	s.scheduler.Start()
	s.channel.Start(ctx)
	s.router.InvalidateAll()

	s.log.WithField("endpoint", s.channel.Endpoint()).Info("dashboard mounted")
	return s, nil
}

// OnUpdate registers the render callback invoked after every applied refetch.
func (s *Session) OnUpdate(fn func(viewmodel.Page)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = fn
}

// Page renders the current projection.
func (s *Session) Page() viewmodel.Page {
	return s.view.Render(s.store.Snapshot())
}

func (s *Session) Snapshot() models.Snapshot {
	return s.store.Snapshot()
}

func (s *Session) View() *viewmodel.View {
	return s.view
}

// Refresh forces a full refetch, the same path a poll tick takes.
func (s *Session) Refresh() {
	s.scheduler.Tick()
}

func (s *Session) Mode() Mode {
	if s.scheduler.Connected() {
		return ModeRealtime
	}
	return ModePolling
}

func (s *Session) Channel() *realtime.Manager {
	return s.channel
}

func (s *Session) Scheduler() *polling.Scheduler {
	return s.scheduler
}

func (s *Session) Router() *invalidation.Router {
	return s.router
}

// Unmount closes the channel, clears the poll timer and stops the router.
// It waits for a render already in progress; refetches still in flight
// complete without touching the view.
func (s *Session) Unmount() {
	s.once.Do(func() {
		s.renderGate.Lock()
		s.mu.Lock()
		s.closed = true
		s.onUpdate = nil
		s.mu.Unlock()
		s.renderGate.Unlock()

		if err := s.channel.Close(); err != nil {
			s.log.WithError(err).Debug("closing push channel")
		}
		s.scheduler.Stop()
		s.router.Close()
		s.unsubscribe()
		s.log.Info("dashboard unmounted")
	})
}

func (s *Session) handleApplied(p invalidation.Partition) {
	s.renderGate.RLock()
	defer s.renderGate.RUnlock()

	s.mu.Lock()
	if s.closed || s.onUpdate == nil {
		s.mu.Unlock()
		return
	}
	fn := s.onUpdate
	s.mu.Unlock()

	fn(s.Page())
}
