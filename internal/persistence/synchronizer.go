// Package persistence keeps the remote bucket document in step with the
// in-memory store: one hydrating read at start, then a full-document write
// after every mutation.
package persistence

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Dias221467/bucket-list/internal/bucket"
	"github.com/Dias221467/bucket-list/internal/models"
	"github.com/Dias221467/bucket-list/pkg/logger"
	"github.com/sirupsen/logrus"
)

const DefaultTimeout = 15 * time.Second

// State is the synchronizer lifecycle.
type State int

const (
	StateLoading State = iota
	StateReady
	StateLocalOnly
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateLocalOnly:
		return "local-only"
	}
	return "unknown"
}

// Status is a point-in-time view of the synchronizer. LoadError and Dropped
// describe the hydrating read and never change afterwards.
type Status struct {
	State     State
	LastError error
	LoadError error
	Dropped   int
}

type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeWarning
	NoticeError
)

// Notice is a non-blocking, user-facing report about persistence.
type Notice struct {
	Kind    NoticeKind
	Message string
	Err     error
}

// Synchronizer bridges a bucket.Store to an Endpoint. A single worker
// goroutine performs the hydrating read and then every write, in order.
// Snapshots that pile up while a write is in flight are coalesced so only
// the newest one is sent.
type Synchronizer struct {
	store    *bucket.Store
	endpoint Endpoint
	log      logrus.FieldLogger
	timeout  time.Duration

	mu         sync.Mutex
	state      State
	lastErr    error
	loadErr    error
	dropped    int
	pending    []models.GoalItem
	hasPending bool
	writing    bool
	changed    chan struct{}
	started    bool
	cancel     context.CancelFunc

	wake    chan struct{}
	ready   chan struct{}
	done    chan struct{}
	notices chan Notice
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Synchronizer) { s.log = l }
}

// WithTimeout bounds every fetch and write.
func WithTimeout(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New wires a synchronizer to store; the store's mutations are forwarded to
// it from then on.
func New(store *bucket.Store, endpoint Endpoint, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		store:    store,
		endpoint: endpoint,
		log:      logger.Log.WithField("component", "synchronizer"),
		timeout:  DefaultTimeout,
		state:    StateLoading,
		changed:  make(chan struct{}),
		wake:     make(chan struct{}, 1),
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
		notices:  make(chan Notice, 16),
	}
	for _, opt := range opts {
		opt(s)
	}
	store.SetPersister(s)
	return s
}

// Start launches the worker. It returns immediately; Ready reports when
// hydration has settled.
func (s *Synchronizer) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	go s.run(ctx)
}

// Stop ends the worker. Pending snapshots are dropped; call Flush first to
// send them.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	started, cancel := s.started, s.cancel
	s.mu.Unlock()
	if !started {
		return
	}
	cancel()
	<-s.done
}

// Ready is closed once hydration has settled, successfully or not.
func (s *Synchronizer) Ready() <-chan struct{} {
	return s.ready
}

// Notices delivers user-facing reports. Notices are dropped when nobody reads.
func (s *Synchronizer) Notices() <-chan Notice {
	return s.notices
}

func (s *Synchronizer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:     s.state,
		LastError: s.lastErr,
		LoadError: s.loadErr,
		Dropped:   s.dropped,
	}
}

// Persist implements bucket.Persister. It never blocks on the network.
func (s *Synchronizer) Persist(snapshot []models.GoalItem) {
	s.mu.Lock()
	if s.state == StateLocalOnly {
		s.mu.Unlock()
		return
	}
	s.pending = snapshot
	s.hasPending = true
	s.broadcastLocked()
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until hydration has settled and every snapshot handed over so
// far has been written (or has failed).
func (s *Synchronizer) Flush(ctx context.Context) error {
	for {
		s.mu.Lock()
		idle := s.state != StateLoading && !s.hasPending && !s.writing
		changed := s.changed
		s.mu.Unlock()
		if idle {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

func (s *Synchronizer) run(ctx context.Context) {
	defer close(s.done)

	s.hydrate(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		}
		for ctx.Err() == nil && s.writeNext(ctx) {
		}
	}
}

func (s *Synchronizer) hydrate(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	data, err := s.endpoint.FetchDocument(fetchCtx)
	cancel()

	switch {
	case err == nil:
		items, dropped, decodeErr := models.DecodeDocument(data)
		if decodeErr != nil {
			s.log.WithError(decodeErr).Warn("Discarding malformed bucket document")
			s.notify(NoticeWarning, "Stored bucket list was unreadable; starting from local state", decodeErr)
			s.mu.Lock()
			s.loadErr = decodeErr
			s.mu.Unlock()
			s.settle(nil, false, StateReady)
			return
		}
		if dropped > 0 {
			s.log.WithField("dropped", dropped).Warn("Dropped invalid items from bucket document")
			s.mu.Lock()
			s.dropped = dropped
			s.mu.Unlock()
		}
		s.log.WithField("items", len(items)).Info("Bucket hydrated")
		s.settle(items, true, StateReady)

	case errors.Is(err, ErrDocumentNotFound):
		s.log.Info("No bucket document yet, starting empty")
		s.settle(nil, true, StateReady)

	case errors.Is(err, ErrEndpointUnreachable):
		s.log.WithError(err).Warn("Bucket endpoint unreachable, using local state only")
		s.notify(NoticeWarning, "Could not reach the server; changes stay on this device", err)
		s.settle(nil, false, StateLocalOnly)

	default:
		s.log.WithError(err).Error("Failed to load bucket")
		s.notify(NoticeError, "Could not load data", err)
		s.mu.Lock()
		s.lastErr = err
		s.loadErr = err
		s.mu.Unlock()
		s.settle(nil, false, StateReady)
	}
}

// settle discards snapshots queued during loading (the store journal
// replays those mutations), hands the result to the store and opens Ready.
func (s *Synchronizer) settle(items []models.GoalItem, replace bool, next State) {
	s.mu.Lock()
	s.pending = nil
	s.hasPending = false
	if next == StateLocalOnly {
		s.state = StateLocalOnly
	}
	s.mu.Unlock()

	s.store.Hydrate(items, replace)

	s.mu.Lock()
	if s.state == StateLoading {
		s.state = next
	}
	s.broadcastLocked()
	s.mu.Unlock()
	close(s.ready)
}

func (s *Synchronizer) writeNext(ctx context.Context) bool {
	s.mu.Lock()
	if !s.hasPending || s.state == StateLocalOnly {
		s.mu.Unlock()
		return false
	}
	snapshot := s.pending
	s.pending = nil
	s.hasPending = false
	s.writing = true
	s.mu.Unlock()

	err := s.write(ctx, snapshot)

	s.mu.Lock()
	s.writing = false
	s.lastErr = err
	s.broadcastLocked()
	s.mu.Unlock()
	return true
}

func (s *Synchronizer) write(ctx context.Context, snapshot []models.GoalItem) error {
	payload, err := models.EncodeDocument(snapshot)
	if err != nil {
		s.log.WithError(err).Error("Failed to encode bucket")
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.endpoint.ReplaceDocument(writeCtx, payload); err != nil {
		s.log.WithError(err).WithField("items", len(snapshot)).Error("Failed to sync bucket")
		s.notify(NoticeError, "Could not sync changes", err)
		return err
	}
	s.log.WithField("items", len(snapshot)).Debug("Bucket synced")
	return nil
}

func (s *Synchronizer) notify(kind NoticeKind, msg string, err error) {
	select {
	case s.notices <- Notice{Kind: kind, Message: msg, Err: err}:
	default:
	}
}

func (s *Synchronizer) broadcastLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}
