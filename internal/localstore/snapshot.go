package localstore

import (
	"sync"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/service"
	"go.uber.org/zap"
)

// StateSource is satisfied by *service.Engine.
type StateSource interface {
	Snapshot() service.State
}

// Snapshotter keeps the pos-store key in step with the engine. Register it
// as an engine listener.
type Snapshotter struct {
	store  *Store
	source StateSource
	logger *zap.SugaredLogger
	mu     sync.Mutex
}

func NewSnapshotter(store *Store, source StateSource, logger *zap.SugaredLogger) *Snapshotter {
	return &Snapshotter{store: store, source: source, logger: logger}
}

// Load returns the last saved state, if any.
func (s *Snapshotter) Load() (service.State, bool, error) {
	var st service.State
	ok, err := s.store.Get(KeyPOSState, &st)
	return st, ok, err
}

// Save writes the current engine state.
func (s *Snapshotter) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Put(KeyPOSState, s.source.Snapshot())
}

func (s *Snapshotter) TableUpdated(service.Table) {
	if err := s.Save(); err != nil {
		s.logger.Errorw("save pos state", "error", err)
	}
}

func (s *Snapshotter) OrderPaid(service.Order) {}

// CategoryChanged implements service.CategoryListener.
func (s *Snapshotter) CategoryChanged(string) {
	if err := s.Save(); err != nil {
		s.logger.Errorw("save pos state", "error", err)
	}
}
