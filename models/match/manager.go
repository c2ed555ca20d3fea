package match

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	cerr "github.com/coltonsurfer/battleship/internal/error"
)

type MatchManager interface {
	CreateMatch(optFuncs ...ControllerOption) *Controller
	GetMatch(matchId string) (*Controller, error)
	TerminateMatch(matchId string)
	Count() int
}

// Manager keeps the live controllers keyed by a short match id.
type Manager struct {
	defaults []ControllerOption
	matches  map[string]*Controller
	mu       sync.RWMutex
}

var _ MatchManager = (*Manager)(nil)

// NewManager applies defaults to every controller it creates, before the
// options given to CreateMatch.
func NewManager(defaults ...ControllerOption) *Manager {
	return &Manager{
		defaults: defaults,
		matches:  make(map[string]*Controller, 10),
	}
}

func (m *Manager) CreateMatch(optFuncs ...ControllerOption) *Controller {
	opts := make([]ControllerOption, 0, len(m.defaults)+len(optFuncs))
	opts = append(opts, m.defaults...)
	opts = append(opts, optFuncs...)

	m.mu.Lock()
	defer m.mu.Unlock()

	matchId := uuid.NewString()[:6]
	for _, taken := m.matches[matchId]; taken; _, taken = m.matches[matchId] {
		matchId = uuid.NewString()[:6]
	}

	controller := NewController(matchId, opts...)
	m.matches[matchId] = controller
	log.Info("match created", "match", matchId, "active", len(m.matches))
	return controller
}

func (m *Manager) GetMatch(matchId string) (*Controller, error) {
	m.mu.RLock()
	controller, prs := m.matches[matchId]
	m.mu.RUnlock()
	if !prs {
		return nil, cerr.ErrMatchNotExists(matchId)
	}

	return controller, nil
}

// TerminateMatch closes the controller and forgets it. Unknown ids are
// ignored.
func (m *Manager) TerminateMatch(matchId string) {
	m.mu.Lock()
	controller, prs := m.matches[matchId]
	delete(m.matches, matchId)
	m.mu.Unlock()

	if prs {
		controller.Close()
		log.Info("match terminated", "match", matchId)
	}
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.matches)
}
