package game

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"xiangqi/internal/xiangqi"
)

var (
	ErrNotFound    = errors.New("game not found")
	ErrIllegalMove = errors.New("illegal move")
	ErrGameOver    = errors.New("game is over")
	ErrStale       = errors.New("game moved on")
)

type Manager struct {
	mu    sync.RWMutex
	games map[string]*GameState
}

func NewManager() *Manager {
	return &Manager{games: make(map[string]*GameState)}
}

func (m *Manager) NewGame() *GameState {
	return m.Start(xiangqi.NewInitialState())
}

// Start 从任意局面开局
func (m *Manager) Start(s *xiangqi.State) *GameState {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	id := uuid.NewString()
	g := &GameState{
		ID:        id,
		State:     s,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.games[id] = g
	return g.snapshot()
}

// Get 返回快照，调用方可以随便读
func (m *Manager) Get(id string) (*GameState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return g.snapshot(), nil
}

// Play 校验后落子；State 不可变，直接替换指针
func (m *Manager) Play(id string, mv xiangqi.Move) (*GameState, error) {
	return m.PlayAt(id, -1, mv)
}

// PlayAt 同 Play，但要求对局仍停在第 ply 手（ply < 0 不检查）。
// 引擎在快照上思考完再落子时用，中途有人走过就返回 ErrStale。
func (m *Manager) PlayAt(id string, ply int, mv xiangqi.Move) (*GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	if ply >= 0 && len(g.History) != ply {
		return nil, ErrStale
	}
	if g.State.Terminal {
		return nil, ErrGameOver
	}
	if !g.State.IsValidMove(mv.From, mv.To) {
		return nil, ErrIllegalMove
	}
	g.State = g.State.ApplyMove(mv.From, mv.To)
	g.History = append(g.History, mv)
	g.UpdatedAt = time.Now()
	return g.snapshot(), nil
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.games, id)
	m.mu.Unlock()
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

func (g *GameState) snapshot() *GameState {
	cp := *g
	cp.History = append([]xiangqi.Move(nil), g.History...)
	return &cp
}
