// Package session hosts the set of concurrently running board games. Each
// named session owns one *board.Board; clients join a session by name and
// the first joiner to name an unseen session causes it to be created.
package session

import (
	"fmt"
	"math/rand"
	"sync"

	"memory-scramble-server/board"
)

// Manager owns every live board, keyed by session name. Unlike a 1-v-1
// matchmaker pairing exactly two clients into a fresh game, a session here
// is a long-lived, arbitrarily-many-player board that clients join and
// leave freely; Manager's job is purely get-or-create, plus installing
// boards loaded ahead of time from configured board files.
type Manager struct {
	mu     sync.RWMutex
	boards map[string]*board.Board

	defaultRows, defaultCols int
}

// NewManager returns a Manager that creates new sessions with the given
// default board dimensions.
func NewManager(defaultRows, defaultCols int) *Manager {
	return &Manager{
		boards:      make(map[string]*board.Board),
		defaultRows: defaultRows,
		defaultCols: defaultCols,
	}
}

// GetOrCreate returns the named board, creating it with a freshly shuffled
// default deck if it does not already exist. The bool result reports
// whether the session already existed.
func (m *Manager) GetOrCreate(name string) (*board.Board, bool, error) {
	m.mu.RLock()
	b, ok := m.boards[name]
	m.mu.RUnlock()
	if ok {
		return b, true, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.boards[name]; ok {
		return b, true, nil
	}

	b, err := board.New(m.defaultRows, m.defaultCols, shuffledDeck(m.defaultRows*m.defaultCols))
	if err != nil {
		return nil, false, fmt.Errorf("create session %q: %w", name, err)
	}
	m.boards[name] = b
	return b, false, nil
}

// Get returns the named board without creating it.
func (m *Manager) Get(name string) (*board.Board, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.boards[name]
	return b, ok
}

// Put installs an explicitly constructed board (e.g. loaded at startup
// from a board file via boardfile.Parse) under name, replacing any
// existing session of that name. Used to preload the sessions named in
// Config.BoardFiles before the first client ever joins them.
func (m *Manager) Put(name string, b *board.Board) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boards[name] = b
}

// Names returns the names of every live session.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.boards))
	for name := range m.boards {
		names = append(names, name)
	}
	return names
}

// shuffledDeck builds a deck of n pictures (n must be even) made of n/2
// distinct tokens, each appearing twice, in random order.
func shuffledDeck(n int) []string {
	deck := make([]string, n)
	for i := 0; i < n; i += 2 {
		token := fmt.Sprintf("P%d", i/2)
		deck[i] = token
		deck[i+1] = token
	}
	rand.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}
