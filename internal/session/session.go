package session

import (
	"sync"
	"time"

	"shift-checklist/internal/checklist"
)

type FlashLevel string

const (
	FlashSuccess FlashLevel = "success"
	FlashWarning FlashLevel = "warning"
	FlashError   FlashLevel = "error"
)

// Flash is a one-shot message shown on the next page render.
type Flash struct {
	Level   FlashLevel
	Message string
}

// Session is one browser's working state. Once unlocked it stays unlocked.
type Session struct {
	ID string

	mu         sync.Mutex
	authed     bool
	cells      *checklist.Cells
	comments   *checklist.Comments
	operatorID string
	flashes    []Flash
	lastSeen   time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:       id,
		cells:    checklist.NewCells(),
		comments: checklist.NewComments(),
		lastSeen: now,
	}
}

func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authed
}

func (s *Session) Unlock() {
	s.mu.Lock()
	s.authed = true
	s.mu.Unlock()
}

func (s *Session) Toggle(k checklist.Key) checklist.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cells.Toggle(k)
}

func (s *Session) State(k checklist.Key) checklist.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cells.Get(k)
}

func (s *Session) SetMachine(cat checklist.Catalog, machine string, st checklist.State) {
	s.mu.Lock()
	s.cells.SetMachine(cat, machine, st)
	s.mu.Unlock()
}

// ResetGrid clears every cell and comment. The operator ID is kept.
func (s *Session) ResetGrid() {
	s.mu.Lock()
	s.cells.Reset()
	s.comments.Reset()
	s.mu.Unlock()
}

func (s *Session) SetComment(section, text string) {
	s.mu.Lock()
	s.comments.Set(section, text)
	s.mu.Unlock()
}

func (s *Session) Comment(section string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.comments.Get(section)
}

func (s *Session) SetOperatorID(id string) {
	s.mu.Lock()
	s.operatorID = id
	s.mu.Unlock()
}

func (s *Session) OperatorID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.operatorID
}

// Grid renders the session's cells through checklist.BuildGrid.
func (s *Session) Grid(cat checklist.Catalog, layout checklist.Layout, active int) checklist.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return checklist.BuildGrid(cat, layout, s.cells, s.comments, active)
}

func (s *Session) Snapshot(cat checklist.Catalog) checklist.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return checklist.Snapshot{
		Catalog:    cat,
		Cells:      s.cells.Snapshot(),
		Comments:   s.comments.Snapshot(),
		OperatorID: s.operatorID,
	}
}

func (s *Session) AddFlash(level FlashLevel, msg string) {
	s.mu.Lock()
	s.flashes = append(s.flashes, Flash{Level: level, Message: msg})
	s.mu.Unlock()
}

// PopFlashes returns pending messages and clears them.
func (s *Session) PopFlashes() []Flash {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.flashes
	s.flashes = nil
	return out
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
