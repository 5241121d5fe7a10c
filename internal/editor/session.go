// Package editor holds the state of a code-snippet editing session.
//
// THE STATE MACHINE:
//
//	Clean ──type──▶ Dirty ──Commit──▶ Saving ──ok──▶ Clean (or Dirty if typed meanwhile)
//	  ▲               │                  │
//	  └──type back────┘                  └──error──▶ SaveFailed ──Commit──▶ Saving
//
// Dirty is always derived: the current text differs from the seed. The seed
// is the text the session was opened with, and after every successful save
// it becomes the text that was saved. Nothing is cleared before the save
// function returns, so a failed save leaves the edits pending instead of
// silently marking them as saved.
//
// The session does not persist anything itself. The caller supplies a
// SaveFunc (usually ProjectService.UpdateSnippet bound to one project id).
//
// A Session is safe for concurrent use: the terminal editor runs Commit in a
// command goroutine while the render loop keeps reading State and Text.
package editor

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotDirty     = errors.New("editor: nothing to save")
	ErrSaveInFlight = errors.New("editor: save already in progress")
	ErrClosed       = errors.New("editor: session closed")
)

// SaveFunc persists text. It is called with the lock released.
type SaveFunc func(ctx context.Context, text string) error

type State int

const (
	StateClean State = iota
	StateDirty
	StateSaving
	StateSaveFailed
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDirty:
		return "modified"
	case StateSaving:
		return "saving"
	case StateSaveFailed:
		return "save failed"
	default:
		return "unknown"
	}
}

type Session struct {
	mu      sync.Mutex
	save    SaveFunc
	seed    string
	text    string
	saving  bool
	lastErr error
	closed  bool
}

// New opens a session seeded with initial.
func New(initial string, save SaveFunc) *Session {
	return &Session{
		save: save,
		seed: initial,
		text: initial,
	}
}

// OnTextChanged replaces the current text. It never blocks on I/O.
func (s *Session) OnTextChanged(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
}

func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text != s.seed
}

func (s *Session) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// Err returns the error of the last failed save, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.saving:
		return StateSaving
	case s.text == s.seed:
		return StateClean
	case s.lastErr != nil:
		return StateSaveFailed
	default:
		return StateDirty
	}
}

// CanCommit reports whether the save control should be enabled.
func (s *Session) CanCommit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && !s.saving && s.text != s.seed
}

// Commit saves the current text and blocks until the save function returns.
//
// On success the seed becomes the saved text; the session stays dirty only
// if the text changed while the save was running. On failure the session
// moves to StateSaveFailed and the error is returned and kept in Err.
func (s *Session) Commit(ctx context.Context) error {
	_, err := s.CommitText(ctx)
	return err
}

// CommitText is Commit that also returns the text handed to the save
// function. The text is taken when the save starts, so callers patching a
// cached record with it never see an edit that was typed afterwards. It is
// empty when the commit was rejected before saving.
func (s *Session) CommitText(ctx context.Context) (string, error) {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return "", ErrClosed
	case s.saving:
		s.mu.Unlock()
		return "", ErrSaveInFlight
	case s.text == s.seed:
		s.mu.Unlock()
		return "", ErrNotDirty
	}
	s.saving = true
	committed := s.text
	s.mu.Unlock()

	err := s.save(ctx, committed)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false

	// Results that arrive after Close are dropped.
	if s.closed {
		return committed, ErrClosed
	}
	if err != nil {
		s.lastErr = err
		return committed, err
	}
	s.seed = committed
	s.lastErr = nil
	return committed, nil
}

// Reseed replaces both the seed and the text. The terminal editor calls it
// when a reload brings a newer snippet for a clean session.
func (s *Session) Reseed(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seed = text
	s.text = text
	s.lastErr = nil
}

// Close marks the session dead. A save still running keeps running, but its
// result no longer changes the session.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
