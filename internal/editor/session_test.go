package editor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func noopSave(context.Context, string) error { return nil }

func TestDirtyFollowsSeed(t *testing.T) {
	s := New("A", noopSave)

	if s.Dirty() || s.State() != StateClean {
		t.Fatalf("new session state = %v, want clean", s.State())
	}

	s.OnTextChanged("B")
	if !s.Dirty() || s.State() != StateDirty {
		t.Errorf("after change state = %v, want modified", s.State())
	}

	s.OnTextChanged("A")
	if s.Dirty() || s.State() != StateClean {
		t.Errorf("after changing back state = %v, want clean", s.State())
	}
}

func TestCommit_NotDirty(t *testing.T) {
	calls := 0
	s := New("x", func(context.Context, string) error { calls++; return nil })

	if err := s.Commit(context.Background()); !errors.Is(err, ErrNotDirty) {
		t.Errorf("Commit() error = %v, want ErrNotDirty", err)
	}
	if calls != 0 {
		t.Errorf("save called %d times, want 0", calls)
	}
}

func TestCommit_SuccessRebasesSeed(t *testing.T) {
	var saved string
	s := New("old", func(_ context.Context, text string) error {
		saved = text
		return nil
	})

	s.OnTextChanged("new")
	if err := s.Commit(context.Background()); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	if saved != "new" {
		t.Errorf("saved %q, want %q", saved, "new")
	}
	if s.Dirty() {
		t.Error("session still dirty after successful save")
	}
	if s.Text() != "new" {
		t.Errorf("Text() = %q, want %q", s.Text(), "new")
	}

	// Typing the old value again is now a change.
	s.OnTextChanged("old")
	if !s.Dirty() {
		t.Error("reverting to the pre-save text should be dirty")
	}
}

func TestCommit_FailureKeepsChangesPending(t *testing.T) {
	boom := errors.New("remote operation failed")
	s := New("a", func(context.Context, string) error { return boom })

	s.OnTextChanged("b")
	err := s.Commit(context.Background())

	if !errors.Is(err, boom) {
		t.Fatalf("Commit() error = %v, want %v", err, boom)
	}
	if s.State() != StateSaveFailed {
		t.Errorf("State() = %v, want save failed", s.State())
	}
	if !s.Dirty() || s.Text() != "b" {
		t.Errorf("text rolled back or dirty cleared: dirty=%v text=%q", s.Dirty(), s.Text())
	}
	if !s.CanCommit() {
		t.Error("retry should be allowed after a failed save")
	}
}

func TestCommit_RejectsWhileSaving(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	s := New("a", func(context.Context, string) error {
		calls.Add(1)
		close(started)
		<-release
		return nil
	})
	s.OnTextChanged("b")

	done := make(chan error, 1)
	go func() { done <- s.Commit(context.Background()) }()
	<-started

	if s.State() != StateSaving {
		t.Errorf("State() during save = %v, want saving", s.State())
	}
	if s.CanCommit() {
		t.Error("CanCommit() = true while saving")
	}
	if err := s.Commit(context.Background()); !errors.Is(err, ErrSaveInFlight) {
		t.Errorf("second Commit() error = %v, want ErrSaveInFlight", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Commit() error = %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("save called %d times, want 1", got)
	}
}

func TestCommit_TypingDuringSaveStaysDirty(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s := New("a", func(context.Context, string) error {
		close(started)
		<-release
		return nil
	})
	s.OnTextChanged("b")

	done := make(chan error, 1)
	go func() { done <- s.Commit(context.Background()) }()
	<-started

	s.OnTextChanged("bc")
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if !s.Dirty() {
		t.Error("edits made during the save were marked as saved")
	}
	if s.Text() != "bc" {
		t.Errorf("Text() = %q, want %q", s.Text(), "bc")
	}
}

func TestClose_DropsLateResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s := New("a", func(context.Context, string) error {
		close(started)
		<-release
		return errors.New("late failure")
	})
	s.OnTextChanged("b")

	done := make(chan error, 1)
	go func() { done <- s.Commit(context.Background()) }()
	<-started

	s.Close()
	close(release)

	if err := <-done; !errors.Is(err, ErrClosed) {
		t.Errorf("Commit() error = %v, want ErrClosed", err)
	}
	if s.Err() != nil {
		t.Errorf("late failure recorded after Close: %v", s.Err())
	}
	if err := s.Commit(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Commit() after Close error = %v, want ErrClosed", err)
	}
}

func TestReseed(t *testing.T) {
	s := New("a", noopSave)
	s.OnTextChanged("b")

	s.Reseed("stored")

	if s.Dirty() || s.Text() != "stored" {
		t.Errorf("after Reseed dirty=%v text=%q", s.Dirty(), s.Text())
	}
}

func TestCommitText_ReturnsTextTakenAtSaveStart(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	s := New("a", func(context.Context, string) error {
		close(started)
		<-release
		return nil
	})
	s.OnTextChanged("b")

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := s.CommitText(context.Background())
		done <- result{text, err}
	}()
	<-started

	s.OnTextChanged("bc")
	close(release)

	got := <-done
	if got.err != nil {
		t.Fatalf("CommitText() error = %v", got.err)
	}
	if got.text != "b" {
		t.Errorf("CommitText() text = %q, want %q", got.text, "b")
	}
	if !s.Dirty() {
		t.Error("text typed during the save should stay dirty")
	}
}

func TestCommitText_RejectedReturnsEmpty(t *testing.T) {
	s := New("a", noopSave)
	text, err := s.CommitText(context.Background())
	if !errors.Is(err, ErrNotDirty) || text != "" {
		t.Errorf("CommitText() = %q, %v; want \"\", ErrNotDirty", text, err)
	}
}
