package reader

import (
	"testing"
	"time"
)

var testToday = time.Date(2025, time.March, 15, 14, 30, 0, 0, time.UTC)

func newTestSession() *Session {
	return NewSession(SessionConfig{Clock: func() time.Time { return testToday }})
}

func TestSessionStartsOnToday(t *testing.T) {
	session := newTestSession()
	if session.SelectedDate() != "2025-03-15" {
		t.Fatalf("expected today's date, got %s", session.SelectedDate())
	}
	if session.Content().Text != PlaceholderText {
		t.Fatalf("expected placeholder before any read, got %q", session.Content().Text)
	}
}

func TestChangeDateForwardFromTodayIsNoOp(t *testing.T) {
	session := newTestSession()
	if session.ChangeDate(1) {
		t.Fatalf("moving past today should be a no-op")
	}
	if session.SelectedDate() != "2025-03-15" {
		t.Fatalf("selected date changed: %s", session.SelectedDate())
	}
}

func TestChangeDateBackMovesExactlyOneDay(t *testing.T) {
	session := newTestSession()
	if !session.ChangeDate(-1) {
		t.Fatalf("expected backward move to apply")
	}
	if session.SelectedDate() != "2025-03-14" {
		t.Fatalf("unexpected date: %s", session.SelectedDate())
	}
}

func TestChangeDateBackAndForwardReturnsToStart(t *testing.T) {
	session := newTestSession()
	const steps = 7
	for i := 0; i < steps; i++ {
		if !session.ChangeDate(-1) {
			t.Fatalf("backward step %d should apply", i)
		}
	}
	if session.SelectedDate() != "2025-03-08" {
		t.Fatalf("unexpected date after going back: %s", session.SelectedDate())
	}
	for i := 0; i < steps; i++ {
		if !session.ChangeDate(1) {
			t.Fatalf("forward step %d should apply", i)
		}
	}
	if session.SelectedDate() != "2025-03-15" {
		t.Fatalf("expected to return to start, got %s", session.SelectedDate())
	}
	// One more forward step would pass today and must clamp.
	if session.ChangeDate(1) {
		t.Fatalf("final step must never exceed today")
	}
}

func TestChangeDateClampsMultiDayOvershoot(t *testing.T) {
	session := newTestSession()
	session.ChangeDate(-3)
	if session.ChangeDate(5) {
		t.Fatalf("overshooting today should be a no-op, not a partial move")
	}
	if session.SelectedDate() != "2025-03-12" {
		t.Fatalf("unexpected date: %s", session.SelectedDate())
	}
}

func TestApplyResultRendersCurrentRead(t *testing.T) {
	session := newTestSession()
	request := session.BeginRead()
	if !session.Loading() {
		t.Fatalf("expected loading flag during read")
	}

	applied := session.ApplyResult(request, Content{Text: "Joy to the world"})
	if !applied {
		t.Fatalf("expected current result to apply")
	}
	if session.Loading() {
		t.Fatalf("loading flag should clear once the read resolves")
	}
	if session.Content().Text != "Joy to the world" {
		t.Fatalf("unexpected content: %q", session.Content().Text)
	}
}

func TestApplyResultDiscardsStaleRead(t *testing.T) {
	session := newTestSession()
	staleRequest := session.BeginRead()

	// Navigate away before the first response arrives.
	session.ChangeDate(-1)
	currentRequest := session.BeginRead()

	if session.ApplyResult(staleRequest, Content{Text: "stale day"}) {
		t.Fatalf("stale result must be discarded")
	}
	if !session.Loading() {
		t.Fatalf("discarding a stale result must not clear the loading flag")
	}

	if !session.ApplyResult(currentRequest, Content{Text: "current day"}) {
		t.Fatalf("current result must apply")
	}
	if session.Content().Text != "current day" {
		t.Fatalf("unexpected content: %q", session.Content().Text)
	}
}

func TestLateStaleResponseDoesNotOverwriteNewerOne(t *testing.T) {
	session := newTestSession()
	firstRequest := session.BeginRead()
	session.ChangeDate(-1)
	secondRequest := session.BeginRead()

	// Responses arrive out of issue order.
	if !session.ApplyResult(secondRequest, Content{Text: "newer"}) {
		t.Fatalf("newer result must apply")
	}
	if session.ApplyResult(firstRequest, Content{Text: "older"}) {
		t.Fatalf("older result must be discarded after the newer one rendered")
	}
	if session.Content().Text != "newer" {
		t.Fatalf("unexpected content: %q", session.Content().Text)
	}
}

func TestApplyFailureDegradesToPlaceholder(t *testing.T) {
	session := newTestSession()
	request := session.BeginRead()
	if !session.ApplyResult(request, Content{Text: "something"}) {
		t.Fatalf("result should apply")
	}

	session.ChangeDate(-1)
	request = session.BeginRead()
	if !session.ApplyFailure(request) {
		t.Fatalf("current failure should apply")
	}
	if session.Loading() {
		t.Fatalf("loading flag should clear on failure")
	}
	if session.Content().Text != PlaceholderText {
		t.Fatalf("failed read should degrade to placeholder, got %q", session.Content().Text)
	}
}

func TestApplyFailureDiscardsStaleFailure(t *testing.T) {
	session := newTestSession()
	staleRequest := session.BeginRead()
	session.ChangeDate(-1)
	currentRequest := session.BeginRead()

	if session.ApplyFailure(staleRequest) {
		t.Fatalf("stale failure must be discarded")
	}
	if !session.ApplyResult(currentRequest, Content{Text: "fresh"}) {
		t.Fatalf("current result must still apply")
	}
}
