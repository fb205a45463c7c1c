// Package reader models the reading client's UI state: one selected calendar
// date, a loading flag, and the content rendered for that date. Transitions
// are pure functions over the Session so the navigation and response-ordering
// rules stay testable without a browser. A Session is owned by a single
// event loop and is not safe for concurrent use.
package reader

import "time"

const dateLayout = "2006-01-02"

// PlaceholderText is rendered for a date with no published entry and when a
// read fails; a failed read degrades to the empty state, never an error screen.
const PlaceholderText = "No gospel for this day."

// Content is the reader's view of one day's entry.
type Content struct {
	Text        string
	ImageData   string
	ContentType string
}

// ReadRequest tags one outstanding fetch with the date it was issued for.
// Responses whose tag no longer matches the current selection are discarded
// rather than applied, so a slow response for a superseded date can never
// overwrite a newer one.
type ReadRequest struct {
	Seq  uint64
	Date string
}

// SessionConfig configures a reading session.
type SessionConfig struct {
	Clock func() time.Time
}

// Session holds the reading client's state.
type Session struct {
	clock        func() time.Time
	selectedDate time.Time
	loading      bool
	readSeq      uint64
	content      Content
	hasContent   bool
}

// NewSession starts a session selected on the current local date.
func NewSession(cfg SessionConfig) *Session {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Session{
		clock:        clock,
		selectedDate: truncateToDay(clock()),
	}
}

// SelectedDate returns the selected date as YYYY-MM-DD.
func (s *Session) SelectedDate() string {
	return s.selectedDate.Format(dateLayout)
}

// Loading reports whether a read is outstanding for the current selection.
func (s *Session) Loading() bool {
	return s.loading
}

// Content returns what the reader currently renders. Before the first read
// completes, and after a miss or failure, this is the placeholder.
func (s *Session) Content() Content {
	if !s.hasContent {
		return Content{Text: PlaceholderText}
	}
	return s.content
}

// ChangeDate moves the selection by offsetDays. A move that would land
// strictly after today is a no-op: clamped, not wrapped and not an error.
// It reports whether the selection changed.
func (s *Session) ChangeDate(offsetDays int) bool {
	candidate := s.selectedDate.AddDate(0, 0, offsetDays)
	today := truncateToDay(s.clock())
	if candidate.After(today) {
		return false
	}
	if candidate.Equal(s.selectedDate) {
		return false
	}
	s.selectedDate = candidate
	return true
}

// BeginRead marks the session loading and returns the tag for the fetch the
// caller must now issue. Each selection change triggers exactly one read;
// issuing a new read supersedes any still outstanding.
func (s *Session) BeginRead() ReadRequest {
	s.readSeq++
	s.loading = true
	return ReadRequest{Seq: s.readSeq, Date: s.SelectedDate()}
}

// ApplyResult renders the fetched content if the request still matches the
// current selection, and reports whether it was applied. Stale results are
// dropped.
func (s *Session) ApplyResult(request ReadRequest, content Content) bool {
	if !s.requestIsCurrent(request) {
		return false
	}
	s.loading = false
	s.content = content
	s.hasContent = true
	return true
}

// ApplyFailure degrades the current selection to the placeholder when its
// read fails. Stale failures are dropped like stale results.
func (s *Session) ApplyFailure(request ReadRequest) bool {
	if !s.requestIsCurrent(request) {
		return false
	}
	s.loading = false
	s.content = Content{}
	s.hasContent = false
	return true
}

func (s *Session) requestIsCurrent(request ReadRequest) bool {
	return request.Seq == s.readSeq && request.Date == s.SelectedDate()
}

func truncateToDay(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, value.Location())
}
