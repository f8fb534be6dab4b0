package search

import "github.com/spiffcs/usersearch/internal/model"

// Status is the request state shown by the widget.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// State is a snapshot of everything the controller owns.
type State struct {
	// Term is the raw input as last typed.
	Term string
	// ActiveTerm is the settled term Profile and Repos belong to.
	ActiveTerm string

	Profile *model.UserProfile
	Repos   []model.Repository

	// Page is the last successfully fetched page, 0 before the first one.
	Page     int
	PageSize int
	HasMore  bool

	// Loading is set only while a debounced search sequence is running.
	Loading bool
	// LoadingMore is set while an incremental page load is running.
	LoadingMore bool

	// Err is the fixed user-facing message of the last failure, or empty.
	Err string
}

// Status derives the request state from the snapshot.
func (s State) Status() Status {
	switch {
	case s.Loading:
		return StatusLoading
	case s.Err != "":
		return StatusError
	default:
		return StatusIdle
	}
}

// CanLoadMore reports whether a LoadMore call would issue a request.
func (s State) CanLoadMore() bool {
	return s.HasMore && s.ActiveTerm != "" && !s.Loading && !s.LoadingMore
}

// clone returns a copy that shares no mutable memory with s.
func (s State) clone() State {
	out := s
	if s.Profile != nil {
		p := *s.Profile
		out.Profile = &p
	}
	if s.Repos != nil {
		out.Repos = make([]model.Repository, len(s.Repos))
		copy(out.Repos, s.Repos)
	}
	return out
}

// clearResults drops everything that belongs to the active term.
func (s *State) clearResults() {
	s.ActiveTerm = ""
	s.Profile = nil
	s.Repos = nil
	s.Page = 0
	s.HasMore = false
}
