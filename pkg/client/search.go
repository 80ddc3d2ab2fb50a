package client

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

type SearchState int

const (
	Unsearched SearchState = iota
	Results
	NoMatches
	SearchFailed
)

func (s SearchState) String() string {
	switch s {
	case Unsearched:
		return "unsearched"
	case Results:
		return "results"
	case NoMatches:
		return "no matches"
	case SearchFailed:
		return "failed"
	}
	return fmt.Sprintf("SearchState(%d)", int(s))
}

type SortOrder int

const (
	ByRecency SortOrder = iota
	ByLikes
)

type SearchSnapshot struct {
	State     SearchState
	Query     string
	Sort      SortOrder
	Searching bool
	Posts     []PostView
	Selected  *PostView
	Err       error
}

type SearchOptions struct {
	// OnChange runs on the search loop; see FeedOptions.OnChange.
	OnChange func(SearchSnapshot)
	Alert    func(error)
	Logger   Logger
}

// Search runs one-shot title searches. Results are not kept live; they go
// stale until the next search.
type Search struct {
	postSet
	opts      SearchOptions
	state     SearchState
	query     string
	sort      SortOrder
	seq       int
	searching bool
	err       error
	closeOnce sync.Once
}

func NewSearch(ctx context.Context, backend Backend, userID string, opts SearchOptions) *Search {
	s := &Search{
		postSet: newPostSet(newLoop(ctx), backend.Records, userID, opts.Alert, opts.Logger),
		opts:    opts,
	}
	s.changed = s.notify
	return s
}

// Search fetches posts whose title contains query. A blank query is a no-op.
// Only the most recent search is applied when several overlap.
func (s *Search) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	var seq int
	if err := s.loop.call(func() {
		s.seq++
		seq = s.seq
		s.searching = true
		s.notify()
	}); err != nil {
		return err
	}

	posts, fetchErr := s.records.ListPosts(ctx, PostQuery{TitleContains: query})

	var applied bool
	if err := s.loop.call(func() {
		if seq != s.seq {
			return
		}
		applied = true
		s.searching = false
		s.query = query
		s.selected = ""
		if fetchErr != nil {
			s.state = SearchFailed
			s.err = fetchErr
			s.cache.reset(nil)
			s.alert(fmt.Errorf("search failed: %w", fetchErr))
			s.notify()
			return
		}
		s.err = nil
		s.cache.reset(posts)
		s.reapplyLikes()
		if len(posts) == 0 {
			s.state = NoMatches
		} else {
			s.state = Results
		}
		s.notify()
	}); err != nil {
		return err
	}

	if applied && fetchErr != nil {
		return fetchErr
	}
	return nil
}

// SortBy re-orders the current results without fetching.
func (s *Search) SortBy(order SortOrder) error {
	return s.loop.call(func() {
		if s.sort == order {
			return
		}
		s.sort = order
		s.notify()
	})
}

func (s *Search) snapshot() SearchSnapshot {
	posts := s.cache.views(s.userID)
	if s.sort == ByLikes {
		slices.SortStableFunc(posts, func(a, b PostView) int {
			return b.LikeCount - a.LikeCount
		})
	}
	return SearchSnapshot{
		State:     s.state,
		Query:     s.query,
		Sort:      s.sort,
		Searching: s.searching,
		Posts:     posts,
		Selected:  s.selectedView(),
		Err:       s.err,
	}
}

func (s *Search) notify() {
	if s.opts.OnChange != nil {
		s.opts.OnChange(s.snapshot())
	}
}

func (s *Search) Snapshot() (SearchSnapshot, error) {
	var snap SearchSnapshot
	err := s.loop.call(func() { snap = s.snapshot() })
	return snap, err
}

func (s *Search) Close() {
	s.closeOnce.Do(s.loop.stop)
}
