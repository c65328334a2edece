// Package search turns user input into MusicBrainz search requests and keeps
// track of the current result page.
package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/llehouerou/mbrowse/internal/entity"
	"github.com/llehouerou/mbrowse/internal/normalize"
)

const DefaultLimit = 25

var (
	ErrEmptyQuery  = errors.New("empty search query")
	ErrUnknownKind = errors.New("unknown entity type")
	ErrNoSearch    = errors.New("no search performed")
)

// Searcher runs one search request.
type Searcher interface {
	Search(ctx context.Context, kind entity.Kind, query string, limit, offset int) (*normalize.Page, error)
}

// Params describes one search.
type Params struct {
	Query    string
	Kind     entity.Kind
	Advanced map[string]string // Lucene field -> value
	Limit    int
	Offset   int
}

// Valid reports whether p can be sent.
func (p Params) Valid() error {
	if strings.TrimSpace(p.Query) == "" && !p.hasAdvanced() {
		return ErrEmptyQuery
	}
	if !p.Kind.IsKnown() {
		return ErrUnknownKind
	}
	return nil
}

func (p Params) hasAdvanced() bool {
	for _, v := range p.Advanced {
		if !skipValue(v) {
			return true
		}
	}
	return false
}

func (p Params) limit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}
	return min(p.Limit, 100)
}

// BuildQuery renders the Lucene query string for p. Advanced fields are
// appended as field:value terms in field order, joined with AND.
func BuildQuery(p Params) string {
	var terms []string
	if q := strings.TrimSpace(p.Query); q != "" {
		terms = append(terms, q)
	}
	fields := make([]string, 0, len(p.Advanced))
	for field := range p.Advanced {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	for _, field := range fields {
		v := strings.TrimSpace(p.Advanced[field])
		if skipValue(v) {
			continue
		}
		if strings.ContainsAny(v, " \t") {
			v = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
		}
		terms = append(terms, field+":"+v)
	}
	return strings.Join(terms, " AND ")
}

// skipValue reports placeholder values of unset advanced fields.
func skipValue(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == "Any" || v == "0"
}

// Service runs searches and pages through their results. It is safe for
// concurrent use; the last completed search wins.
type Service struct {
	client Searcher

	mu     sync.Mutex
	params Params
	count  int
	done   bool
}

// NewService creates a search service over client.
func NewService(client Searcher) *Service {
	return &Service{client: client}
}

// Search runs p from its offset and remembers it for paging.
func (s *Service) Search(ctx context.Context, p Params) (*normalize.Page, error) {
	if err := p.Valid(); err != nil {
		return nil, err
	}
	p.Limit = p.limit()
	p.Offset = max(p.Offset, 0)

	page, err := s.client.Search(ctx, p.Kind, BuildQuery(p), p.Limit, p.Offset)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", p.Kind.Plural(), err)
	}

	s.mu.Lock()
	s.params = p
	s.count = page.Count
	s.done = true
	s.mu.Unlock()
	return page, nil
}

// NextPage fetches the page after the current one.
func (s *Service) NextPage(ctx context.Context) (*normalize.Page, error) {
	s.mu.Lock()
	if !s.canNext() {
		s.mu.Unlock()
		return nil, ErrNoSearch
	}
	p := s.params
	s.mu.Unlock()

	p.Offset += p.Limit
	return s.Search(ctx, p)
}

// PrevPage fetches the page before the current one.
func (s *Service) PrevPage(ctx context.Context) (*normalize.Page, error) {
	s.mu.Lock()
	if !s.canPrev() {
		s.mu.Unlock()
		return nil, ErrNoSearch
	}
	p := s.params
	s.mu.Unlock()

	p.Offset = max(p.Offset-p.Limit, 0)
	return s.Search(ctx, p)
}

// CanNext reports whether a page follows the current one.
func (s *Service) CanNext() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canNext()
}

// CanPrev reports whether a page precedes the current one.
func (s *Service) CanPrev() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canPrev()
}

func (s *Service) canNext() bool {
	return s.done && s.page()+1 < s.totalPages()
}

func (s *Service) canPrev() bool {
	return s.done && s.params.Offset > 0
}

// Page returns the zero-based index of the current page.
func (s *Service) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page()
}

func (s *Service) page() int {
	if !s.done {
		return 0
	}
	return s.params.Offset / s.params.Limit
}

// TotalPages returns the number of result pages of the last search.
func (s *Service) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPages()
}

func (s *Service) totalPages() int {
	if !s.done || s.count <= 0 {
		return 0
	}
	return (s.count + s.params.Limit - 1) / s.params.Limit
}

// TotalResults returns the match count reported for the last search.
func (s *Service) TotalResults() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Params returns the parameters of the last completed search.
func (s *Service) Params() (Params, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params, s.done
}
