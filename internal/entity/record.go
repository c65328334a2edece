package entity

import (
	"encoding/json"
	"sync"
)

const webBaseURL = "https://musicbrainz.org"

// Record is a loosely typed MusicBrainz entity: identity fields plus an open
// property bag filled by the parser and later enriched with lookup details.
//
// ID, name and kind are fixed at construction. Records are shared between the
// detail fetcher and the UI, so every accessor is safe for concurrent use.
type Record struct {
	id   string
	name string
	kind Kind

	mu             sync.RWMutex
	disambiguation string
	score          int
	props          Map
}

// NewRecord creates a record with an empty property bag.
func NewRecord(id, name string, kind Kind) *Record {
	return &Record{
		id:    id,
		name:  name,
		kind:  kind,
		props: Map{},
	}
}

// ID returns the MusicBrainz identifier.
func (r *Record) ID() string { return r.id }

// Name returns the display name (name or title).
func (r *Record) Name() string { return r.name }

// Kind returns the entity type.
func (r *Record) Kind() Kind { return r.kind }

// Disambiguation returns the free-text disambiguation comment.
func (r *Record) Disambiguation() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.disambiguation
}

// SetDisambiguation sets the disambiguation comment.
func (r *Record) SetDisambiguation(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disambiguation = s
}

// Score returns the search relevance score (0 when not a search hit).
func (r *Record) Score() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.score
}

// SetScore sets the search relevance score.
func (r *Record) SetScore(score int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.score = score
}

// Property returns the property stored under key.
func (r *Record) Property(key string) (Value, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.props[key]
	return v, ok
}

// PropertyString returns the property under key rendered for display.
func (r *Record) PropertyString(key string) string {
	v, _ := r.Property(key)
	return v.Display()
}

// HasProperty reports whether key is present.
func (r *Record) HasProperty(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.props[key]
	return ok
}

// SetProperty stores v under key, replacing any previous value.
func (r *Record) SetProperty(key string, v Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.props[key] = v
}

// Update runs fn with exclusive access to the property bag. Used by the
// enricher so a whole merge is applied atomically.
func (r *Record) Update(fn func(props Map)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.props)
}

// Properties returns a deep copy of the property bag.
func (r *Record) Properties() Map {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.props.Clone()
}

// PropertyKeys returns the property names in sorted order.
func (r *Record) PropertyKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.props.Keys()
}

// DisplayName returns the name followed by the disambiguation, if any.
func (r *Record) DisplayName() string {
	d := r.Disambiguation()
	if d == "" {
		return r.name
	}
	return r.name + " (" + d + ")"
}

// URL returns the musicbrainz.org page of the entity.
func (r *Record) URL() string {
	if r.id == "" || !r.kind.IsKnown() {
		return ""
	}
	return webBaseURL + "/" + r.kind.String() + "/" + r.id
}

type recordJSON struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	Disambiguation string `json:"disambiguation,omitempty"`
	Score          int    `json:"score,omitempty"`
	Properties     Map    `json:"properties"`
}

// MarshalJSON implements json.Marshaler.
func (r *Record) MarshalJSON() ([]byte, error) {
	r.mu.RLock()
	out := recordJSON{
		ID:             r.id,
		Name:           r.name,
		Kind:           r.kind.String(),
		Disambiguation: r.disambiguation,
		Score:          r.score,
		Properties:     r.props.Clone(),
	}
	r.mu.RUnlock()
	return json.Marshal(out)
}
