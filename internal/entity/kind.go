// Package entity defines the generic MusicBrainz entity model shared by the
// parser, the enricher, the detail fetcher and the UI.
package entity

import "strings"

// Kind identifies a MusicBrainz entity type.
type Kind int

const (
	Artist Kind = iota
	Release
	ReleaseGroup
	Recording
	Label
	Work
	Area
	Place
	Annotation
	CDStub
	Editor
	Tag
	Instrument
	Series
	Event
	Documentation
	Unknown
)

const fallbackIncludes = "tags ratings genres"

const relIncludes = " artist-rels release-rels release-group-rels recording-rels work-rels url-rels"

type kindInfo struct {
	name     string // Go-style display name
	singular string // web service resource name
	plural   string // key of the entity list in search responses
	includes string // default lookup includes, space separated
}

var kinds = [...]kindInfo{
	Artist:        {"Artist", "artist", "artists", "aliases tags ratings genres recordings releases release-groups works" + relIncludes},
	Release:       {"Release", "release", "releases", "aliases tags ratings genres artists labels recordings release-groups" + relIncludes},
	ReleaseGroup:  {"ReleaseGroup", "release-group", "release-groups", "aliases tags ratings genres artists releases" + relIncludes},
	Recording:     {"Recording", "recording", "recordings", "aliases tags ratings genres artists releases release-groups isrcs" + relIncludes},
	Label:         {"Label", "label", "labels", "aliases tags ratings genres releases" + relIncludes},
	Work:          {"Work", "work", "works", "aliases tags ratings genres" + relIncludes},
	Area:          {"Area", "area", "areas", "aliases tags ratings genres"},
	Place:         {"Place", "place", "places", "aliases tags ratings genres"},
	Annotation:    {"Annotation", "annotation", "annotations", fallbackIncludes},
	CDStub:        {"CDStub", "cdstub", "cdstubs", fallbackIncludes},
	Editor:        {"Editor", "editor", "editors", fallbackIncludes},
	Tag:           {"Tag", "tag", "tags", fallbackIncludes},
	Instrument:    {"Instrument", "instrument", "instruments", "aliases tags ratings genres"},
	Series:        {"Series", "series", "series", "aliases tags ratings genres"},
	Event:         {"Event", "event", "events", "aliases tags ratings genres"},
	Documentation: {"Documentation", "documentation", "documentation", fallbackIncludes},
}

func (k Kind) known() bool {
	return k >= Artist && k < Unknown
}

// String returns the web service resource name ("artist", "release-group", ...)
// or "unknown".
func (k Kind) String() string {
	if !k.known() {
		return "unknown"
	}
	return kinds[k].singular
}

// Title returns a human label for the kind ("ReleaseGroup").
func (k Kind) Title() string {
	if !k.known() {
		return "Unknown"
	}
	return kinds[k].name
}

// Plural returns the key under which search responses list entities of this kind.
func (k Kind) Plural() string {
	if !k.known() {
		return "unknown"
	}
	return kinds[k].plural
}

// DefaultIncludes returns the include list used for lookups of this kind.
func (k Kind) DefaultIncludes() []string {
	if !k.known() {
		return strings.Fields(fallbackIncludes)
	}
	return strings.Fields(kinds[k].includes)
}

// IsKnown reports whether k names a real entity type.
func (k Kind) IsKnown() bool {
	return k.known()
}

// ParseKind resolves a resource name ("release-group") or Go-style name
// ("ReleaseGroup"), case-insensitively. Unrecognized input yields Unknown.
func ParseKind(s string) Kind {
	s = strings.TrimSpace(s)
	for i, info := range kinds {
		if strings.EqualFold(s, info.singular) || strings.EqualFold(s, info.name) {
			return Kind(i)
		}
	}
	return Unknown
}

// KindFromPlural resolves a search response list key ("artists") to a kind.
func KindFromPlural(s string) Kind {
	for i, info := range kinds {
		if s == info.plural {
			return Kind(i)
		}
	}
	return Unknown
}

// Searchable lists the kinds offered by the search box, in display order.
func Searchable() []Kind {
	return []Kind{
		Artist, Release, ReleaseGroup, Recording, Label, Work,
		Area, Place, Annotation, CDStub, Editor, Tag,
		Instrument, Series, Event,
	}
}
