package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/llehouerou/mbrowse/internal/entity"
)

var (
	// ErrInvalidJSON is returned when a body is not a JSON object.
	ErrInvalidJSON = errors.New("invalid JSON response")
	// ErrMissingField is returned when a list response lacks its entity list.
	ErrMissingField = errors.New("response missing expected field")
)

// APIError is an error reported by the web service in the response body.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return "musicbrainz: " + e.Message
}

// Page is one page of a search or browse response.
type Page struct {
	Kind    entity.Kind
	Records []*entity.Record
	Count   int
	Offset  int
}

// searchKeys are probed in order when the entity kind of a response is unknown.
var searchKeys = []string{
	"artists", "releases", "recordings", "release-groups", "works", "labels", "areas",
}

// ParseDetails decodes a lookup response into a property map.
func ParseDetails(body []byte) (entity.Map, error) {
	root, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	return root, nil
}

// ParseSearch decodes a search response. With entity.Unknown the kind is
// inferred from the entity list present in the body.
func ParseSearch(body []byte, kind entity.Kind) (*Page, error) {
	root, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	if kind == entity.Unknown {
		for _, key := range searchKeys {
			if root.Has(key) {
				kind = entity.KindFromPlural(key)
				break
			}
		}
		if kind == entity.Unknown {
			return nil, fmt.Errorf("%w: no entity list", ErrMissingField)
		}
	}
	return page(root, kind.Plural(), kind)
}

// ParseList decodes a browse or list response whose entities live under
// listKey ("releases", "release-list", ...).
func ParseList(body []byte, listKey string, kind entity.Kind) (*Page, error) {
	root, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	return page(root, listKey, kind)
}

func page(root entity.Map, listKey string, kind entity.Kind) (*Page, error) {
	v, ok := root[listKey]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingField, listKey)
	}
	items, _ := v.Items()

	p := &Page{Kind: kind, Records: make([]*entity.Record, 0, len(items))}
	p.Count, ok = root.Int("count")
	if !ok {
		p.Count, ok = root.Int(kind.String() + "-count")
	}
	hasCount := ok
	p.Offset, ok = root.Int("offset")
	if !ok {
		p.Offset, _ = root.Int(kind.String() + "-offset")
	}

	for _, item := range objects(items) {
		if rec := FromMap(item, kind); rec != nil {
			p.Records = append(p.Records, rec)
		}
	}
	if !hasCount {
		p.Count = len(p.Records)
	}
	return p, nil
}

func decodeObject(body []byte) (entity.Map, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	if raw == nil {
		return nil, ErrInvalidJSON
	}
	root := entity.MapFromAny(raw)
	if msg := serviceError(root); msg != "" {
		return nil, &APIError{Message: msg}
	}
	return root, nil
}

func serviceError(root entity.Map) string {
	if v, ok := root["error"]; ok {
		if s, ok := v.Str(); ok && s != "" {
			return s
		}
		return "unknown error"
	}
	if items, ok := root["errors"].Items(); ok {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.Str(); ok {
				msgs = append(msgs, s)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
