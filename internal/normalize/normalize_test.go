package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/mbrowse/internal/entity"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return obj
}

const artistJSON = `{
	"id": "5b11f4ce-a62d-471e-81fc-a69a8278c7da",
	"name": "Nirvana",
	"sort-name": "Nirvana",
	"type": "Group",
	"disambiguation": "90s US grunge band",
	"score": 100,
	"life-span": {"begin": "1987", "end": "1994-04-05", "ended": true},
	"area": {"id": "489ce91b", "name": "United States", "iso-3166-1-codes": ["US"]},
	"tags": [{"name": "grunge", "count": 12}, {"name": "rock", "count": 3}],
	"aliases": [{"name": "Nirvana US", "primary": null}],
	"isnis": ["0000000123486830"]
}`

func TestNormalize_Artist(t *testing.T) {
	rec := Normalize(decode(t, artistJSON), entity.Unknown)
	require.NotNil(t, rec)

	assert.Equal(t, entity.Artist, rec.Kind())
	assert.Equal(t, "5b11f4ce-a62d-471e-81fc-a69a8278c7da", rec.ID())
	assert.Equal(t, "Nirvana", rec.Name())
	assert.Equal(t, "90s US grunge band", rec.Disambiguation())
	assert.Equal(t, 100, rec.Score())

	ls, ok := rec.Property(KeyLifeSpan)
	require.True(t, ok)
	m, _ := ls.Fields()
	assert.Equal(t, "1987", m.Str("begin"))
	assert.Equal(t, "1994-04-05", m.Str("end"))
	ended, _ := m["ended"].Boolean()
	assert.True(t, ended)

	area, ok := rec.Property(KeyAreaInfo)
	require.True(t, ok)
	assert.Equal(t, "United States", area.Display())

	tags, _ := rec.Property("tags")
	items, _ := tags.Items()
	require.Len(t, items, 2)
	first, _ := items[0].Fields()
	assert.Equal(t, "grunge", first.Str("name"))
	n, _ := first.Int("count")
	assert.Equal(t, 12, n)

	assert.Equal(t, "0000000123486830", rec.PropertyString("isnis"))
}

func TestNormalize_HintWins(t *testing.T) {
	rec := Normalize(decode(t, artistJSON), entity.Label)
	require.NotNil(t, rec)
	assert.Equal(t, entity.Label, rec.Kind())
}

func TestNormalize_ArtistCredits(t *testing.T) {
	rec := Normalize(decode(t, `{
		"id": "r1",
		"title": "Under Pressure",
		"length": 248000,
		"artist-credit": [
			{"name": "Queen", "joinphrase": " & ", "artist": {"id": "a1", "name": "Queen"}},
			{"joinphrase": "", "artist": {"id": "a2", "name": "David Bowie"}},
			"garbage"
		]
	}`), entity.Unknown)
	require.NotNil(t, rec)
	assert.Equal(t, entity.Recording, rec.Kind())
	assert.Equal(t, "Under Pressure", rec.Name())

	v, ok := rec.Property(KeyArtistCredits)
	require.True(t, ok)
	credits, _ := v.Items()
	require.Len(t, credits, 2)

	c0, _ := credits[0].Fields()
	assert.Equal(t, "a1", c0.Str("artist-id"))
	assert.Equal(t, "Queen", c0.Str("artist-name"))
	assert.Equal(t, " & ", c0.Str("join-phrase"))

	c1, _ := credits[1].Fields()
	assert.Equal(t, "David Bowie", c1.Str("artist-name"))

	assert.Equal(t, "Queen & David Bowie", rec.PropertyString(KeyCreditedArtist))
	// The raw credit array is still reachable.
	assert.True(t, rec.HasProperty("artist-credit"))
}

func TestNormalize_RejectsOnlyWhenIDAndNameMissing(t *testing.T) {
	tests := []struct {
		name string
		json string
		want bool
	}{
		{"id and name", `{"id":"x","name":"n"}`, true},
		{"id only", `{"id":"x"}`, true},
		{"title only", `{"title":"t"}`, true},
		{"neither", `{"type":"Group","score":3}`, false},
		{"empty strings", `{"id":"","name":"","title":""}`, false},
		{"empty object", `{}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Normalize(decode(t, tt.json), entity.Unknown)
			if got := rec != nil; got != tt.want {
				t.Errorf("record created = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalize_EmptyKeyKeptWithoutName(t *testing.T) {
	rec := Normalize(map[string]any{"id": "x", "": 5.0, "title": 7.0}, entity.Unknown)
	require.NotNil(t, rec)
	assert.Equal(t, "", rec.Name())

	v, ok := rec.Property("")
	require.True(t, ok)
	n, _ := v.AsInt()
	assert.Equal(t, 5, n)
	assert.True(t, rec.HasProperty("title"))
}

func TestNormalize_MalformedNestedKept(t *testing.T) {
	rec := Normalize(decode(t, `{
		"id": "x",
		"name": "n",
		"life-span": "1990",
		"tags": {"name": "oops"},
		"relations": [1, "two", {"type": "member of band", "artist": {"id": "b", "name": "Band"}}],
		"disambiguation": 42,
		"score": "high"
	}`), entity.Artist)
	require.NotNil(t, rec)

	assert.Equal(t, "1990", rec.PropertyString("life-span"))
	assert.False(t, rec.HasProperty(KeyLifeSpan))

	tags, _ := rec.Property("tags")
	assert.Equal(t, entity.TypeMap, tags.Type())

	rels, ok := rec.Property(KeyRelationships)
	require.True(t, ok)
	items, _ := rels.Items()
	require.Len(t, items, 1)
	rel, _ := items[0].Fields()
	assert.Equal(t, "member of band", rel.Str("type"))
	assert.Equal(t, "artist", rel.Str("target-type"))

	// Values of an unexpected type stay in the bag instead of being promoted.
	assert.Empty(t, rec.Disambiguation())
	assert.Equal(t, "42", rec.PropertyString("disambiguation"))
	assert.Equal(t, 0, rec.Score())
	assert.Equal(t, "high", rec.PropertyString("score"))
}

func TestNormalize_Idempotent(t *testing.T) {
	obj := decode(t, artistJSON)
	a := Normalize(obj, entity.Unknown)
	b := Normalize(obj, entity.Unknown)
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.True(t, a.Properties().Equal(b.Properties()))
}

func TestNormalize_Media(t *testing.T) {
	rec := Normalize(decode(t, `{
		"id": "rel",
		"title": "Nevermind",
		"status": "Official",
		"barcode": "720642515124",
		"media": [{
			"position": 1, "format": "CD", "track-count": 2,
			"tracks": [
				{"id": "t1", "position": 1, "number": "1", "title": "Smells Like Teen Spirit", "length": 301000},
				{"id": "t2", "position": 2, "number": "2", "title": "In Bloom", "length": 254000}
			]
		}]
	}`), entity.Unknown)
	require.NotNil(t, rec)
	assert.Equal(t, entity.Release, rec.Kind())

	v, _ := rec.Property("media")
	media, _ := v.Items()
	require.Len(t, media, 1)
	medium, _ := media[0].Fields()
	assert.Equal(t, "CD", medium.Str("format"))
	tracks, _ := medium["tracks"].Items()
	require.Len(t, tracks, 2)
	t2, _ := tracks[1].Fields()
	assert.Equal(t, "In Bloom", t2.Str("title"))
	length, _ := t2.Int("length")
	assert.Equal(t, 254000, length)
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		json string
		want entity.Kind
	}{
		{`{"type":"Person","sort-name":"x","gender":"Male"}`, entity.Artist},
		{`{"status":"Official","barcode":"1","media":[]}`, entity.Release},
		{`{"length":1,"artist-credit":[]}`, entity.Recording},
		{`{"primary-type":"Album"}`, entity.ReleaseGroup},
		{`{"first-release-date":"1991"}`, entity.ReleaseGroup},
		{`{"language":"eng"}`, entity.Work},
		{`{"label-code":1}`, entity.Label},
		{`{"type":"Original Production"}`, entity.Label},
		{`{"iso-3166-1-codes":["FR"]}`, entity.Area},
		{`{"title":"x","artist-credit":[]}`, entity.Recording},
		{`{"title":"x"}`, entity.Work},
		{`{"name":"x"}`, entity.Unknown},
	}
	for _, tt := range tests {
		if got := DetectKind(decode(t, tt.json)); got != tt.want {
			t.Errorf("DetectKind(%s) = %v, want %v", tt.json, got, tt.want)
		}
	}
}

// promoted source keys may be absent from the bag because they became record
// attributes.
var promoted = map[string]bool{
	"id": true, "name": true, "title": true, "disambiguation": true, "score": true,
}

func TestNormalize_LosslessRandomObjects(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	keys := []string{
		"id", "name", "title", "disambiguation", "score", "type", "sort-name",
		"life-span", "area", "begin-area", "end-area", "tags", "genres", "aliases",
		"relations", "media", "release-events", "artist-credit", "recordings",
		"releases", "works", "release-groups", "cover-art-archive",
		"text-representation", "length", "status", "barcode", "country", "x-custom", "",
	}
	var randomValue func(depth int) any
	randomValue = func(depth int) any {
		switch rng.IntN(6) {
		case 0:
			return nil
		case 1:
			return fmt.Sprintf("s%d", rng.IntN(100))
		case 2:
			return float64(rng.IntN(1000))
		case 3:
			return rng.IntN(2) == 0
		case 4:
			if depth > 2 {
				return "leaf"
			}
			n := rng.IntN(3)
			out := make([]any, n)
			for i := range out {
				out[i] = randomValue(depth + 1)
			}
			return out
		default:
			if depth > 2 {
				return 1.0
			}
			out := map[string]any{}
			for range rng.IntN(4) {
				out[keys[rng.IntN(len(keys))]] = randomValue(depth + 1)
			}
			return out
		}
	}

	for i := range 500 {
		obj := map[string]any{}
		for range rng.IntN(10) {
			obj[keys[rng.IntN(len(keys))]] = randomValue(0)
		}
		obj["id"] = fmt.Sprintf("id-%d", i)

		rec := Normalize(obj, entity.Unknown)
		require.NotNil(t, rec, "object %d", i)
		for key := range obj {
			if rec.HasProperty(key) {
				continue
			}
			if !promoted[key] {
				t.Fatalf("object %d: key %q vanished: %v", i, key, obj)
			}
		}
		again := Normalize(obj, entity.Unknown)
		if !rec.Properties().Equal(again.Properties()) {
			t.Fatalf("object %d: normalization not idempotent", i)
		}
	}
}

func TestParseSearch(t *testing.T) {
	body := []byte(`{
		"created": "2024-01-01T00:00:00Z",
		"count": 3,
		"offset": 0,
		"releases": [
			{"id": "1", "title": "Nevermind", "score": 100},
			{"id": "2", "title": "Nevermind (Deluxe)", "score": 90},
			{"score": 10},
			{"id": "3", "title": "Nevermind (Remastered)", "score": 80}
		]
	}`)

	p, err := ParseSearch(body, entity.Release)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Count)
	assert.Equal(t, 0, p.Offset)
	require.Len(t, p.Records, 3)
	assert.Equal(t, "Nevermind", p.Records[0].Name())
	assert.Equal(t, entity.Release, p.Records[2].Kind())
	assert.Equal(t, 80, p.Records[2].Score())
}

func TestParseSearch_DetectsKind(t *testing.T) {
	p, err := ParseSearch([]byte(`{"count":1,"offset":0,"labels":[{"id":"l","name":"Sub Pop"}]}`), entity.Unknown)
	require.NoError(t, err)
	assert.Equal(t, entity.Label, p.Kind)
	require.Len(t, p.Records, 1)
	assert.Equal(t, entity.Label, p.Records[0].Kind())
}

func TestParseSearch_Errors(t *testing.T) {
	_, err := ParseSearch([]byte(`not json`), entity.Artist)
	assert.ErrorIs(t, err, ErrInvalidJSON)

	_, err = ParseSearch([]byte(`[1,2]`), entity.Artist)
	assert.ErrorIs(t, err, ErrInvalidJSON)

	_, err = ParseSearch([]byte(`{"error":"Invalid mbid."}`), entity.Artist)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Invalid mbid.", apiErr.Message)

	_, err = ParseSearch([]byte(`{"count":0}`), entity.Artist)
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = ParseSearch([]byte(`{"count":0}`), entity.Unknown)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestParseList_BrowseCounts(t *testing.T) {
	p, err := ParseList([]byte(`{
		"release-count": 42,
		"release-offset": 25,
		"releases": [{"id": "a", "title": "Bleach"}]
	}`), "releases", entity.Release)
	require.NoError(t, err)
	assert.Equal(t, 42, p.Count)
	assert.Equal(t, 25, p.Offset)
	require.Len(t, p.Records, 1)
}

func TestParseDetails(t *testing.T) {
	m, err := ParseDetails([]byte(`{"id":"x","name":"Nirvana","release-count":12}`))
	require.NoError(t, err)
	n, ok := m.Int("release-count")
	assert.True(t, ok)
	assert.Equal(t, 12, n)
}
