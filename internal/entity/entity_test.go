package entity

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"artist", Artist},
		{"Artist", Artist},
		{"release-group", ReleaseGroup},
		{"ReleaseGroup", ReleaseGroup},
		{" cdstub ", CDStub},
		{"documentation", Documentation},
		{"nope", Unknown},
		{"", Unknown},
	}
	for _, tt := range tests {
		if got := ParseKind(tt.in); got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestKind_Names(t *testing.T) {
	assert.Equal(t, "release-group", ReleaseGroup.String())
	assert.Equal(t, "release-groups", ReleaseGroup.Plural())
	assert.Equal(t, "series", Series.Plural())
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, Release, KindFromPlural("releases"))
	assert.Equal(t, Unknown, KindFromPlural("bogus"))
}

func TestKind_DefaultIncludes(t *testing.T) {
	inc := Artist.DefaultIncludes()
	assert.Contains(t, inc, "aliases")
	assert.Contains(t, inc, "url-rels")
	assert.Equal(t, []string{"tags", "ratings", "genres"}, Unknown.DefaultIncludes())
	assert.Equal(t, []string{"tags", "ratings", "genres"}, Editor.DefaultIncludes())
}

func TestValue_FromAnyRoundTrip(t *testing.T) {
	var raw any
	require.NoError(t, json.Unmarshal([]byte(`{"a":[1,"x",true,null,{"b":2.5}]}`), &raw))

	v := FromAny(raw)
	assert.Equal(t, TypeMap, v.Type())
	assert.Equal(t, raw, v.Any())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	var back Value
	require.NoError(t, json.Unmarshal(out, &back))
	assert.True(t, v.Equal(back))
}

func TestValue_IsEmpty(t *testing.T) {
	assert.True(t, Null().IsEmpty())
	assert.True(t, String("").IsEmpty())
	assert.True(t, List().IsEmpty())
	assert.True(t, MapOf(nil).IsEmpty())
	assert.False(t, Int(0).IsEmpty())
	assert.False(t, Bool(false).IsEmpty())
	assert.False(t, String("x").IsEmpty())
}

func TestValue_AsInt(t *testing.T) {
	n, ok := Number(248000).AsInt()
	assert.True(t, ok)
	assert.Equal(t, 248000, n)

	n, ok = String(" 12 ").AsInt()
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = String("twelve").AsInt()
	assert.False(t, ok)
	_, ok = Bool(true).AsInt()
	assert.False(t, ok)
}

func TestValue_Display(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", Null(), ""},
		{"int", Int(42), "42"},
		{"float", Number(1.5), "1.5"},
		{"bool", Bool(true), "true"},
		{"list", Strings([]string{"rock", "", "grunge"}), "rock, grunge"},
		{"named map", MapOf(Map{"name": String("US"), "id": String("x")}), "US"},
		{"titled map", MapOf(Map{"title": String("Bleach")}), "Bleach"},
		{"plain map", MapOf(Map{"end": String("1994"), "begin": String("1987")}), "begin: 1987, end: 1994"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Display())
		})
	}
}

func TestValue_CloneIsDeep(t *testing.T) {
	orig := MapOf(Map{"l": List(String("a"))})
	cp := orig.Clone()
	m, _ := cp.Fields()
	m["l"] = List()
	assert.False(t, orig.Equal(cp))
	om, _ := orig.Fields()
	items, _ := om["l"].Items()
	assert.Len(t, items, 1)
}

func TestRecord_Basics(t *testing.T) {
	r := NewRecord("5b11f4ce-a62d-471e-81fc-a69a8278c7da", "Nirvana", Artist)
	r.SetDisambiguation("90s US grunge band")
	r.SetScore(100)
	r.SetProperty("type", String("Group"))

	assert.Equal(t, "Nirvana (90s US grunge band)", r.DisplayName())
	assert.Equal(t, 100, r.Score())
	assert.Equal(t, "Group", r.PropertyString("type"))
	assert.Equal(t, []string{"type"}, r.PropertyKeys())
	assert.Equal(t, "https://musicbrainz.org/artist/5b11f4ce-a62d-471e-81fc-a69a8278c7da", r.URL())
	assert.Empty(t, NewRecord("x", "y", Unknown).URL())

	snap := r.Properties()
	snap["type"] = String("Person")
	assert.Equal(t, "Group", r.PropertyString("type"), "Properties must return a copy")
}

func TestRecord_MarshalJSON(t *testing.T) {
	r := NewRecord("id1", "Bleach", Release)
	r.SetProperty("track_count", Int(13))

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"id1","name":"Bleach","kind":"release","properties":{"track_count":13}}`, string(out))
}

func TestRecord_ConcurrentAccess(t *testing.T) {
	r := NewRecord("id", "n", Artist)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			for j := range 100 {
				r.SetProperty("k", Int(i*j))
				_ = r.PropertyString("k")
				_ = r.Properties()
			}
		})
	}
	wg.Wait()
	assert.True(t, r.HasProperty("k"))
}
