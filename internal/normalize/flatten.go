package normalize

import (
	"strings"

	"github.com/llehouerou/mbrowse/internal/entity"
)

// str returns the string at key, or "" when absent or of another type.
func str(m entity.Map, key string) entity.Value {
	return entity.String(m.Str(key))
}

func num(m entity.Map, key string) entity.Value {
	n, _ := m.Int(key)
	return entity.Int(n)
}

func flag(m entity.Map, key string) entity.Value {
	b, _ := m[key].Boolean()
	return entity.Bool(b)
}

// objects yields the map elements of a list, skipping anything else.
func objects(items []entity.Value) []entity.Map {
	out := make([]entity.Map, 0, len(items))
	for _, item := range items {
		if m, ok := item.Fields(); ok {
			out = append(out, m)
		}
	}
	return out
}

// artistCredits reduces an artist-credit array to ordered
// {artist-id, artist-name, join-phrase} tuples. The second result is the
// credit rendered as one string, join phrases included untrimmed.
func artistCredits(items []entity.Value) (entity.Value, string) {
	credits := make([]entity.Value, 0, len(items))
	var b strings.Builder
	for _, c := range objects(items) {
		artist, _ := c.Sub("artist")
		name := c.Str("name")
		if name == "" {
			name = artist.Str("name")
		}
		join := c.Str("joinphrase")
		credits = append(credits, entity.MapOf(entity.Map{
			"artist-id":   entity.String(artist.Str("id")),
			"artist-name": entity.String(name),
			"join-phrase": entity.String(join),
		}))
		b.WriteString(name)
		b.WriteString(join)
	}
	return entity.List(credits...), b.String()
}

func lifeSpan(m entity.Map) entity.Value {
	return entity.MapOf(entity.Map{
		"begin": str(m, "begin"),
		"end":   str(m, "end"),
		"ended": flag(m, "ended"),
	})
}

func area(m entity.Map) entity.Value {
	out := entity.Map{
		"id":        str(m, "id"),
		"name":      str(m, "name"),
		"sort-name": str(m, "sort-name"),
		"type":      str(m, "type"),
		"type-id":   str(m, "type-id"),
	}
	for _, key := range []string{"iso-3166-1-codes", "iso-3166-2-codes"} {
		if v, ok := m[key]; ok {
			out[key] = v.Clone()
		}
	}
	return entity.MapOf(out)
}

// counted flattens tags and genres to {name, count}.
func counted(items []entity.Value) entity.Value {
	out := make([]entity.Value, 0, len(items))
	for _, t := range objects(items) {
		out = append(out, entity.MapOf(entity.Map{
			"name":  str(t, "name"),
			"count": num(t, "count"),
		}))
	}
	return entity.List(out...)
}

func aliases(items []entity.Value) entity.Value {
	out := make([]entity.Value, 0, len(items))
	for _, a := range objects(items) {
		out = append(out, entity.MapOf(entity.Map{
			"name":      str(a, "name"),
			"sort-name": str(a, "sort-name"),
			"type":      str(a, "type"),
			"type-id":   str(a, "type-id"),
			"locale":    str(a, "locale"),
			"primary":   flag(a, "primary"),
			"begin":     str(a, "begin"),
			"end":       str(a, "end"),
			"ended":     flag(a, "ended"),
		}))
	}
	return entity.List(out...)
}

// relationTargets lists the target entity fields kept per relation target type.
var relationTargets = []struct {
	key    string
	fields []string
	ints   []string
}{
	{key: "artist", fields: []string{"id", "name", "sort-name", "disambiguation"}},
	{key: "release", fields: []string{"id", "title", "status", "disambiguation"}},
	{key: "release-group", fields: []string{"id", "title", "primary-type", "disambiguation"}},
	{key: "recording", fields: []string{"id", "title", "disambiguation"}, ints: []string{"length"}},
	{key: "work", fields: []string{"id", "title", "type", "disambiguation"}},
	{key: "label", fields: []string{"id", "name", "disambiguation"}},
	{key: "area", fields: []string{"id", "name", "disambiguation"}},
	{key: "place", fields: []string{"id", "name", "disambiguation"}},
	{key: "url", fields: []string{"id", "resource"}},
}

func relationships(items []entity.Value) entity.Value {
	out := make([]entity.Value, 0, len(items))
	for _, r := range objects(items) {
		rel := entity.Map{
			"type":      str(r, "type"),
			"type-id":   str(r, "type-id"),
			"direction": str(r, "direction"),
			"begin":     str(r, "begin"),
			"end":       str(r, "end"),
			"ended":     flag(r, "ended"),
		}
		for _, target := range relationTargets {
			t, ok := r.Sub(target.key)
			if !ok {
				continue
			}
			fields := entity.Map{}
			for _, f := range target.fields {
				fields[f] = str(t, f)
			}
			for _, f := range target.ints {
				fields[f] = num(t, f)
			}
			rel[target.key] = entity.MapOf(fields)
			rel["target-type"] = entity.String(target.key)
			break
		}
		if attrs, ok := r["attributes"].Items(); ok {
			names := make([]entity.Value, 0, len(attrs))
			for _, a := range attrs {
				if s, ok := a.Str(); ok {
					names = append(names, entity.String(s))
				}
			}
			rel["attributes"] = entity.List(names...)
		}
		out = append(out, entity.MapOf(rel))
	}
	return entity.List(out...)
}

func media(items []entity.Value) entity.Value {
	out := make([]entity.Value, 0, len(items))
	for _, m := range objects(items) {
		medium := entity.Map{
			"position":    num(m, "position"),
			"title":       str(m, "title"),
			"format":      str(m, "format"),
			"format-id":   str(m, "format-id"),
			"track-count": num(m, "track-count"),
		}
		if tracks, ok := m["tracks"].Items(); ok {
			medium["tracks"] = mediumTracks(tracks)
		}
		out = append(out, entity.MapOf(medium))
	}
	return entity.List(out...)
}

func mediumTracks(items []entity.Value) entity.Value {
	out := make([]entity.Value, 0, len(items))
	for _, t := range objects(items) {
		track := entity.Map{
			"id":       str(t, "id"),
			"position": num(t, "position"),
			"number":   str(t, "number"),
			"title":    str(t, "title"),
			"length":   num(t, "length"),
		}
		if credits, ok := t["artist-credit"].Items(); ok {
			track[KeyArtistCredits], _ = artistCredits(credits)
		}
		if rec, ok := t["recording"]; ok {
			track["recording"] = rec.Clone()
		}
		out = append(out, entity.MapOf(track))
	}
	return entity.List(out...)
}

func releaseEvents(items []entity.Value) entity.Value {
	out := make([]entity.Value, 0, len(items))
	for _, e := range objects(items) {
		ev := entity.Map{"date": str(e, "date")}
		if a, ok := e.Sub("area"); ok {
			ev["area"] = area(a)
		}
		out = append(out, entity.MapOf(ev))
	}
	return entity.List(out...)
}

func coverArtArchive(m entity.Map) entity.Value {
	return entity.MapOf(entity.Map{
		"artwork": flag(m, "artwork"),
		"count":   num(m, "count"),
		"front":   flag(m, "front"),
		"back":    flag(m, "back"),
	})
}

// subEntities keeps the identifying fields of a nested entity list plus the
// few kind-specific columns shown in detail tables.
func subEntities(items []entity.Value, kind entity.Kind) entity.Value {
	out := make([]entity.Value, 0, len(items))
	for _, e := range objects(items) {
		name := e.Str("name")
		if name == "" {
			name = e.Str("title")
		}
		info := entity.Map{
			"id":             str(e, "id"),
			"name":           entity.String(name),
			"disambiguation": str(e, "disambiguation"),
		}
		switch kind {
		case entity.Recording:
			info["length"] = num(e, "length")
		case entity.Release:
			info["date"] = str(e, "date")
			info["status"] = str(e, "status")
			info["track-count"] = num(e, "track-count")
		case entity.ReleaseGroup:
			info["primary-type"] = str(e, "primary-type")
			info["first-release-date"] = str(e, "first-release-date")
		case entity.Work:
			info["type"] = str(e, "type")
		}
		out = append(out, entity.MapOf(info))
	}
	return entity.List(out...)
}
