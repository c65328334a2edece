// Package enrich merges lookup payloads into records already on screen.
package enrich

import (
	"strings"

	"github.com/llehouerou/mbrowse/internal/entity"
)

// Derived property names.
const (
	BirthDate        = "birth_date"
	DeathDate        = "death_date"
	Origin           = "origin"
	Country          = "country"
	ArtistType       = "artist_type"
	Gender           = "gender"
	ReleaseCount     = "release_count"
	RecordingCount   = "recording_count"
	WorkCount        = "work_count"
	RecordingNames   = "recording_names"
	WorkNames        = "work_names"
	ReleaseNames     = "release_names"
	ReleaseDate      = "release_date"
	TrackCount       = "track_count"
	Duration         = "duration"
	PrimaryType      = "primary_type"
	FirstReleaseDate = "first_release_date"
	LabelCode        = "label_code"
	LabelType        = "label_type"
	WorkType         = "work_type"
)

// Enrich merges a lookup payload into rec. Derived fields are always
// written, so a refetch refreshes them. Any other payload key is copied
// only when the record does not hold it yet. Nothing is ever removed.
func Enrich(rec *entity.Record, payload entity.Map) {
	if rec == nil || len(payload) == 0 {
		return
	}

	derived := entity.Map{}
	switch rec.Kind() {
	case entity.Artist:
		artist(derived, payload)
	case entity.Release:
		release(derived, payload)
	case entity.Recording:
		if payload.Has("length") {
			derived[Duration] = intOf(payload, "length")
		}
	case entity.ReleaseGroup:
		setString(derived, PrimaryType, payload, "primary-type")
		setString(derived, FirstReleaseDate, payload, "first-release-date")
	case entity.Label:
		if payload.Has("label-code") {
			derived[LabelCode] = intOf(payload, "label-code")
		}
		setString(derived, LabelType, payload, "type")
		setString(derived, Country, payload, "country")
	case entity.Work:
		setString(derived, WorkType, payload, "type")
		setString(derived, "language", payload, "language")
	}
	common(derived, payload)

	if d, ok := payload["disambiguation"].Str(); ok && d != "" {
		rec.SetDisambiguation(d)
	}

	rec.Update(func(props entity.Map) {
		for k, v := range derived {
			props[k] = v
		}
		for k, v := range payload {
			if _, ok := props[k]; !ok {
				props[k] = v.Clone()
			}
		}
	})
}

func artist(out, p entity.Map) {
	if ls, ok := p.Sub("life-span"); ok {
		if begin := ls.Str("begin"); begin != "" {
			out[BirthDate] = entity.String(begin)
		}
		if end := ls.Str("end"); end != "" {
			out[DeathDate] = entity.String(end)
		}
	}
	if area, ok := p.Sub("area"); ok {
		out[Origin] = entity.String(area.Str("name"))
		if codes, ok := area["iso-3166-1-codes"].Items(); ok && len(codes) > 0 {
			c, _ := codes[0].Str()
			out[Country] = entity.String(c)
		}
	}
	setString(out, ArtistType, p, "type")
	setString(out, Gender, p, "gender")

	setCount(out, ReleaseCount, p, "releaseCount", "release-count")
	setCount(out, RecordingCount, p, "recordingCount", "recording-count")
	setCount(out, WorkCount, p, "workCount", "work-count")

	setNames(out, "recordings", RecordingNames, p)
	setNames(out, "works", WorkNames, p)
	setNames(out, "releases", ReleaseNames, p)

	if items, ok := p["aliases"].Items(); ok {
		if names := fieldList(items, "name"); len(names) > 0 {
			out["aliases"] = entity.Strings(names)
		}
	}
}

func release(out, p entity.Map) {
	setString(out, ReleaseDate, p, "date")
	setString(out, Country, p, "country")
	setString(out, "status", p, "status")
	if p.Has("track-count") {
		out[TrackCount] = intOf(p, "track-count")
	} else if media, ok := p["media"].Items(); ok {
		// Lookups report track counts per medium only.
		total := 0
		for _, m := range media {
			if fields, ok := m.Fields(); ok {
				n, _ := fields.Int("track-count")
				total += n
			}
		}
		out[TrackCount] = entity.Int(total)
	}
	setString(out, "barcode", p, "barcode")
	if infos, ok := p["label-info"].Items(); ok {
		var labels []string
		for _, info := range infos {
			fields, ok := info.Fields()
			if !ok {
				continue
			}
			if label, ok := fields.Sub("label"); ok && label.Str("name") != "" {
				labels = append(labels, label.Str("name"))
			}
		}
		if len(labels) > 0 {
			out["labels"] = entity.Strings(labels)
		}
	}
}

func common(out, p entity.Map) {
	if p.Has("disambiguation") {
		out["disambiguation"] = entity.String(p.Str("disambiguation"))
	}
	if items, ok := p["tags"].Items(); ok {
		out["tags"] = entity.Strings(fieldList(items, "name"))
	}
	if items, ok := p["genres"].Items(); ok {
		out["genres"] = entity.Strings(fieldList(items, "name"))
	}
}

func setString(out entity.Map, dst string, p entity.Map, src string) {
	if p.Has(src) {
		out[dst] = entity.String(p.Str(src))
	}
}

func setCount(out entity.Map, dst string, p entity.Map, srcs ...string) {
	for _, src := range srcs {
		if p.Has(src) {
			out[dst] = intOf(p, src)
			return
		}
	}
}

func intOf(p entity.Map, key string) entity.Value {
	n, _ := p.Int(key)
	return entity.Int(n)
}

// setNames reduces a nested entity list to its titles, stored both as a list
// under key and comma-joined under namesKey.
func setNames(out entity.Map, key, namesKey string, p entity.Map) {
	v, ok := p[key]
	if !ok {
		return
	}
	var names []string
	if items, ok := v.Items(); ok {
		for _, item := range items {
			if fields, ok := item.Fields(); ok {
				title := fields.Str("title")
				if !fields.Has("title") {
					title = fields.Str("name")
				}
				if title != "" {
					names = append(names, title)
				}
				continue
			}
			names = append(names, item.Display())
		}
	} else if s, ok := v.Str(); ok && s != "" {
		names = strings.Split(s, ", ")
	}
	if len(names) == 0 {
		return
	}
	out[key] = entity.Strings(names)
	out[namesKey] = entity.String(strings.Join(names, ", "))
}

// fieldList collects one string field from a list of objects.
func fieldList(items []entity.Value, field string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if fields, ok := item.Fields(); ok {
			if s := fields.Str(field); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
