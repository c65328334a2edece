// Package normalize turns MusicBrainz JSON entities into generic entity
// records. Every top-level key of the source object stays retrievable from the
// record, either verbatim in the property bag or under a documented rename.
package normalize

import (
	"github.com/llehouerou/mbrowse/internal/entity"
)

// Keys promoted to first-class record attributes.
const (
	keyID             = "id"
	keyName           = "name"
	keyTitle          = "title"
	keyDisambiguation = "disambiguation"
	keyScore          = "score"
)

// Renamed keys written next to their verbatim source.
const (
	KeyArtistCredits  = "artist-credits" // from "artist-credit"
	KeyCreditedArtist = "credited_artist"
	KeyLifeSpan       = "life_span"     // from "life-span"
	KeyAreaInfo       = "area_info"     // from "area"
	KeyBeginArea      = "begin_area"    // from "begin-area"
	KeyEndArea        = "end_area"      // from "end-area"
	KeyRelationships  = "relationships" // from "relations"
)

// subEntityLists maps nested entity lists to the kind of their elements.
var subEntityLists = map[string]entity.Kind{
	"recordings":     entity.Recording,
	"releases":       entity.Release,
	"release-groups": entity.ReleaseGroup,
	"works":          entity.Work,
}

// Normalize converts one decoded JSON entity object into a record. The hint
// wins over shape detection unless it is entity.Unknown. Nil is returned only
// when the object has neither an id nor a name/title.
func Normalize(obj map[string]any, hint entity.Kind) *entity.Record {
	if obj == nil {
		return nil
	}
	return FromMap(entity.MapFromAny(obj), hint)
}

// FromMap is Normalize for an already converted object.
func FromMap(m entity.Map, hint entity.Kind) *entity.Record {
	if len(m) == 0 {
		return nil
	}

	kind := hint
	if kind == entity.Unknown {
		kind = detect(m)
	}

	id := m.Str(keyID)
	name, nameKey := m.Str(keyName), keyName
	if name == "" {
		name, nameKey = m.Str(keyTitle), keyTitle
	}
	if id == "" && name == "" {
		return nil
	}
	if name == "" {
		nameKey = ""
	}

	rec := entity.NewRecord(id, name, kind)
	props := make(entity.Map, len(m))
	copyVerbatim(rec, props, m, nameKey)
	flatten(props, m)
	rec.Update(func(dst entity.Map) {
		for k, v := range props {
			dst[k] = v
		}
	})
	return rec
}

// copyVerbatim promotes identity fields and copies everything else as is.
func copyVerbatim(rec *entity.Record, props, m entity.Map, nameKey string) {
	for key, v := range m {
		if nameKey != "" && key == nameKey {
			continue
		}
		switch key {
		case keyID:
			if _, ok := v.Str(); ok {
				continue
			}
		case keyDisambiguation:
			if s, ok := v.Str(); ok {
				rec.SetDisambiguation(s)
				continue
			}
		case keyScore:
			if n, ok := v.AsInt(); ok {
				rec.SetScore(n)
				continue
			}
		}
		props[key] = v.Clone()
	}
}

// flatten rewrites the well-known nested structures into their display shape.
// Structures of an unexpected JSON type are left verbatim.
func flatten(props, m entity.Map) {
	if credits, ok := m["artist-credit"].Items(); ok {
		list, display := artistCredits(credits)
		props[KeyArtistCredits] = list
		if !m.Has(KeyCreditedArtist) && display != "" {
			props[KeyCreditedArtist] = entity.String(display)
		}
	}
	if ls, ok := m.Sub("life-span"); ok {
		props[KeyLifeSpan] = lifeSpan(ls)
	}
	for src, dst := range map[string]string{
		"area":       KeyAreaInfo,
		"begin-area": KeyBeginArea,
		"end-area":   KeyEndArea,
	} {
		if a, ok := m.Sub(src); ok && !m.Has(dst) {
			props[dst] = area(a)
		}
	}
	if items, ok := m["tags"].Items(); ok {
		props["tags"] = counted(items)
	}
	if items, ok := m["genres"].Items(); ok {
		props["genres"] = counted(items)
	}
	if items, ok := m["aliases"].Items(); ok {
		props["aliases"] = aliases(items)
	}
	if items, ok := m["relations"].Items(); ok && !m.Has(KeyRelationships) {
		props[KeyRelationships] = relationships(items)
	}
	if items, ok := m["media"].Items(); ok {
		props["media"] = media(items)
	}
	if items, ok := m["release-events"].Items(); ok {
		props["release-events"] = releaseEvents(items)
	}
	if caa, ok := m.Sub("cover-art-archive"); ok {
		props["cover-art-archive"] = coverArtArchive(caa)
	}
	if tr, ok := m.Sub("text-representation"); ok {
		props["text-representation"] = entity.MapOf(entity.Map{
			"language": entity.String(tr.Str("language")),
			"script":   entity.String(tr.Str("script")),
		})
	}
	for key, kind := range subEntityLists {
		if items, ok := m[key].Items(); ok {
			props[key] = subEntities(items, kind)
		}
	}
}

// DetectKind guesses the entity kind from the fields present on obj.
func DetectKind(obj map[string]any) entity.Kind {
	m := make(entity.Map, len(obj))
	for k := range obj {
		m[k] = entity.Null()
	}
	return detect(m)
}

func detect(m entity.Map) entity.Kind {
	has := m.Has
	switch {
	case has("type") && has("sort-name") && (has("gender") || has("life-span")):
		return entity.Artist
	case has("status") && has("barcode") && (has("release-events") || has("media")):
		return entity.Release
	case has("length") && has("artist-credit"):
		return entity.Recording
	case has("primary-type") || has("first-release-date"):
		return entity.ReleaseGroup
	case has("work-type") || has("language"):
		return entity.Work
	case has("label-code") || has("type"):
		return entity.Label
	case has("iso-3166-1-codes") || has("iso-3166-2-codes"):
		return entity.Area
	case has("title") && has("artist-credit"):
		return entity.Recording
	case has("title"):
		return entity.Work
	}
	return entity.Unknown
}
