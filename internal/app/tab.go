package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/mbrowse/internal/enrich"
	"github.com/llehouerou/mbrowse/internal/entity"
	"github.com/llehouerou/mbrowse/internal/normalize"
	"github.com/llehouerou/mbrowse/internal/search"
	"github.com/llehouerou/mbrowse/internal/ui/render"
	"github.com/llehouerou/mbrowse/internal/ui/styles"
)

// Tab holds the results of one search.
type Tab struct {
	ID      int
	Params  search.Params
	Service *search.Service
	Records []*entity.Record
	Table   table.Model
	Pending bool
	Err     error
}

func newTab(id int, p search.Params, svc *search.Service) *Tab {
	t := table.New(
		table.WithColumns(tableColumns(columnsFor(p.Kind), 80)),
		table.WithFocused(false),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.Foreground(styles.T().Primary).Bold(true)
	s.Selected = styles.T().S().Cursor.Bold(true)
	t.SetStyles(s)
	return &Tab{ID: id, Params: p, Service: svc, Table: t, Pending: true}
}

// Title is the tab label.
func (t *Tab) Title() string {
	return t.Params.Kind.Title() + ": " + render.Truncate(t.query(), 18)
}

func (t *Tab) query() string {
	if t.Params.Query != "" {
		return t.Params.Query
	}
	return search.BuildQuery(t.Params)
}

// Selected returns the record under the table cursor.
func (t *Tab) Selected() *entity.Record {
	i := t.Table.Cursor()
	if i < 0 || i >= len(t.Records) {
		return nil
	}
	return t.Records[i]
}

func (t *Tab) setPage(page *normalize.Page) {
	t.Records = page.Records
	t.Pending = false
	t.Err = nil
	t.refreshRows(nil)
	t.Table.SetCursor(0)
}

// refreshRows rebuilds the table rows from the records, marking rows whose
// details are still loading.
func (t *Tab) refreshRows(loading map[string]bool) {
	cols := columnsFor(t.Params.Kind)
	rows := make([]table.Row, len(t.Records))
	for i, rec := range t.Records {
		row := make(table.Row, len(cols))
		for j, c := range cols {
			row[j] = render.OneLine(c.value(rec))
		}
		if loading[rec.ID()] {
			row[1] = "… " + row[1]
		}
		rows[i] = row
	}
	t.Table.SetRows(rows)
}

func (t *Tab) contains(id string) bool {
	for _, rec := range t.Records {
		if rec.ID() == id {
			return true
		}
	}
	return false
}

func (t *Tab) resize(width, height int) {
	t.Table.SetColumns(tableColumns(columnsFor(t.Params.Kind), width))
	t.Table.SetWidth(width)
	t.Table.SetHeight(max(height, 3))
}

// pageInfo describes the current page for the status bar.
func (t *Tab) pageInfo() string {
	if t.Service == nil || t.Service.TotalPages() == 0 {
		return ""
	}
	return fmt.Sprintf("page %d/%d · %s results",
		t.Service.Page()+1, t.Service.TotalPages(), humanize.Comma(int64(t.Service.TotalResults())))
}

type column struct {
	title  string
	weight int
	value  func(*entity.Record) string
}

func prop(keys ...string) func(*entity.Record) string {
	return func(rec *entity.Record) string {
		for _, k := range keys {
			if v := rec.PropertyString(k); v != "" {
				return v
			}
		}
		return ""
	}
}

func score(rec *entity.Record) string {
	if rec.Score() == 0 {
		return ""
	}
	return strconv.Itoa(rec.Score())
}

func lifeSpan(rec *entity.Record) string {
	begin := prop(enrich.BirthDate)(rec)
	end := prop(enrich.DeathDate)(rec)
	if begin == "" && end == "" {
		if v, ok := rec.Property(normalize.KeyLifeSpan); ok {
			if m, ok := v.Fields(); ok {
				begin, end = m.Str("begin"), m.Str("end")
			}
		}
	}
	if begin == "" && end == "" {
		return ""
	}
	return strings.TrimSpace(begin + " – " + end)
}

func duration(rec *entity.Record) string {
	v, ok := rec.Property(enrich.Duration)
	if !ok {
		v, ok = rec.Property("length")
	}
	if !ok {
		return ""
	}
	ms, ok := v.AsInt()
	if !ok || ms <= 0 {
		return ""
	}
	sec := ms / 1000
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}

func columnsFor(kind entity.Kind) []column {
	base := []column{
		{"Score", 0, score},
		{"Name", 4, func(r *entity.Record) string { return r.Name() }},
	}
	var extra []column
	switch kind {
	case entity.Artist:
		extra = []column{
			{"Type", 1, prop(enrich.ArtistType, "type")},
			{"Country", 1, prop(enrich.Country, "country")},
			{"Life span", 2, lifeSpan},
		}
	case entity.Release:
		extra = []column{
			{"Artist", 3, prop(normalize.KeyCreditedArtist)},
			{"Date", 1, prop(enrich.ReleaseDate, "date")},
			{"Country", 1, prop(enrich.Country, "country")},
			{"Tracks", 1, prop(enrich.TrackCount, "track-count")},
		}
	case entity.ReleaseGroup:
		extra = []column{
			{"Artist", 3, prop(normalize.KeyCreditedArtist)},
			{"Type", 1, prop(enrich.PrimaryType, "primary-type")},
			{"First release", 2, prop(enrich.FirstReleaseDate, "first-release-date")},
		}
	case entity.Recording:
		extra = []column{
			{"Artist", 3, prop(normalize.KeyCreditedArtist)},
			{"Length", 1, duration},
		}
	case entity.Label:
		extra = []column{
			{"Type", 2, prop(enrich.LabelType, "type")},
			{"Country", 1, prop(enrich.Country, "country")},
		}
	case entity.Work:
		extra = []column{
			{"Type", 2, prop(enrich.WorkType, "type")},
			{"Language", 1, prop("language")},
		}
	}
	cols := append(base, extra...)
	return append(cols, column{"Disambiguation", 3, func(r *entity.Record) string { return r.Disambiguation() }})
}

const scoreWidth = 5

// tableColumns shares width between the weighted columns. Each column
// needs one cell of padding on both sides.
func tableColumns(cols []column, width int) []table.Column {
	total := 0
	for _, c := range cols {
		total += c.weight
	}
	avail := max(width-scoreWidth-2*len(cols), total)

	out := make([]table.Column, len(cols))
	for i, c := range cols {
		w := scoreWidth
		if c.weight > 0 {
			w = max(avail*c.weight/total, 4)
		}
		out[i] = table.Column{Title: c.title, Width: w}
	}
	return out
}
