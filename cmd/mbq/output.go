package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/mbrowse/internal/enrich"
	"github.com/llehouerou/mbrowse/internal/entity"
	"github.com/llehouerou/mbrowse/internal/history"
	"github.com/llehouerou/mbrowse/internal/normalize"
	"github.com/llehouerou/mbrowse/internal/search"
	"github.com/llehouerou/mbrowse/internal/ui/render"
	"github.com/llehouerou/mbrowse/internal/ui/styles"
)

const valueWidth = 100

// recordFromPayload builds a record from a lookup response, with the same
// derived fields a search result gets once its details are loaded.
func recordFromPayload(kind entity.Kind, payload entity.Map) *entity.Record {
	rec := normalize.FromMap(payload, kind)
	if rec == nil {
		rec = entity.NewRecord("", "", kind)
	}
	enrich.Enrich(rec, payload)
	return rec
}

type pageJSON struct {
	Kind    string           `json:"kind"`
	Count   int              `json:"count"`
	Offset  int              `json:"offset"`
	Records []*entity.Record `json:"records"`
}

func (e *env) writeJSON(v any) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printPage lists search or browse results. svc, when set, adds paging
// information.
func (e *env) printPage(page *normalize.Page, svc *search.Service) error {
	if e.json {
		recs := page.Records
		if recs == nil {
			recs = []*entity.Record{}
		}
		return e.writeJSON(pageJSON{
			Kind:    page.Kind.String(),
			Count:   page.Count,
			Offset:  page.Offset,
			Records: recs,
		})
	}

	s := styles.T().S()
	for _, rec := range page.Records {
		score := ""
		if rec.Score() > 0 {
			score = strconv.Itoa(rec.Score())
		}
		line := fmt.Sprintf("%s  %s  %s",
			styles.ScoreStyle(rec.Score()).Render(fmt.Sprintf("%3s", score)),
			s.Muted.Render(rec.ID()),
			s.Title.Render(render.OneLine(rec.DisplayName())))
		if artist := rec.PropertyString(normalize.KeyCreditedArtist); artist != "" {
			line += s.Subtle.Render(" by " + artist)
		}
		fmt.Fprintln(e.out, line)
	}

	footer := fmt.Sprintf("%s %s", humanize.Comma(int64(page.Count)), page.Kind.Plural())
	if svc != nil && svc.TotalPages() > 0 {
		footer = fmt.Sprintf("page %d/%d · %s", svc.Page()+1, svc.TotalPages(), footer)
	}
	fmt.Fprintln(e.out, s.Subtle.Render(footer))
	return nil
}

func (e *env) printRecords(recs []*entity.Record) error {
	if e.json {
		if recs == nil {
			recs = []*entity.Record{}
		}
		return e.writeJSON(recs)
	}
	if len(recs) == 0 {
		fmt.Fprintln(e.out, "no results")
		return nil
	}

	s := styles.T().S()
	for i, rec := range recs {
		if i > 0 {
			fmt.Fprintln(e.out)
		}
		fmt.Fprintln(e.out, s.Title.Render(render.OneLine(rec.DisplayName())))
		fmt.Fprintln(e.out, s.Muted.Render(rec.Kind().Title()+" · "+rec.URL()))

		keys := rec.PropertyKeys()
		width := 0
		for _, k := range keys {
			width = max(width, len(k))
		}
		for _, k := range keys {
			v, _ := rec.Property(k)
			text := render.OneLine(v.Display())
			if text == "" {
				continue
			}
			fmt.Fprintf(e.out, "  %s  %s\n",
				s.Key.Render(render.Pad(k, width)),
				render.Truncate(text, valueWidth))
		}
	}
	return nil
}

type historyJSON struct {
	Query      string `json:"query"`
	Kind       string `json:"kind"`
	Results    int    `json:"results"`
	SearchedAt string `json:"searched_at"`
}

func (e *env) printHistory(entries []history.Entry) error {
	if e.json {
		out := make([]historyJSON, len(entries))
		for i, h := range entries {
			out[i] = historyJSON{
				Query:      h.Query,
				Kind:       h.Kind.String(),
				Results:    h.Results,
				SearchedAt: h.SearchedAt.Format(time.RFC3339),
			}
		}
		return e.writeJSON(out)
	}

	s := styles.T().S()
	for _, h := range entries {
		fmt.Fprintf(e.out, "%-14s %s %s\n",
			s.Muted.Render(humanize.Time(h.SearchedAt)),
			s.Key.Render(h.Kind.String()),
			h.Query+" "+s.Score.Render(fmt.Sprintf("(%s)", humanize.Comma(int64(h.Results)))))
	}
	return nil
}

func humanBytes(n int) string {
	return humanize.Bytes(uint64(n))
}
