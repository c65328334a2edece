package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/llehouerou/mbrowse/internal/detail"
	"github.com/llehouerou/mbrowse/internal/entity"
	"github.com/llehouerou/mbrowse/internal/history"
	"github.com/llehouerou/mbrowse/internal/musicbrainz"
	"github.com/llehouerou/mbrowse/internal/search"
)

type command func(ctx context.Context, e *env, args []string) error

var commands = map[string]command{
	"search":  runSearch,
	"lookup":  runLookup,
	"browse":  runBrowse,
	"discid":  runDiscID,
	"details": runDetails,
	"cover":   runCover,
	"history": runHistory,
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseKind(s string) (entity.Kind, error) {
	k := entity.ParseKind(s)
	if !k.IsKnown() {
		return k, fmt.Errorf("%w: unknown entity type %q", errUsage, s)
	}
	return k, nil
}

func (e *env) defaultLimit() int {
	cfg := e.store.Config()
	return cfg.GetAPIConfig().DefaultLimit
}

func runSearch(ctx context.Context, e *env, args []string) error {
	fs := newFlags("search")
	limit := fs.Int("limit", e.defaultLimit(), "results per page")
	offset := fs.Int("offset", 0, "first result")
	if err := fs.Parse(args); err != nil || fs.NArg() < 2 {
		return errUsage
	}
	kind, err := parseKind(fs.Arg(0))
	if err != nil {
		return err
	}

	svc := search.NewService(e.svc.Client)
	page, err := svc.Search(ctx, search.Params{
		Query:  joinArgs(fs.Args()[1:]),
		Kind:   kind,
		Limit:  *limit,
		Offset: *offset,
	})
	if err != nil {
		return err
	}
	return e.printPage(page, svc)
}

func runLookup(ctx context.Context, e *env, args []string) error {
	fs := newFlags("lookup")
	inc := fs.String("inc", "", "comma separated includes (default: per entity type)")
	if err := fs.Parse(args); err != nil || fs.NArg() != 2 {
		return errUsage
	}
	kind, err := parseKind(fs.Arg(0))
	if err != nil {
		return err
	}

	var includes []string
	if *inc != "" {
		includes = strings.Split(*inc, ",")
	}
	payload, err := e.svc.Client.Lookup(ctx, kind, fs.Arg(1), includes...)
	if err != nil {
		return err
	}
	rec := recordFromPayload(kind, payload)
	return e.printRecords([]*entity.Record{rec})
}

func runBrowse(ctx context.Context, e *env, args []string) error {
	fs := newFlags("browse")
	limit := fs.Int("limit", e.defaultLimit(), "results per page")
	offset := fs.Int("offset", 0, "first result")
	if err := fs.Parse(args); err != nil || fs.NArg() != 3 {
		return errUsage
	}
	kind, err := parseKind(fs.Arg(0))
	if err != nil {
		return err
	}
	linked, err := parseKind(fs.Arg(1))
	if err != nil {
		return err
	}

	page, err := e.svc.Client.Browse(ctx, kind, linked, fs.Arg(2), *limit, *offset)
	if err != nil {
		return err
	}
	return e.printPage(page, nil)
}

func runDiscID(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	page, err := e.svc.Client.LookupDiscID(ctx, args[0])
	if err != nil {
		return err
	}
	return e.printPage(page, nil)
}

// runDetails searches, hands every result to the detail fetcher and prints
// the records once the batch completed.
func runDetails(ctx context.Context, e *env, args []string) error {
	fs := newFlags("details")
	limit := fs.Int("limit", 10, "results to load")
	if err := fs.Parse(args); err != nil || fs.NArg() < 2 {
		return errUsage
	}
	kind, err := parseKind(fs.Arg(0))
	if err != nil {
		return err
	}

	page, err := search.NewService(e.svc.Client).Search(ctx, search.Params{
		Query: joinArgs(fs.Args()[1:]),
		Kind:  kind,
		Limit: *limit,
	})
	if err != nil {
		return err
	}
	if len(page.Records) == 0 {
		return e.printRecords(nil)
	}

	sub := e.svc.Fetcher.Subscribe()
	if err := e.svc.Fetcher.SubmitMany(page.Records); err != nil {
		return err
	}
	failed, err := waitBatch(ctx, e, sub)
	if err != nil {
		return err
	}
	if failed > 0 {
		e.logger.Warn("some details could not be loaded", "failed", failed, "total", len(page.Records))
	}
	return e.printRecords(page.Records)
}

// waitBatch blocks until the submitted batch completed and returns how many
// lookups failed.
func waitBatch(ctx context.Context, e *env, sub *detail.Subscription) (int, error) {
	failed := 0
	for {
		select {
		case <-sub.Loaded:
		case f := <-sub.Failed:
			failed++
			e.logger.Warn("lookup failed", "id", f.ID, "err", f.Err)
		case p := <-sub.Progress:
			e.logger.Debug("progress", "loaded", p.Loaded, "total", p.Total)
		case <-sub.Completed:
			return failed, nil
		case <-sub.Done:
			return failed, detail.ErrClosed
		case <-ctx.Done():
			return failed, ctx.Err()
		}
	}
}

func runCover(ctx context.Context, e *env, args []string) error {
	fs := newFlags("cover")
	size := fs.Int("size", int(musicbrainz.CoverLarge), "thumbnail size: 0 (original), 250, 500 or 1200")
	if err := fs.Parse(args); err != nil || fs.NArg() != 2 {
		return errUsage
	}
	switch musicbrainz.CoverSize(*size) {
	case musicbrainz.CoverOriginal, musicbrainz.CoverSmall, musicbrainz.CoverMedium, musicbrainz.CoverLarge:
	default:
		return fmt.Errorf("%w: invalid size %d", errUsage, *size)
	}

	data, err := e.svc.Client.CoverArt(ctx, fs.Arg(0), musicbrainz.CoverSize(*size))
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("release %s has no cover art", fs.Arg(0))
	}

	path := fs.Arg(1)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "wrote %s (%s)\n", path, humanBytes(len(data)))
	return nil
}

func runHistory(ctx context.Context, e *env, args []string) error {
	fs := newFlags("history")
	n := fs.Int("n", 20, "entries to show")
	clearAll := fs.Bool("clear", false, "forget every search")
	dbPath := fs.String("db", "", "history database (default: XDG data dir)")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return errUsage
	}

	var (
		store *history.Store
		err   error
	)
	if *dbPath != "" {
		store, err = history.Open(*dbPath)
	} else {
		store, err = history.OpenDefault()
	}
	if err != nil {
		return err
	}
	defer store.Close()

	if *clearAll {
		return store.Clear(ctx)
	}
	entries, err := store.Recent(ctx, *n)
	if err != nil {
		return err
	}
	return e.printHistory(entries)
}
