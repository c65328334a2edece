// Command mbq queries MusicBrainz from the shell using the same client,
// parser and detail fetcher as the terminal browser.
//
//	mbq [-config file] [-json] [-v] <command> [args]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/llehouerou/mbrowse/internal/config"
	"github.com/llehouerou/mbrowse/internal/logging"
	"github.com/llehouerou/mbrowse/internal/services"
)

const usage = `usage: mbq [flags] <command> [args]

commands:
  search <kind> <query...>          search entities (-limit, -offset)
  lookup <kind> <mbid>              full details of one entity (-inc)
  browse <kind> <linked-kind> <mbid>
                                    entities linked to another one
  discid <disc-id>                  releases matching a CD TOC
  details <kind> <query...>         search, then load details of every result
  cover <release-mbid> <file>       save the front cover (-size)
  history                           recent searches of the browser (-clear)

flags:
`

var errUsage = errors.New("invalid usage")

// env is what every command gets.
type env struct {
	store  *config.Store
	svc    *services.Services
	out    io.Writer
	json   bool
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if errors.Is(err, errUsage) {
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "mbq: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("mbq", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file (default: XDG config, then ./config.toml)")
	asJSON := fs.Bool("json", false, "print JSON")
	verbose := fs.Bool("v", false, "log requests to stderr")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	var store *config.Store
	if *configPath != "" {
		store = config.Open(nil, *configPath)
	} else {
		store = config.Open(nil)
	}
	if err := store.Load(); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := store.Config()

	logCfg := logging.FromConfig(cfg.GetLogConfig())
	logCfg.FileEnabled = false
	if *verbose {
		logCfg.Level = "debug"
	} else {
		logCfg.Level = "warn"
	}
	logs, logger := logging.NewManager(logCfg, stderr)
	defer logs.Close()

	svc := services.Start(ctx, cfg, logger)
	defer svc.Close()

	e := &env{store: store, svc: svc, out: stdout, json: *asJSON, logger: logger}

	name, rest := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", name)
		fs.Usage()
		return errUsage
	}
	err := cmd(ctx, e, rest)
	if errors.Is(err, errUsage) {
		fmt.Fprintf(stderr, "usage: mbq %s\n", commandUsage[name])
	}
	return err
}

var commandUsage = map[string]string{
	"search":  "search [-limit n] [-offset n] <kind> <query...>",
	"lookup":  "lookup [-inc a,b] <kind> <mbid>",
	"browse":  "browse [-limit n] [-offset n] <kind> <linked-kind> <mbid>",
	"discid":  "discid <disc-id>",
	"details": "details [-limit n] <kind> <query...>",
	"cover":   "cover [-size 0|250|500|1200] <release-mbid> <file>",
	"history": "history [-n count] [-clear]",
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
