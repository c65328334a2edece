// Package services builds the MusicBrainz client and the detail fetcher from
// the configuration and keeps the fetcher in step with config reloads.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/llehouerou/mbrowse/internal/config"
	"github.com/llehouerou/mbrowse/internal/detail"
	"github.com/llehouerou/mbrowse/internal/musicbrainz"
)

// Services are the long-lived network components.
type Services struct {
	Client  *musicbrainz.Client
	Fetcher *detail.Fetcher

	logger      *slog.Logger
	unsubscribe func()
}

// ClientOptions maps the network and api sections onto client options.
func ClientOptions(cfg config.Config) musicbrainz.Options {
	network := cfg.GetNetworkConfig()
	api := cfg.GetAPIConfig()

	retries := network.MaxRetries
	if retries == 0 {
		retries = -1 // the client reads zero as "default"
	}
	return musicbrainz.Options{
		BaseURL:     api.BaseURL,
		UserAgent:   network.UserAgent,
		MinInterval: ms(api.RateLimitMs),
		Timeout:     ms(network.TimeoutMs),
		MaxRetries:  retries,
		RetryDelay:  ms(network.RetryDelayMs),
	}
}

// FetcherOptions maps the api section onto detail fetcher options.
func FetcherOptions(cfg config.Config) []detail.Option {
	api := cfg.GetAPIConfig()
	return []detail.Option{
		detail.WithDebounce(ms(api.DetailDebounceMs)),
		detail.WithItemDelay(ms(api.DetailItemDelayMs)),
		detail.WithFailureDelay(ms(api.DetailFailureDelayMs)),
		detail.WithRequestTimeout(ms(api.DetailTimeoutMs)),
	}
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// Start creates the client and a running fetcher. Extra options are applied
// after the configured ones.
func Start(ctx context.Context, cfg config.Config, logger *slog.Logger, extra ...detail.Option) *Services {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	client := musicbrainz.NewClient(ClientOptions(cfg), logger)
	opts := append(FetcherOptions(cfg), extra...)
	fetcher := detail.New(client, logger, opts...)
	fetcher.Start(ctx)
	return &Services{
		Client:  client,
		Fetcher: fetcher,
		logger:  logger.With("component", "services"),
	}
}

// Follow applies debounce changes from store to the running fetcher. The
// client keeps its settings until restart.
func (s *Services) Follow(store *config.Store) {
	s.unsubscribe = store.Subscribe(config.SectionAPI, func(cfg config.Config) {
		d := ms(cfg.GetAPIConfig().DetailDebounceMs)
		if err := s.Fetcher.SetDebounceDelay(d); err != nil {
			s.logger.Warn("updating debounce", "err", err)
			return
		}
		s.logger.Info("debounce updated", "delay", d)
	})
}

// Close stops the fetcher.
func (s *Services) Close() error {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	return s.Fetcher.Close()
}
