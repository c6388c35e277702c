// Package pokemon implements the caching services of the proxy: detail
// reconciliation, updates, catalog listing and startup bootstrap.
package pokemon

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/dukkea/pokeapi-go/internal/conf"
	"github.com/dukkea/pokeapi-go/internal/datastore"
	"github.com/dukkea/pokeapi-go/internal/logging"
	"github.com/dukkea/pokeapi-go/internal/observability/metrics"
	"github.com/dukkea/pokeapi-go/internal/pokeapi"
)

// Upstream is the subset of the PokeAPI client the services consume.
type Upstream interface {
	FetchPokemon(ctx context.Context, identifier string) (*pokeapi.Pokemon, error)
	FetchAbility(ctx context.Context, identifier string) (*pokeapi.Ability, error)
	FetchType(ctx context.Context, identifier string) (*pokeapi.Type, error)
	FetchPokemonPage(ctx context.Context, offset, limit int) (*pokeapi.PokemonPage, error)
}

// Service orchestrates the local store and the upstream API. All
// dependencies are injected at construction; nothing is shared through
// package globals.
type Service struct {
	ds       datastore.Interface
	upstream Upstream
	settings *conf.Settings
	metrics  *metrics.PokemonMetrics
	logger   *slog.Logger
}

// NewService creates a new Service. The metrics collector may be nil.
func NewService(ds datastore.Interface, upstream Upstream, settings *conf.Settings, m *metrics.PokemonMetrics) *Service {
	logger := logging.ForService("pokemon")
	if logger == nil {
		logger = logging.DisabledLogger("pokemon", slog.LevelInfo)
	}
	return &Service{
		ds:       ds,
		upstream: upstream,
		settings: settings,
		metrics:  m,
		logger:   logger,
	}
}

// resolvePokemon maps an identifier onto a stored Pokemon row: digits-only
// identifiers match pokemon_id, anything else matches the exact stored name.
// Returns (nil, nil) when no row matches.
func resolvePokemon(tx datastore.Interface, identifier string) (*datastore.Pokemon, error) {
	if id, ok := numericIdentifier(identifier); ok {
		return tx.GetPokemonByUpstreamID(id)
	}
	return tx.GetPokemonByName(identifier)
}

func (s *Service) fetchPokemon(ctx context.Context, pokemonID int) (*pokeapi.Pokemon, error) {
	start := time.Now()
	payload, err := s.upstream.FetchPokemon(ctx, strconv.Itoa(pokemonID))
	s.metrics.RecordUpstreamFetch("pokemon", statusLabel(err), time.Since(start).Seconds())
	return payload, err
}

func (s *Service) fetchAbility(ctx context.Context, identifier string) (*pokeapi.Ability, error) {
	start := time.Now()
	payload, err := s.upstream.FetchAbility(ctx, identifier)
	s.metrics.RecordUpstreamFetch("ability", statusLabel(err), time.Since(start).Seconds())
	return payload, err
}

func (s *Service) fetchType(ctx context.Context, identifier string) (*pokeapi.Type, error) {
	start := time.Now()
	payload, err := s.upstream.FetchType(ctx, identifier)
	s.metrics.RecordUpstreamFetch("type", statusLabel(err), time.Since(start).Seconds())
	return payload, err
}

func (s *Service) fetchPokemonPage(ctx context.Context, offset, limit int) (*pokeapi.PokemonPage, error) {
	start := time.Now()
	payload, err := s.upstream.FetchPokemonPage(ctx, offset, limit)
	s.metrics.RecordUpstreamFetch("page", statusLabel(err), time.Since(start).Seconds())
	return payload, err
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

