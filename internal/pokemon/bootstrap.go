package pokemon

import (
	"context"

	"github.com/dukkea/pokeapi-go/internal/datastore"
	"github.com/dukkea/pokeapi-go/internal/pokeapi"
)

// InitCatalog seeds the local Pokemon catalog from the upstream listing,
// fetched as a single page sized to the configured total. Rows already
// present are skipped; new rows commit one at a time, so a mid-run failure
// leaves a partially populated catalog rather than rolling everything back.
// Idempotent on pokemon_id. Run once at startup, before traffic is served;
// not safe to invoke concurrently with itself.
func (s *Service) InitCatalog(ctx context.Context) error {
	total := s.settings.Upstream.TotalCount

	page, err := s.fetchPokemonPage(ctx, 0, total)
	if err != nil {
		s.metrics.RecordOperation("bootstrap", "error")
		return err
	}

	ids, err := s.ds.GetPokemonIDs()
	if err != nil {
		s.metrics.RecordOperation("bootstrap", "error")
		return err
	}
	existing := make(map[int]bool, len(ids))
	for _, id := range ids {
		existing[id] = true
	}

	inserted := 0
	for _, entry := range page.Results {
		id, err := pokeapi.IDFromURL(entry.URL)
		if err != nil {
			s.metrics.RecordOperation("bootstrap", "error")
			return err
		}
		if existing[id] {
			continue
		}

		pokemon := &datastore.Pokemon{PokemonID: id, Name: entry.Name, Active: true}
		if err := s.ds.SavePokemon(pokemon); err != nil {
			s.metrics.RecordOperation("bootstrap", "error")
			return err
		}
		existing[id] = true
		inserted++
	}

	s.metrics.RecordBootstrapInserts(inserted)
	s.metrics.RecordOperation("bootstrap", "success")
	s.logger.Info("Catalog bootstrap complete",
		"upstream_entries", len(page.Results),
		"inserted", inserted,
		"already_present", len(page.Results)-inserted)
	return nil
}
