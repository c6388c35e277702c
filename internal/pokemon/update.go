package pokemon

import (
	"context"

	"github.com/dukkea/pokeapi-go/internal/datastore"
	"github.com/dukkea/pokeapi-go/internal/errors"
)

// Update applies a patch to a stored Pokemon and returns the updated
// composition. Resolution failure is a hard error on this path. Link and
// sprite sets are replaced whole, never merged, and every write commits in
// one transaction at the end.
//
// Collections the patch omits come back empty in the response rather than
// reflecting the stored rows. Callers relying on the response for the full
// record must follow with a detail read.
func (s *Service) Update(ctx context.Context, identifier string, patch *UpdateInput) (*Detail, error) {
	// Sprite types fail validation before any row is written.
	spriteTypes := make([]datastore.SpriteType, len(patch.Sprites))
	for i, in := range patch.Sprites {
		spriteType, err := datastore.ParseSpriteType(in.Type)
		if err != nil {
			s.metrics.RecordOperation("update", "validation_error")
			return nil, err
		}
		spriteTypes[i] = spriteType
	}

	var detail *Detail

	err := s.ds.Transaction(func(tx datastore.Interface) error {
		pokemon, err := resolvePokemon(tx, identifier)
		if err != nil {
			return err
		}
		if pokemon == nil {
			return errors.Newf("pokemon not found: %s", identifier).
				Category(errors.CategoryNotFound).
				Context("identifier", identifier).
				Component("pokemon").
				Build()
		}

		if patch.Name != nil {
			pokemon.Name = *patch.Name
			if err := tx.SavePokemon(pokemon); err != nil {
				return err
			}
		}

		abilities := []AbilityRef{}
		if len(patch.Abilities) > 0 {
			abilities, err = s.replaceAbilities(ctx, tx, pokemon, patch.Abilities)
			if err != nil {
				return err
			}
		}

		types := []TypeRef{}
		if len(patch.Types) > 0 {
			types, err = s.replaceTypes(ctx, tx, pokemon, patch.Types)
			if err != nil {
				return err
			}
		}

		sprites := []SpriteRef{}
		if len(patch.Sprites) > 0 {
			rows := make([]datastore.Sprite, len(patch.Sprites))
			sprites = make([]SpriteRef, len(patch.Sprites))
			for i, in := range patch.Sprites {
				rows[i] = datastore.Sprite{
					PokemonID:  pokemon.ID,
					SpriteType: spriteTypes[i],
					URL:        in.URL,
					Active:     true,
				}
				sprites[i] = SpriteRef{Type: string(spriteTypes[i]), URL: in.URL}
			}
			if err := tx.ReplaceSprites(pokemon.ID, rows); err != nil {
				return err
			}
		}

		detail = &Detail{
			ID:        pokemon.PokemonID,
			Name:      pokemon.Name,
			Abilities: abilities,
			Types:     types,
			Sprites:   sprites,
		}
		return nil
	})
	if err != nil {
		s.metrics.RecordOperation("update", "error")
		return nil, err
	}

	s.metrics.RecordOperation("update", "success")
	s.logger.Info("Pokemon updated",
		"identifier", identifier,
		"pokemon_id", detail.ID,
		"abilities", len(detail.Abilities),
		"types", len(detail.Types),
		"sprites", len(detail.Sprites))
	return detail, nil
}

// replaceAbilities resolves every patch entry, creating local rows from
// upstream for unknown abilities, then swaps the Pokemon's link set.
func (s *Service) replaceAbilities(ctx context.Context, tx datastore.Interface, pokemon *datastore.Pokemon, entries []Identifier) ([]AbilityRef, error) {
	resolved := make([]*datastore.Ability, 0, len(entries))
	for _, entry := range entries {
		ability, err := s.resolveAbility(ctx, tx, entry)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, ability)
	}

	links := make([]datastore.PokemonAbility, len(resolved))
	for i, ability := range resolved {
		links[i] = datastore.PokemonAbility{PokemonID: pokemon.ID, AbilityID: ability.ID}
	}
	if err := tx.ReplaceAbilityLinks(pokemon.ID, links); err != nil {
		return nil, err
	}

	refs := make([]AbilityRef, len(resolved))
	for i, ability := range resolved {
		refs[i] = AbilityRef{ID: ability.InternalID, Name: ability.Name}
	}
	return refs, nil
}

// resolveAbility maps one patch entry onto an Ability row: local lookup by
// upstream id or name first, then a single upstream fetch on miss. An entry
// that resolves neither way fails naming the identifier.
func (s *Service) resolveAbility(ctx context.Context, tx datastore.Interface, entry Identifier) (*datastore.Ability, error) {
	var ability *datastore.Ability
	var err error

	if id, ok := entry.Numeric(); ok {
		ability, err = tx.GetAbilityByInternalID(id)
	} else {
		ability, err = tx.GetAbilityByName(entry.String())
	}
	if err != nil {
		return nil, err
	}
	if ability != nil {
		return ability, nil
	}

	fetched, err := s.fetchAbility(ctx, entry.String())
	if err != nil {
		return nil, errors.Newf("cannot resolve ability %q locally or upstream: %w", entry.String(), err).
			Category(errors.CategoryUpstream).
			Context("identifier", entry.String()).
			Component("pokemon").
			Build()
	}

	ability = &datastore.Ability{Name: fetched.Name, InternalID: fetched.ID, Active: true}
	if err := tx.SaveAbility(ability); err != nil {
		return nil, err
	}
	return ability, nil
}

// replaceTypes mirrors replaceAbilities for the type relation.
func (s *Service) replaceTypes(ctx context.Context, tx datastore.Interface, pokemon *datastore.Pokemon, entries []Identifier) ([]TypeRef, error) {
	resolved := make([]*datastore.Type, 0, len(entries))
	for _, entry := range entries {
		typ, err := s.resolveType(ctx, tx, entry)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, typ)
	}

	links := make([]datastore.PokemonType, len(resolved))
	for i, typ := range resolved {
		links[i] = datastore.PokemonType{PokemonID: pokemon.ID, TypeID: typ.ID}
	}
	if err := tx.ReplaceTypeLinks(pokemon.ID, links); err != nil {
		return nil, err
	}

	refs := make([]TypeRef, len(resolved))
	for i, typ := range resolved {
		refs[i] = TypeRef{ID: typ.InternalID, Name: typ.Name}
	}
	return refs, nil
}

func (s *Service) resolveType(ctx context.Context, tx datastore.Interface, entry Identifier) (*datastore.Type, error) {
	var typ *datastore.Type
	var err error

	if id, ok := entry.Numeric(); ok {
		typ, err = tx.GetTypeByInternalID(id)
	} else {
		typ, err = tx.GetTypeByName(entry.String())
	}
	if err != nil {
		return nil, err
	}
	if typ != nil {
		return typ, nil
	}

	fetched, err := s.fetchType(ctx, entry.String())
	if err != nil {
		return nil, errors.Newf("cannot resolve type %q locally or upstream: %w", entry.String(), err).
			Category(errors.CategoryUpstream).
			Context("identifier", entry.String()).
			Component("pokemon").
			Build()
	}

	typ = &datastore.Type{Name: fetched.Name, InternalID: fetched.ID, Active: true}
	if err := tx.SaveType(typ); err != nil {
		return nil, err
	}
	return typ, nil
}
