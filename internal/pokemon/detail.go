package pokemon

import (
	"context"

	"github.com/dukkea/pokeapi-go/internal/datastore"
	"github.com/dukkea/pokeapi-go/internal/pokeapi"
)

// spriteCacheThreshold is the row count at which a Pokemon's sprite set is
// considered fully cached, one row per enumerated sprite type.
const spriteCacheThreshold = 4

// hasAbilityLinks reports whether a Pokemon's ability set counts as cached.
// Presence of a single link row is the sole staleness signal; a Pokemon with
// genuinely zero abilities upstream is re-fetched on every request.
func hasAbilityLinks(links []datastore.PokemonAbility) bool {
	return len(links) > 0
}

// hasTypeLinks reports whether a Pokemon's type set counts as cached.
func hasTypeLinks(links []datastore.PokemonType) bool {
	return len(links) > 0
}

// hasAllSprites reports whether a Pokemon's sprite set counts as cached. The
// check is all-or-nothing: a slot missing upstream is never backfilled once
// the other rows exist.
func hasAllSprites(sprites []datastore.Sprite) bool {
	return len(sprites) >= spriteCacheThreshold
}

// Detail resolves an identifier to a composed Pokemon record, reconciling
// missing abilities, types and sprites from upstream on the way. Returns
// (nil, nil) when no local row matches; detail reads never create Pokemon
// rows. All writes commit in one transaction.
func (s *Service) Detail(ctx context.Context, identifier string) (*Detail, error) {
	var detail *Detail

	err := s.ds.Transaction(func(tx datastore.Interface) error {
		pokemon, err := resolvePokemon(tx, identifier)
		if err != nil {
			return err
		}
		if pokemon == nil {
			return nil
		}

		abilities, err := s.reconcileAbilities(ctx, tx, pokemon)
		if err != nil {
			return err
		}

		types, err := s.reconcileTypes(ctx, tx, pokemon)
		if err != nil {
			return err
		}

		sprites, err := s.reconcileSprites(ctx, tx, pokemon)
		if err != nil {
			return err
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
		s.metrics.RecordOperation("detail", "error")
		return nil, err
	}

	if detail == nil {
		s.metrics.RecordOperation("detail", "not_found")
		s.logger.Debug("Detail lookup missed", "identifier", identifier)
		return nil, nil
	}

	s.metrics.RecordOperation("detail", "success")
	return detail, nil
}

// reconcileAbilities returns the ability refs for a Pokemon, populating the
// link rows from upstream when none exist yet. Refs are always derived from
// stored rows, never from the raw upstream payload.
func (s *Service) reconcileAbilities(ctx context.Context, tx datastore.Interface, pokemon *datastore.Pokemon) ([]AbilityRef, error) {
	links, err := tx.GetAbilityLinks(pokemon.ID)
	if err != nil {
		return nil, err
	}

	if !hasAbilityLinks(links) {
		s.metrics.RecordCacheLookup("abilities", "miss")

		payload, err := s.fetchPokemon(ctx, pokemon.PokemonID)
		if err != nil {
			return nil, err
		}

		newLinks := make([]datastore.PokemonAbility, 0, len(payload.Abilities))
		for _, slot := range payload.Abilities {
			internalID, err := pokeapi.IDFromURL(slot.Ability.URL)
			if err != nil {
				return nil, err
			}

			ability, err := tx.GetAbilityByInternalID(internalID)
			if err != nil {
				return nil, err
			}
			if ability == nil {
				ability = &datastore.Ability{Name: slot.Ability.Name, InternalID: internalID, Active: true}
				if err := tx.SaveAbility(ability); err != nil {
					return nil, err
				}
			}

			newLinks = append(newLinks, datastore.PokemonAbility{PokemonID: pokemon.ID, AbilityID: ability.ID})
		}

		if err := tx.SaveAbilityLinks(newLinks); err != nil {
			return nil, err
		}

		links, err = tx.GetAbilityLinks(pokemon.ID)
		if err != nil {
			return nil, err
		}
	} else {
		s.metrics.RecordCacheLookup("abilities", "hit")
	}

	refs := make([]AbilityRef, 0, len(links))
	for _, link := range links {
		refs = append(refs, AbilityRef{ID: link.Ability.InternalID, Name: link.Ability.Name})
	}
	return refs, nil
}

// reconcileTypes mirrors reconcileAbilities for the type relation.
func (s *Service) reconcileTypes(ctx context.Context, tx datastore.Interface, pokemon *datastore.Pokemon) ([]TypeRef, error) {
	links, err := tx.GetTypeLinks(pokemon.ID)
	if err != nil {
		return nil, err
	}

	if !hasTypeLinks(links) {
		s.metrics.RecordCacheLookup("types", "miss")

		payload, err := s.fetchPokemon(ctx, pokemon.PokemonID)
		if err != nil {
			return nil, err
		}

		newLinks := make([]datastore.PokemonType, 0, len(payload.Types))
		for _, slot := range payload.Types {
			internalID, err := pokeapi.IDFromURL(slot.Type.URL)
			if err != nil {
				return nil, err
			}

			typ, err := tx.GetTypeByInternalID(internalID)
			if err != nil {
				return nil, err
			}
			if typ == nil {
				typ = &datastore.Type{Name: slot.Type.Name, InternalID: internalID, Active: true}
				if err := tx.SaveType(typ); err != nil {
					return nil, err
				}
			}

			newLinks = append(newLinks, datastore.PokemonType{PokemonID: pokemon.ID, TypeID: typ.ID})
		}

		if err := tx.SaveTypeLinks(newLinks); err != nil {
			return nil, err
		}

		links, err = tx.GetTypeLinks(pokemon.ID)
		if err != nil {
			return nil, err
		}
	} else {
		s.metrics.RecordCacheLookup("types", "hit")
	}

	refs := make([]TypeRef, 0, len(links))
	for _, link := range links {
		refs = append(refs, TypeRef{ID: link.Type.InternalID, Name: link.Type.Name})
	}
	return refs, nil
}

// reconcileSprites returns sprite refs for a Pokemon. With a full cached set
// the stored rows are returned; otherwise the missing slots are filled from
// upstream and only the rows inserted in this pass are returned, so a
// partially cached set yields a response without the pre-existing rows.
func (s *Service) reconcileSprites(ctx context.Context, tx datastore.Interface, pokemon *datastore.Pokemon) ([]SpriteRef, error) {
	sprites, err := tx.GetSprites(pokemon.ID)
	if err != nil {
		return nil, err
	}

	if hasAllSprites(sprites) {
		s.metrics.RecordCacheLookup("sprites", "hit")

		refs := make([]SpriteRef, 0, len(sprites))
		for _, sprite := range sprites {
			refs = append(refs, SpriteRef{Type: string(sprite.SpriteType), URL: sprite.URL})
		}
		return refs, nil
	}

	s.metrics.RecordCacheLookup("sprites", "miss")

	payload, err := s.fetchPokemon(ctx, pokemon.PokemonID)
	if err != nil {
		return nil, err
	}

	refs := make([]SpriteRef, 0, len(datastore.SpriteTypes))
	for _, spriteType := range datastore.SpriteTypes {
		existing, err := tx.GetSprite(pokemon.ID, spriteType)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}

		sprite := &datastore.Sprite{
			PokemonID:  pokemon.ID,
			SpriteType: spriteType,
			URL:        spriteURL(payload, spriteType),
			Active:     true,
		}
		if err := tx.SaveSprite(sprite); err != nil {
			return nil, err
		}

		refs = append(refs, SpriteRef{Type: string(spriteType), URL: sprite.URL})
	}
	return refs, nil
}

// spriteURL extracts the slot specific image URL from an upstream pokemon
// payload. The default slot lives at the top level, the remaining three
// under the "other" section.
func spriteURL(payload *pokeapi.Pokemon, spriteType datastore.SpriteType) string {
	var url *string
	switch spriteType {
	case datastore.SpriteDefault:
		url = payload.Sprites.FrontDefault
	case datastore.SpriteDreamWorld:
		url = payload.Sprites.Other.DreamWorld.FrontDefault
	case datastore.SpriteHome:
		url = payload.Sprites.Other.Home.FrontDefault
	case datastore.SpriteOfficialArtwork:
		url = payload.Sprites.Other.OfficialArtwork.FrontDefault
	}
	if url == nil {
		return ""
	}
	return *url
}
