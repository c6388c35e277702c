package pokemon

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukkea/pokeapi-go/internal/datastore"
	"github.com/dukkea/pokeapi-go/internal/errors"
	"github.com/dukkea/pokeapi-go/internal/pokeapi"
)

func TestUpdate_UnknownIdentifierFails(t *testing.T) {
	svc, _, _ := newTestService(t)

	detail, err := svc.Update(context.Background(), "9999", &UpdateInput{Name: strPtr("renamed")})
	require.Error(t, err, "a miss on the write path is a hard failure")
	assert.Nil(t, detail)
	assert.True(t, errors.IsNotFound(err))
	assert.Contains(t, err.Error(), "9999")
}

func TestUpdate_RenameOnly(t *testing.T) {
	svc, _, ds := newTestService(t)

	seedPokemon(t, ds, 25, "pikachu")

	detail, err := svc.Update(context.Background(), "25", &UpdateInput{Name: strPtr("sparky")})
	require.NoError(t, err)

	assert.Equal(t, 25, detail.ID)
	assert.Equal(t, "sparky", detail.Name)

	stored, err := ds.GetPokemonByUpstreamID(25)
	require.NoError(t, err)
	assert.Equal(t, "sparky", stored.Name)

	// The old name no longer resolves.
	gone, err := ds.GetPokemonByName("pikachu")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestUpdate_OmittedFieldsReturnEmptyCollections(t *testing.T) {
	svc, upstream, ds := newTestService(t)

	p := seedPokemon(t, ds, 25, "pikachu")
	upstream.pokemon["25"] = pikachuPayload()

	// Warm the cache so stored collections exist.
	warmed, err := svc.Detail(context.Background(), "25")
	require.NoError(t, err)
	require.NotEmpty(t, warmed.Abilities)

	detail, err := svc.Update(context.Background(), "25", &UpdateInput{Name: strPtr("sparky")})
	require.NoError(t, err)

	// Omitted patch fields come back empty rather than echoing the stored
	// rows. Pinned; do not change without revisiting the response contract.
	assert.Empty(t, detail.Abilities)
	assert.Empty(t, detail.Types)
	assert.Empty(t, detail.Sprites)

	// The stored rows themselves are untouched.
	links, err := ds.GetAbilityLinks(p.ID)
	require.NoError(t, err)
	assert.Len(t, links, 2)
	sprites, err := ds.GetSprites(p.ID)
	require.NoError(t, err)
	assert.Len(t, sprites, 4)
}

func TestUpdate_ReplaceAbilitiesLocalAndUpstream(t *testing.T) {
	svc, upstream, ds := newTestService(t)

	p := seedPokemon(t, ds, 25, "pikachu")

	static := &datastore.Ability{Name: "static", InternalID: 9, Active: true}
	require.NoError(t, ds.SaveAbility(static))
	stale := &datastore.Ability{Name: "stale", InternalID: 99, Active: true}
	require.NoError(t, ds.SaveAbility(stale))
	require.NoError(t, ds.SaveAbilityLinks([]datastore.PokemonAbility{{PokemonID: p.ID, AbilityID: stale.ID}}))

	upstream.abilities["overgrow"] = &pokeapi.Ability{ID: 65, Name: "overgrow"}

	detail, err := svc.Update(context.Background(), "25", &UpdateInput{
		Abilities: []Identifier{IdentifierFromInt(9), IdentifierFromString("overgrow")},
	})
	require.NoError(t, err)

	require.Len(t, detail.Abilities, 2)
	assert.Equal(t, AbilityRef{ID: 9, Name: "static"}, detail.Abilities[0])
	assert.Equal(t, AbilityRef{ID: 65, Name: "overgrow"}, detail.Abilities[1])

	// Only the unknown entry went upstream.
	assert.Equal(t, 1, upstream.abilityCalls)

	// Full replacement: the stale link is gone.
	links, err := ds.GetAbilityLinks(p.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "static", links[0].Ability.Name)
	assert.Equal(t, "overgrow", links[1].Ability.Name)

	created, err := ds.GetAbilityByInternalID(65)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "overgrow", created.Name)
}

func TestUpdate_ReplaceTypes(t *testing.T) {
	svc, upstream, ds := newTestService(t)

	p := seedPokemon(t, ds, 25, "pikachu")
	upstream.types["fairy"] = &pokeapi.Type{ID: 18, Name: "fairy"}

	detail, err := svc.Update(context.Background(), "pikachu", &UpdateInput{
		Types: []Identifier{IdentifierFromString("fairy")},
	})
	require.NoError(t, err)

	require.Len(t, detail.Types, 1)
	assert.Equal(t, TypeRef{ID: 18, Name: "fairy"}, detail.Types[0])

	links, err := ds.GetTypeLinks(p.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "fairy", links[0].Type.Name)
}

func TestUpdate_UnresolvableAbilityFailsNamingIdentifier(t *testing.T) {
	svc, _, ds := newTestService(t)

	seedPokemon(t, ds, 25, "pikachu")

	detail, err := svc.Update(context.Background(), "25", &UpdateInput{
		Name:      strPtr("sparky"),
		Abilities: []Identifier{IdentifierFromString("bogus-ability")},
	})
	require.Error(t, err)
	assert.Nil(t, detail)
	assert.True(t, errors.IsUpstream(err))
	assert.Contains(t, err.Error(), "bogus-ability")

	// The whole transaction rolled back: the rename did not stick.
	stored, err := ds.GetPokemonByUpstreamID(25)
	require.NoError(t, err)
	assert.Equal(t, "pikachu", stored.Name)
}

func TestUpdate_ReplaceSpritesLeavesExactlyProvidedRows(t *testing.T) {
	svc, _, ds := newTestService(t)

	p := seedPokemon(t, ds, 25, "pikachu")
	for _, spriteType := range datastore.SpriteTypes {
		require.NoError(t, ds.SaveSprite(&datastore.Sprite{
			PokemonID: p.ID, SpriteType: spriteType, URL: "old-" + string(spriteType), Active: true,
		}))
	}

	detail, err := svc.Update(context.Background(), "25", &UpdateInput{
		Sprites: []SpriteInput{{Type: "default", URL: "https://img.test/new.png"}},
	})
	require.NoError(t, err)

	require.Len(t, detail.Sprites, 1)
	assert.Equal(t, SpriteRef{Type: "default", URL: "https://img.test/new.png"}, detail.Sprites[0])

	stored, err := ds.GetSprites(p.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, datastore.SpriteDefault, stored[0].SpriteType)
	assert.Equal(t, "https://img.test/new.png", stored[0].URL)
}

func TestUpdate_InvalidSpriteTypeFailsBeforeAnyWrite(t *testing.T) {
	svc, _, ds := newTestService(t)

	p := seedPokemon(t, ds, 25, "pikachu")
	require.NoError(t, ds.SaveSprite(&datastore.Sprite{
		PokemonID: p.ID, SpriteType: datastore.SpriteDefault, URL: "keep-me", Active: true,
	}))

	detail, err := svc.Update(context.Background(), "25", &UpdateInput{
		Name: strPtr("sparky"),
		Sprites: []SpriteInput{
			{Type: "default", URL: "https://img.test/a.png"},
			{Type: "shiny", URL: "https://img.test/b.png"},
		},
	})
	require.Error(t, err)
	assert.Nil(t, detail)
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, err.Error(), "official-artwork", "the error lists the valid sprite types")

	stored, err := ds.GetSprites(p.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "keep-me", stored[0].URL)

	pokemon, err := ds.GetPokemonByUpstreamID(25)
	require.NoError(t, err)
	assert.Equal(t, "pikachu", pokemon.Name)
}

func TestIdentifierUnmarshal(t *testing.T) {
	var input UpdateInput
	payload := `{"abilities": [9, "overgrow", "31"]}`
	require.NoError(t, json.Unmarshal([]byte(payload), &input))

	require.Len(t, input.Abilities, 3)

	id, ok := input.Abilities[0].Numeric()
	assert.True(t, ok)
	assert.Equal(t, 9, id)

	_, ok = input.Abilities[1].Numeric()
	assert.False(t, ok)
	assert.Equal(t, "overgrow", input.Abilities[1].String())

	// Digits-only strings address the upstream id, same as numbers.
	id, ok = input.Abilities[2].Numeric()
	assert.True(t, ok)
	assert.Equal(t, 31, id)
}

func TestNumericIdentifier(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		numeric bool
	}{
		{"25", 25, true},
		{"0", 0, true},
		{"", 0, false},
		{"-5", 0, false},
		{"pikachu", 0, false},
		{"2a", 0, false},
		// A digit string past the int range must not alias onto a valid
		// stored id.
		{"99999999999999999999999999999999", 0, false},
	}

	for _, tc := range tests {
		got, ok := numericIdentifier(tc.raw)
		assert.Equal(t, tc.numeric, ok, "raw %q", tc.raw)
		assert.Equal(t, tc.want, got, "raw %q", tc.raw)
	}
}
