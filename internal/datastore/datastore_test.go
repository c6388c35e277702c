package datastore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestStore opens an isolated in-memory SQLite database with the full
// schema migrated.
func newTestStore(t *testing.T) *DataStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open in-memory database")

	require.NoError(t, performAutoMigration(db, false, "SQLite", ":memory:"))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return &DataStore{DB: db}
}

func savePokemon(t *testing.T, ds *DataStore, pokemonID int, name string) *Pokemon {
	t.Helper()
	p := &Pokemon{PokemonID: pokemonID, Name: name, Active: true}
	require.NoError(t, ds.SavePokemon(p))
	require.NotZero(t, p.ID, "Save should populate the local primary key")
	return p
}

func TestGetPokemonByUpstreamID(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	saved := savePokemon(t, ds, 25, "pikachu")

	got, err := ds.GetPokemonByUpstreamID(25)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "pikachu", got.Name)
	assert.True(t, got.Active)

	// Lookup misses are not errors.
	missing, err := ds.GetPokemonByUpstreamID(9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetPokemonByName(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	savePokemon(t, ds, 6, "charizard")

	got, err := ds.GetPokemonByName("charizard")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 6, got.PokemonID)

	// Names match exactly, no normalization.
	missing, err := ds.GetPokemonByName("Charizard")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSavePokemonUpdatesExistingRow(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	p := savePokemon(t, ds, 133, "eevee")

	p.Name = "eevee-renamed"
	require.NoError(t, ds.SavePokemon(p))

	got, err := ds.GetPokemonByUpstreamID(133)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "eevee-renamed", got.Name)
}

func TestGetPokemonIDs(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	ids, err := ds.GetPokemonIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)

	savePokemon(t, ds, 1, "bulbasaur")
	savePokemon(t, ds, 4, "charmander")
	savePokemon(t, ds, 7, "squirtle")

	ids, err = ds.GetPokemonIDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 4, 7}, ids)
}

func TestGetPokemonRange(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	for id, name := range map[int]string{
		9:  "blastoise",
		10: "caterpie",
		19: "rattata",
		20: "raticate",
	} {
		savePokemon(t, ds, id, name)
	}

	// Half-open range: pokemon_id in [10, 20).
	got, err := ds.GetPokemonRange(10, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 10, got[0].PokemonID)
	assert.Equal(t, 19, got[1].PokemonID)

	empty, err := ds.GetPokemonRange(100, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAbilitiesAndTypes(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	ability := &Ability{Name: "static", InternalID: 9, Active: true}
	require.NoError(t, ds.SaveAbility(ability))
	require.NotZero(t, ability.ID)

	got, err := ds.GetAbilityByInternalID(9)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "static", got.Name)

	byName, err := ds.GetAbilityByName("static")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, ability.ID, byName.ID)

	missing, err := ds.GetAbilityByInternalID(404)
	require.NoError(t, err)
	assert.Nil(t, missing)

	typ := &Type{Name: "electric", InternalID: 13, Active: true}
	require.NoError(t, ds.SaveType(typ))
	require.NotZero(t, typ.ID)

	gotType, err := ds.GetTypeByInternalID(13)
	require.NoError(t, err)
	require.NotNil(t, gotType)
	assert.Equal(t, "electric", gotType.Name)

	typeByName, err := ds.GetTypeByName("electric")
	require.NoError(t, err)
	require.NotNil(t, typeByName)
	assert.Equal(t, typ.ID, typeByName.ID)
}

func TestAbilityLinks(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	p := savePokemon(t, ds, 25, "pikachu")

	static := &Ability{Name: "static", InternalID: 9, Active: true}
	lightningRod := &Ability{Name: "lightning-rod", InternalID: 31, Active: true}
	require.NoError(t, ds.SaveAbility(static))
	require.NoError(t, ds.SaveAbility(lightningRod))

	require.NoError(t, ds.SaveAbilityLinks([]PokemonAbility{
		{PokemonID: p.ID, AbilityID: static.ID},
		{PokemonID: p.ID, AbilityID: lightningRod.ID},
	}))

	links, err := ds.GetAbilityLinks(p.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "static", links[0].Ability.Name)
	assert.Equal(t, "lightning-rod", links[1].Ability.Name)

	// Replace swaps the whole link set.
	require.NoError(t, ds.ReplaceAbilityLinks(p.ID, []PokemonAbility{
		{PokemonID: p.ID, AbilityID: lightningRod.ID},
	}))

	links, err = ds.GetAbilityLinks(p.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "lightning-rod", links[0].Ability.Name)

	// Replace with an empty set clears everything.
	require.NoError(t, ds.ReplaceAbilityLinks(p.ID, nil))
	links, err = ds.GetAbilityLinks(p.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestTypeLinks(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	p := savePokemon(t, ds, 6, "charizard")

	fire := &Type{Name: "fire", InternalID: 10, Active: true}
	flying := &Type{Name: "flying", InternalID: 3, Active: true}
	require.NoError(t, ds.SaveType(fire))
	require.NoError(t, ds.SaveType(flying))

	require.NoError(t, ds.SaveTypeLinks([]PokemonType{
		{PokemonID: p.ID, TypeID: fire.ID},
		{PokemonID: p.ID, TypeID: flying.ID},
	}))

	links, err := ds.GetTypeLinks(p.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "fire", links[0].Type.Name)
	assert.Equal(t, "flying", links[1].Type.Name)

	require.NoError(t, ds.ReplaceTypeLinks(p.ID, []PokemonType{
		{PokemonID: p.ID, TypeID: fire.ID},
	}))
	links, err = ds.GetTypeLinks(p.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "fire", links[0].Type.Name)
}

func TestSprites(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	p := savePokemon(t, ds, 25, "pikachu")

	require.NoError(t, ds.SaveSprite(&Sprite{
		PokemonID:  p.ID,
		SpriteType: SpriteDefault,
		URL:        "https://img.example/25.png",
		Active:     true,
	}))
	require.NoError(t, ds.SaveSprite(&Sprite{
		PokemonID:  p.ID,
		SpriteType: SpriteHome,
		URL:        "https://img.example/home/25.png",
		Active:     true,
	}))

	all, err := ds.GetSprites(p.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	home, err := ds.GetSprite(p.ID, SpriteHome)
	require.NoError(t, err)
	require.NotNil(t, home)
	assert.Equal(t, "https://img.example/home/25.png", home.URL)

	missing, err := ds.GetSprite(p.ID, SpriteDreamWorld)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, ds.ReplaceSprites(p.ID, []Sprite{
		{PokemonID: p.ID, SpriteType: SpriteOfficialArtwork, URL: "https://img.example/art/25.png", Active: true},
	}))

	all, err = ds.GetSprites(p.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, SpriteOfficialArtwork, all[0].SpriteType)
}

func TestTransactionCommit(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	err := ds.Transaction(func(tx Interface) error {
		return tx.SavePokemon(&Pokemon{PokemonID: 151, Name: "mew", Active: true})
	})
	require.NoError(t, err)

	got, err := ds.GetPokemonByUpstreamID(151)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestTransactionRollback(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	boom := errors.New("boom")
	err := ds.Transaction(func(tx Interface) error {
		if err := tx.SavePokemon(&Pokemon{PokemonID: 150, Name: "mewtwo", Active: true}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := ds.GetPokemonByUpstreamID(150)
	require.NoError(t, err)
	assert.Nil(t, got, "rolled back row should not be visible")
}

func TestParseSpriteType(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"default", "dream_world", "home", "official-artwork"} {
		st, err := ParseSpriteType(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, st.String())
	}

	_, err := ParseSpriteType("shiny")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default")
}
