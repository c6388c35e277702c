package pokeapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukkea/pokeapi-go/internal/errors"
)

const testBaseURL = "https://pokeapi.test/api/v2"

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, err := NewClient(Config{
		BaseURL:    testBaseURL,
		Timeout:    2 * time.Second,
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	})
	require.NoError(t, err)

	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	return client
}

const pikachuPayload = `{
	"id": 25,
	"name": "pikachu",
	"abilities": [
		{"ability": {"name": "static", "url": "https://pokeapi.test/api/v2/ability/9/"}, "is_hidden": false, "slot": 1},
		{"ability": {"name": "lightning-rod", "url": "https://pokeapi.test/api/v2/ability/31/"}, "is_hidden": true, "slot": 3}
	],
	"types": [
		{"slot": 1, "type": {"name": "electric", "url": "https://pokeapi.test/api/v2/type/13/"}}
	],
	"sprites": {
		"front_default": "https://img.test/25.png",
		"other": {
			"dream_world": {"front_default": "https://img.test/dw/25.svg"},
			"home": {"front_default": null},
			"official-artwork": {"front_default": "https://img.test/art/25.png"}
		}
	}
}`

func TestFetchPokemon_Success(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder("GET", testBaseURL+"/pokemon/pikachu",
		httpmock.NewStringResponder(http.StatusOK, pikachuPayload))

	pokemon, err := client.FetchPokemon(context.Background(), "pikachu")
	require.NoError(t, err)

	assert.Equal(t, 25, pokemon.ID)
	assert.Equal(t, "pikachu", pokemon.Name)

	require.Len(t, pokemon.Abilities, 2)
	assert.Equal(t, "static", pokemon.Abilities[0].Ability.Name)
	assert.True(t, pokemon.Abilities[1].IsHidden)

	require.Len(t, pokemon.Types, 1)
	assert.Equal(t, "electric", pokemon.Types[0].Type.Name)

	require.NotNil(t, pokemon.Sprites.FrontDefault)
	assert.Equal(t, "https://img.test/25.png", *pokemon.Sprites.FrontDefault)
	require.NotNil(t, pokemon.Sprites.Other.DreamWorld.FrontDefault)
	assert.Nil(t, pokemon.Sprites.Other.Home.FrontDefault)
	require.NotNil(t, pokemon.Sprites.Other.OfficialArtwork.FrontDefault)
	assert.Equal(t, "https://img.test/art/25.png", *pokemon.Sprites.Other.OfficialArtwork.FrontDefault)
}

func TestFetchPokemon_NotFoundRetriesThenFails(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder("GET", testBaseURL+"/pokemon/missigno",
		httpmock.NewStringResponder(http.StatusNotFound, "Not Found"))

	pokemon, err := client.FetchPokemon(context.Background(), "missigno")
	require.Error(t, err)
	assert.Nil(t, pokemon)
	assert.True(t, errors.IsNotFound(err))

	// Missing resources are retried at the configured interval before the
	// final error surfaces.
	assert.Equal(t, 3, httpmock.GetTotalCallCount())
}

func TestFetchPokemon_TransientFailureRecovers(t *testing.T) {
	client := newTestClient(t)

	calls := 0
	httpmock.RegisterResponder("GET", testBaseURL+"/pokemon/25",
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls < 3 {
				return httpmock.NewStringResponse(http.StatusInternalServerError, "boom"), nil
			}
			return httpmock.NewStringResponse(http.StatusOK, pikachuPayload), nil
		})

	pokemon, err := client.FetchPokemon(context.Background(), "25")
	require.NoError(t, err)
	assert.Equal(t, "pikachu", pokemon.Name)
	assert.Equal(t, 3, calls)
}

func TestFetchPokemon_MalformedBodyRetries(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder("GET", testBaseURL+"/pokemon/25",
		httpmock.NewStringResponder(http.StatusOK, `{"id": 25, "name":`))

	pokemon, err := client.FetchPokemon(context.Background(), "25")
	require.Error(t, err)
	assert.Nil(t, pokemon)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileParsing))
	assert.Equal(t, 3, httpmock.GetTotalCallCount())
}

func TestFetchPokemon_ContextCancelStopsRetry(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder("GET", testBaseURL+"/pokemon/25",
		httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchPokemon(ctx, "25")
	require.Error(t, err)
	assert.LessOrEqual(t, httpmock.GetTotalCallCount(), 1, "no retries after cancellation")
}

func TestFetchAbility(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder("GET", testBaseURL+"/ability/static",
		httpmock.NewStringResponder(http.StatusOK, `{"id": 9, "name": "static"}`))

	ability, err := client.FetchAbility(context.Background(), "static")
	require.NoError(t, err)
	assert.Equal(t, 9, ability.ID)
	assert.Equal(t, "static", ability.Name)
}

func TestFetchType(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder("GET", testBaseURL+"/type/13",
		httpmock.NewStringResponder(http.StatusOK, `{"id": 13, "name": "electric"}`))

	typ, err := client.FetchType(context.Background(), "13")
	require.NoError(t, err)
	assert.Equal(t, 13, typ.ID)
	assert.Equal(t, "electric", typ.Name)
}

func TestFetchPokemonPage(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder("GET", testBaseURL+"/pokemon",
		httpmock.NewStringResponder(http.StatusOK, `{
			"count": 1017,
			"next": "https://pokeapi.test/api/v2/pokemon?offset=20&limit=20",
			"previous": null,
			"results": [
				{"name": "bulbasaur", "url": "https://pokeapi.test/api/v2/pokemon/1/"},
				{"name": "ivysaur", "url": "https://pokeapi.test/api/v2/pokemon/2/"}
			]
		}`))

	page, err := client.FetchPokemonPage(context.Background(), 0, 20)
	require.NoError(t, err)

	assert.Equal(t, 1017, page.Count)
	require.NotNil(t, page.Next)
	assert.Nil(t, page.Previous)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "bulbasaur", page.Results[0].Name)

	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 1, info["GET "+testBaseURL+"/pokemon"])
}

func TestIDFromURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    int
		wantErr bool
	}{
		{"trailing slash", "https://pokeapi.co/api/v2/pokemon/25/", 25, false},
		{"no trailing slash", "https://pokeapi.co/api/v2/ability/9", 9, false},
		{"large id", "https://pokeapi.co/api/v2/pokemon/10157/", 10157, false},
		{"non numeric", "https://pokeapi.co/api/v2/pokemon/pikachu/", 0, true},
		{"empty", "", 0, true},
		{"bare slash", "/", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IDFromURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
