package pokeapi

import "time"

// Config holds the upstream API configuration.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultConfig returns the default upstream configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:    "https://pokeapi.co/api/v2",
		Timeout:    10 * time.Second,
		UserAgent:  "pokeapi-go",
		MaxRetries: 3,
		RetryDelay: 5 * time.Second,
	}
}

// NamedResource is the upstream {name, url} pair used throughout list and
// reference payloads. The numeric identifier of the resource is only present
// in the URL.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// PokemonPage mirrors the upstream paginated pokemon listing.
type PokemonPage struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  []NamedResource `json:"results"`
}

// AbilitySlot is one entry of a pokemon's abilities array.
type AbilitySlot struct {
	Ability  NamedResource `json:"ability"`
	IsHidden bool          `json:"is_hidden"`
	Slot     int           `json:"slot"`
}

// TypeSlot is one entry of a pokemon's types array.
type TypeSlot struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

// SpriteSet carries the one sprite URL per artwork collection that the proxy
// persists. Any of the pointers may be null upstream.
type SpriteSet struct {
	FrontDefault *string      `json:"front_default"`
	Other        OtherSprites `json:"other"`
}

// OtherSprites is the upstream "other" sprite section.
type OtherSprites struct {
	DreamWorld      SpriteURLs `json:"dream_world"`
	Home            SpriteURLs `json:"home"`
	OfficialArtwork SpriteURLs `json:"official-artwork"`
}

// SpriteURLs holds the front_default URL of one artwork collection.
type SpriteURLs struct {
	FrontDefault *string `json:"front_default"`
}

// Pokemon mirrors the subset of the upstream pokemon payload the proxy
// consumes.
type Pokemon struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	Abilities []AbilitySlot `json:"abilities"`
	Types     []TypeSlot    `json:"types"`
	Sprites   SpriteSet     `json:"sprites"`
}

// Ability mirrors the top level of the upstream ability payload.
type Ability struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Type mirrors the top level of the upstream type payload.
type Type struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
