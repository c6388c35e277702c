package pokemon

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// AbilityRef is one ability entry of a composed detail, carrying the
// upstream identifier and name as stored locally.
type AbilityRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TypeRef is one type entry of a composed detail.
type TypeRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SpriteRef is one sprite entry of a composed detail.
type SpriteRef struct {
	Type string `json:"sprite_type"`
	URL  string `json:"url"`
}

// Detail is the composed record returned by the detail and update
// operations.
type Detail struct {
	ID        int          `json:"id"`
	Name      string       `json:"name"`
	Abilities []AbilityRef `json:"abilities"`
	Types     []TypeRef    `json:"types"`
	Sprites   []SpriteRef  `json:"sprites"`
}

// Summary is one entry of a catalog listing page.
type Summary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Page is a single page of catalog summaries in the upstream listing shape.
type Page struct {
	Count    int       `json:"count"`
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
	Results  []Summary `json:"results"`
}

// SpriteInput is one sprite entry of an update patch, stored verbatim.
type SpriteInput struct {
	Type string `json:"sprite_type"`
	URL  string `json:"url"`
}

// UpdateInput is the patch accepted by the update operation. A nil Name
// leaves the stored name untouched; empty or omitted collections leave the
// stored rows untouched.
type UpdateInput struct {
	Name      *string       `json:"name,omitempty"`
	Abilities []Identifier  `json:"abilities,omitempty"`
	Types     []Identifier  `json:"types,omitempty"`
	Sprites   []SpriteInput `json:"sprites,omitempty"`
}

// Identifier addresses an ability or type in an update patch. It accepts a
// JSON number or a JSON string; a numeric value addresses the upstream
// identifier, anything else addresses the exact name.
type Identifier struct {
	raw string
}

// IdentifierFromInt builds a numeric identifier.
func IdentifierFromInt(id int) Identifier {
	return Identifier{raw: fmt.Sprintf("%d", id)}
}

// IdentifierFromString builds a name identifier. A digits-only string is
// indistinguishable from a numeric identifier.
func IdentifierFromString(s string) Identifier {
	return Identifier{raw: s}
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (id *Identifier) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		id.raw = n.String()
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("identifier must be a number or a string: %w", err)
	}
	id.raw = s
	return nil
}

// MarshalJSON renders the identifier back as a string.
func (id Identifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.raw)
}

// Numeric reports whether the identifier is a non-negative integer and
// returns its value.
func (id Identifier) Numeric() (int, bool) {
	return numericIdentifier(id.raw)
}

func (id Identifier) String() string {
	return id.raw
}

// numericIdentifier parses a digits-only non-negative integer. Anything
// else, a signed value or an out-of-range string included, is treated as
// a name.
func numericIdentifier(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
