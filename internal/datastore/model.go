// model.go this code defines the data model for the caching proxy
package datastore

import (
	"time"

	"github.com/dukkea/pokeapi-go/internal/errors"
)

// Pokemon represents a single catalog entry. PokemonID is the stable
// identifier assigned by upstream and is the join key used to avoid duplicate
// fetches; ID is the surrogate local key.
type Pokemon struct {
	ID        uint `gorm:"primaryKey"`
	PokemonID int  `gorm:"uniqueIndex;not null"`
	Name      string
	Active    bool `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Abilities []PokemonAbility `gorm:"foreignKey:PokemonID;references:ID;constraint:OnDelete:CASCADE"`
	Types     []PokemonType    `gorm:"foreignKey:PokemonID;references:ID;constraint:OnDelete:CASCADE"`
	Sprites   []Sprite         `gorm:"foreignKey:PokemonID;references:ID;constraint:OnDelete:CASCADE"`
}

// Ability is shared across Pokemon via PokemonAbility link rows. InternalID
// is the upstream-assigned identifier.
type Ability struct {
	ID         uint `gorm:"primaryKey"`
	Name       string
	InternalID int  `gorm:"uniqueIndex;not null"`
	Active     bool `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Type is shared across Pokemon via PokemonType link rows.
type Type struct {
	ID         uint `gorm:"primaryKey"`
	Name       string
	InternalID int  `gorm:"uniqueIndex;not null"`
	Active     bool `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PokemonAbility is a many-to-many link row with no payload beyond the relation.
type PokemonAbility struct {
	ID        uint    `gorm:"primaryKey"`
	PokemonID uint    `gorm:"index;not null"`
	AbilityID uint    `gorm:"index;not null"`
	Ability   Ability `gorm:"foreignKey:AbilityID;references:ID"`
}

// PokemonType is a many-to-many link row with no payload beyond the relation.
type PokemonType struct {
	ID        uint `gorm:"primaryKey"`
	PokemonID uint `gorm:"index;not null"`
	TypeID    uint `gorm:"index;not null"`
	Type      Type `gorm:"foreignKey:TypeID;references:ID"`
}

// SpriteType enumerates the sprite slots maintained per Pokemon.
type SpriteType string

const (
	SpriteDefault         SpriteType = "default"
	SpriteDreamWorld      SpriteType = "dream_world"
	SpriteHome            SpriteType = "home"
	SpriteOfficialArtwork SpriteType = "official-artwork"
)

// SpriteTypes lists every valid sprite slot. The sprite cache for a Pokemon
// is considered complete once one row per slot exists.
var SpriteTypes = []SpriteType{
	SpriteDefault,
	SpriteDreamWorld,
	SpriteHome,
	SpriteOfficialArtwork,
}

// ParseSpriteType validates a sprite type received at the boundary.
func ParseSpriteType(s string) (SpriteType, error) {
	for _, st := range SpriteTypes {
		if string(st) == s {
			return st, nil
		}
	}
	return "", errors.Newf("invalid sprite type %q, valid types are: %s", s, spriteTypeList()).
		Component("datastore").
		Category(errors.CategoryValidation).
		Context("sprite_type", s).
		Build()
}

func spriteTypeList() string {
	out := ""
	for i, st := range SpriteTypes {
		if i > 0 {
			out += ", "
		}
		out += string(st)
	}
	return out
}

// Sprite holds one image URL per (pokemon, sprite_type). Uniqueness of the
// pair is maintained by the reconciliation logic, not by a constraint.
type Sprite struct {
	ID         uint       `gorm:"primaryKey"`
	PokemonID  uint       `gorm:"index;not null"`
	SpriteType SpriteType `gorm:"type:varchar(32)"`
	URL        string
	Active     bool `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (st SpriteType) String() string {
	return string(st)
}
