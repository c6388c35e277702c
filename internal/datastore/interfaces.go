// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dukkea/pokeapi-go/internal/conf"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Interface abstracts the underlying database implementation and defines the
// repository operations of the caching proxy. Find-by-upstream-id lookups
// return (nil, nil) when no row matches so callers can distinguish a cache
// miss from a store failure.
type Interface interface {
	Open() error
	Close() error

	// Pokemon catalog
	GetPokemonByUpstreamID(pokemonID int) (*Pokemon, error)
	GetPokemonByName(name string) (*Pokemon, error)
	GetPokemonIDs() ([]int, error)
	GetPokemonRange(offset, limit int) ([]Pokemon, error)
	SavePokemon(pokemon *Pokemon) error

	// Shared ability / type entities
	GetAbilityByInternalID(internalID int) (*Ability, error)
	GetAbilityByName(name string) (*Ability, error)
	SaveAbility(ability *Ability) error
	GetTypeByInternalID(internalID int) (*Type, error)
	GetTypeByName(name string) (*Type, error)
	SaveType(typ *Type) error

	// Link rows
	GetAbilityLinks(pokemonID uint) ([]PokemonAbility, error)
	SaveAbilityLinks(links []PokemonAbility) error
	ReplaceAbilityLinks(pokemonID uint, links []PokemonAbility) error
	GetTypeLinks(pokemonID uint) ([]PokemonType, error)
	SaveTypeLinks(links []PokemonType) error
	ReplaceTypeLinks(pokemonID uint, links []PokemonType) error

	// Sprites
	GetSprites(pokemonID uint) ([]Sprite, error)
	GetSprite(pokemonID uint, spriteType SpriteType) (*Sprite, error)
	SaveSprite(sprite *Sprite) error
	ReplaceSprites(pokemonID uint, sprites []Sprite) error

	// Transaction runs fn inside a single transactional session: commit on
	// nil, rollback on error.
	Transaction(fn func(Interface) error) error
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new store instance based on the provided settings.
func New(settings *conf.Settings) Interface {
	switch settings.Database.Type {
	case "mysql":
		return &MySQLStore{Settings: settings}
	default:
		return &SQLiteStore{Settings: settings}
	}
}

// GetPokemonByUpstreamID retrieves a Pokemon by its upstream identifier.
func (ds *DataStore) GetPokemonByUpstreamID(pokemonID int) (*Pokemon, error) {
	var pokemon Pokemon
	err := ds.DB.Where("pokemon_id = ?", pokemonID).First(&pokemon).Error
	return firstResult(&pokemon, err, fmt.Sprintf("getting pokemon with upstream id %d", pokemonID))
}

// GetPokemonByName retrieves a Pokemon by exact name as stored.
func (ds *DataStore) GetPokemonByName(name string) (*Pokemon, error) {
	var pokemon Pokemon
	err := ds.DB.Where("name = ?", name).First(&pokemon).Error
	return firstResult(&pokemon, err, fmt.Sprintf("getting pokemon with name %q", name))
}

// GetPokemonIDs retrieves every upstream pokemon_id present locally.
func (ds *DataStore) GetPokemonIDs() ([]int, error) {
	var ids []int
	if err := ds.DB.Model(&Pokemon{}).Pluck("pokemon_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("getting pokemon ids: %w", err)
	}
	return ids, nil
}

// GetPokemonRange retrieves rows whose pokemon_id falls in the half-open
// range [offset, offset+limit).
func (ds *DataStore) GetPokemonRange(offset, limit int) ([]Pokemon, error) {
	var pokemons []Pokemon
	err := ds.DB.Where("pokemon_id >= ? AND pokemon_id < ?", offset, offset+limit).
		Order("pokemon_id ASC").
		Find(&pokemons).Error
	if err != nil {
		return nil, fmt.Errorf("getting pokemon range [%d, %d): %w", offset, offset+limit, err)
	}
	return pokemons, nil
}

// SavePokemon inserts a new Pokemon row or updates an existing one in place.
func (ds *DataStore) SavePokemon(pokemon *Pokemon) error {
	if err := ds.DB.Save(pokemon).Error; err != nil {
		return fmt.Errorf("saving pokemon %q: %w", pokemon.Name, err)
	}
	return nil
}

// GetAbilityByInternalID retrieves an ability by its upstream identifier.
func (ds *DataStore) GetAbilityByInternalID(internalID int) (*Ability, error) {
	var ability Ability
	err := ds.DB.Where("internal_id = ?", internalID).First(&ability).Error
	return firstResult(&ability, err, fmt.Sprintf("getting ability with internal id %d", internalID))
}

// GetAbilityByName retrieves an ability by exact name.
func (ds *DataStore) GetAbilityByName(name string) (*Ability, error) {
	var ability Ability
	err := ds.DB.Where("name = ?", name).First(&ability).Error
	return firstResult(&ability, err, fmt.Sprintf("getting ability with name %q", name))
}

// SaveAbility inserts a new ability, populating its local ID so callers can
// immediately build link rows against it.
func (ds *DataStore) SaveAbility(ability *Ability) error {
	if err := ds.DB.Create(ability).Error; err != nil {
		return fmt.Errorf("saving ability %q: %w", ability.Name, err)
	}
	return nil
}

// GetTypeByInternalID retrieves a type by its upstream identifier.
func (ds *DataStore) GetTypeByInternalID(internalID int) (*Type, error) {
	var typ Type
	err := ds.DB.Where("internal_id = ?", internalID).First(&typ).Error
	return firstResult(&typ, err, fmt.Sprintf("getting type with internal id %d", internalID))
}

// GetTypeByName retrieves a type by exact name.
func (ds *DataStore) GetTypeByName(name string) (*Type, error) {
	var typ Type
	err := ds.DB.Where("name = ?", name).First(&typ).Error
	return firstResult(&typ, err, fmt.Sprintf("getting type with name %q", name))
}

// SaveType inserts a new type, populating its local ID.
func (ds *DataStore) SaveType(typ *Type) error {
	if err := ds.DB.Create(typ).Error; err != nil {
		return fmt.Errorf("saving type %q: %w", typ.Name, err)
	}
	return nil
}

// GetAbilityLinks retrieves the ability link rows for a Pokemon joined with
// their abilities.
func (ds *DataStore) GetAbilityLinks(pokemonID uint) ([]PokemonAbility, error) {
	var links []PokemonAbility
	err := ds.DB.Preload("Ability").
		Where("pokemon_id = ?", pokemonID).
		Order("id ASC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("getting ability links for pokemon %d: %w", pokemonID, err)
	}
	return links, nil
}

// SaveAbilityLinks inserts link rows in a single batch.
func (ds *DataStore) SaveAbilityLinks(links []PokemonAbility) error {
	if len(links) == 0 {
		return nil
	}
	if err := ds.DB.Omit("Ability").Create(&links).Error; err != nil {
		return fmt.Errorf("saving %d ability links: %w", len(links), err)
	}
	return nil
}

// ReplaceAbilityLinks removes every ability link for a Pokemon and inserts
// the new set.
func (ds *DataStore) ReplaceAbilityLinks(pokemonID uint, links []PokemonAbility) error {
	if err := ds.DB.Where("pokemon_id = ?", pokemonID).Delete(&PokemonAbility{}).Error; err != nil {
		return fmt.Errorf("deleting ability links for pokemon %d: %w", pokemonID, err)
	}
	return ds.SaveAbilityLinks(links)
}

// GetTypeLinks retrieves the type link rows for a Pokemon joined with their types.
func (ds *DataStore) GetTypeLinks(pokemonID uint) ([]PokemonType, error) {
	var links []PokemonType
	err := ds.DB.Preload("Type").
		Where("pokemon_id = ?", pokemonID).
		Order("id ASC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("getting type links for pokemon %d: %w", pokemonID, err)
	}
	return links, nil
}

// SaveTypeLinks inserts link rows in a single batch.
func (ds *DataStore) SaveTypeLinks(links []PokemonType) error {
	if len(links) == 0 {
		return nil
	}
	if err := ds.DB.Omit("Type").Create(&links).Error; err != nil {
		return fmt.Errorf("saving %d type links: %w", len(links), err)
	}
	return nil
}

// ReplaceTypeLinks removes every type link for a Pokemon and inserts the new set.
func (ds *DataStore) ReplaceTypeLinks(pokemonID uint, links []PokemonType) error {
	if err := ds.DB.Where("pokemon_id = ?", pokemonID).Delete(&PokemonType{}).Error; err != nil {
		return fmt.Errorf("deleting type links for pokemon %d: %w", pokemonID, err)
	}
	return ds.SaveTypeLinks(links)
}

// GetSprites retrieves every sprite row for a Pokemon.
func (ds *DataStore) GetSprites(pokemonID uint) ([]Sprite, error) {
	var sprites []Sprite
	err := ds.DB.Where("pokemon_id = ?", pokemonID).Order("id ASC").Find(&sprites).Error
	if err != nil {
		return nil, fmt.Errorf("getting sprites for pokemon %d: %w", pokemonID, err)
	}
	return sprites, nil
}

// GetSprite retrieves the sprite row for a (pokemon, sprite_type) pair.
func (ds *DataStore) GetSprite(pokemonID uint, spriteType SpriteType) (*Sprite, error) {
	var sprite Sprite
	err := ds.DB.Where("pokemon_id = ? AND sprite_type = ?", pokemonID, spriteType).First(&sprite).Error
	return firstResult(&sprite, err, fmt.Sprintf("getting %s sprite for pokemon %d", spriteType, pokemonID))
}

// SaveSprite inserts a new sprite row.
func (ds *DataStore) SaveSprite(sprite *Sprite) error {
	if err := ds.DB.Create(sprite).Error; err != nil {
		return fmt.Errorf("saving %s sprite for pokemon %d: %w", sprite.SpriteType, sprite.PokemonID, err)
	}
	return nil
}

// ReplaceSprites removes every sprite row for a Pokemon and inserts the new set.
func (ds *DataStore) ReplaceSprites(pokemonID uint, sprites []Sprite) error {
	if err := ds.DB.Where("pokemon_id = ?", pokemonID).Delete(&Sprite{}).Error; err != nil {
		return fmt.Errorf("deleting sprites for pokemon %d: %w", pokemonID, err)
	}
	if len(sprites) == 0 {
		return nil
	}
	if err := ds.DB.Create(&sprites).Error; err != nil {
		return fmt.Errorf("saving %d sprites for pokemon %d: %w", len(sprites), pokemonID, err)
	}
	return nil
}

// Transaction runs fn against a store bound to a single transaction.
func (ds *DataStore) Transaction(fn func(Interface) error) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		return fn(&DataStore{DB: tx})
	})
}

// Open and Close are implemented by the dialect specific stores; the embedded
// DataStore only carries the shared query logic.
func (ds *DataStore) Open() error { return fmt.Errorf("open is dialect specific") }

func (ds *DataStore) Close() error { return fmt.Errorf("close is dialect specific") }

// firstResult translates gorm.ErrRecordNotFound into the (nil, nil) lookup
// miss contract shared by all point lookups.
func firstResult[T any](value *T, err error, operation string) (*T, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return value, nil
}

// performAutoMigration automates database migrations with error handling.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(
		&Pokemon{}, &Ability{}, &Type{},
		&PokemonAbility{}, &PokemonType{}, &Sprite{},
	); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if debug {
		log.Printf("%s database connection initialized: %s", dbType, connectionInfo)
	}

	return nil
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)
}
