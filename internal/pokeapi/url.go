package pokeapi

import (
	"strconv"
	"strings"

	"github.com/dukkea/pokeapi-go/internal/errors"
)

// IDFromURL extracts the numeric resource identifier from an upstream
// resource URL. Upstream reference URLs end with the identifier as the last
// path segment before a trailing slash, for example
// https://pokeapi.co/api/v2/pokemon/25/.
func IDFromURL(resourceURL string) (int, error) {
	trimmed := strings.TrimSuffix(resourceURL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return 0, errors.Newf("resource URL has no identifier segment: %q", resourceURL).
			Category(errors.CategoryValidation).
			Context("url", resourceURL).
			Component("pokeapi").
			Build()
	}

	id, err := strconv.Atoi(trimmed[idx+1:])
	if err != nil {
		return 0, errors.Newf("resource URL identifier is not numeric: %q", resourceURL).
			Category(errors.CategoryValidation).
			Context("url", resourceURL).
			Component("pokeapi").
			Build()
	}
	return id, nil
}
