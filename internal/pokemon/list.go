package pokemon

import (
	"context"
	"fmt"
	"strings"
)

// List returns one page of catalog summaries in the upstream listing shape.
// Rows are selected by pokemon_id in the half-open range [offset,
// offset+limit). Count is the configured catalog total, not a live row
// count. Pure read, no upstream fetch.
func (s *Service) List(ctx context.Context, limit, offset int, requestURL string) (*Page, error) {
	base := requestURL
	if i := strings.Index(base, "?"); i >= 0 {
		base = base[:i]
	}

	rows, err := s.ds.GetPokemonRange(offset, limit)
	if err != nil {
		s.metrics.RecordOperation("list", "error")
		return nil, err
	}

	results := make([]Summary, 0, len(rows))
	for _, row := range rows {
		results = append(results, Summary{
			ID:   row.PokemonID,
			Name: row.Name,
			URL:  fmt.Sprintf("%s/%d", base, row.PokemonID),
		})
	}

	total := s.settings.Upstream.TotalCount
	page := &Page{Count: total, Results: results}

	if offset+limit < total {
		next := fmt.Sprintf("%s?offset=%d&limit=%d", base, offset+limit, limit)
		page.Next = &next
	}
	// The previous offset is offset-limit without clamping; well-formed
	// navigation always lands back on zero, but an initial offset smaller
	// than limit yields a negative value.
	if offset != 0 {
		previous := fmt.Sprintf("%s?offset=%d&limit=%d", base, offset-limit, limit)
		page.Previous = &previous
	}

	s.metrics.RecordOperation("list", "success")
	return page, nil
}
