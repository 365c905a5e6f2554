package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/procount/internal/domain"
)

//go:embed catalog.yaml
var defaultCatalog []byte

//go:embed catalog.cue
var catalogSchema string

// catalogFile is the on-disk shape of a seed catalog.
type catalogFile struct {
	Products []domain.Product `json:"products"`
}

// DefaultCatalog returns the built-in demo catalog.
func DefaultCatalog() ([]domain.Product, error) {
	return LoadCatalog(defaultCatalog)
}

// LoadCatalog parses a YAML product catalog and validates it against the
// catalog schema before decoding.
func LoadCatalog(data []byte) ([]domain.Product, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	asJSON, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to convert catalog: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(catalogSchema)
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("catalog schema: %w", err)
	}
	value := ctx.CompileBytes(asJSON)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("catalog value: %w", err)
	}
	if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	var cat catalogFile
	if err := json.Unmarshal(asJSON, &cat); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return cat.Products, nil
}

// Seed inserts products when the products table is empty.
//
// Emptiness is the only guard: a store that already holds any product is
// left alone, so calling Seed on every start is safe. Returns the number of
// products inserted.
func (s *Store) Seed(ctx context.Context, products []domain.Product) (int, error) {
	n, err := s.Count(ctx, TableProducts)
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	now := s.clock.Now()
	recs := make([]domain.Product, len(products))
	for i, p := range products {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if p.PriceLastUpdatedAt.IsZero() {
			p.PriceLastUpdatedAt = now
		}
		recs[i] = p
	}
	if err := s.BulkPut(ctx, TableProducts, Records(recs)); err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	return len(recs), nil
}

// SeedDefault seeds the built-in demo catalog.
func (s *Store) SeedDefault(ctx context.Context) (int, error) {
	products, err := DefaultCatalog()
	if err != nil {
		return 0, err
	}
	return s.Seed(ctx, products)
}
