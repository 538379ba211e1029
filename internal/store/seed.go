package store

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/safar/storefront/internal/models"
)

//go:embed seed_catalog.yaml
var seedCatalog []byte

// SeedProducts returns the catalog a store starts with before any admin edit.
func SeedProducts() ([]models.Product, error) {
	var products []models.Product
	if err := yaml.Unmarshal(seedCatalog, &products); err != nil {
		return nil, fmt.Errorf("decode seed catalog: %w", err)
	}

	for _, p := range products {
		if err := validateProduct(p); err != nil {
			return nil, fmt.Errorf("seed product %d: %w", p.ID, err)
		}
	}
	return products, nil
}
