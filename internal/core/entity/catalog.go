package entity

import (
	"context"

	"tradeledger/internal/core/apperror"
)

// Catalog is the base type for reference data: suppliers, purchasers, goods.
type Catalog struct {
	BaseEntity

	// Name is the display name (unique among active rows of a kind)
	Name string `db:"name" json:"name"`
}

// NewCatalog creates a new Catalog with generated ID.
func NewCatalog(name string) Catalog {
	return Catalog{
		BaseEntity: NewBaseEntity(),
		Name:       name,
	}
}

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}
