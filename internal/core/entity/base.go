package entity

import (
	"context"
	"time"

	"tradeledger/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// Status is the lifecycle state of an entity. Deleted rows stay in the
// database and are excluded from listings and aggregates.
type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusDeleted
}

// BaseEntity contains common fields for all entities (catalogs, trade
// events, statements).
type BaseEntity struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Status marks soft-deleted rows without physically removing them
	Status Status `db:"status" json:"status"`

	// Audit timestamps
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseEntity creates a new BaseEntity with generated ID.
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        id.New(),
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the UpdatedAt timestamp.
func (b *BaseEntity) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// MarkDeleted transitions the entity to the deleted state.
func (b *BaseEntity) MarkDeleted() {
	b.Status = StatusDeleted
	b.Touch()
}

// Restore transitions a deleted entity back to active.
func (b *BaseEntity) Restore() {
	b.Status = StatusActive
	b.Touch()
}

// IsDeleted reports whether the entity is soft-deleted.
func (b *BaseEntity) IsDeleted() bool {
	return b.Status == StatusDeleted
}
