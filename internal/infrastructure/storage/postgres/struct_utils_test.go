package postgres

import (
	"testing"
	"time"

	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"

	"github.com/stretchr/testify/assert"
)

type mockSupplier struct {
	entity.Catalog
	Phone string `db:"phone" json:"phone"`
	Note  string `db:"note" json:"note"`
}

func TestExtractDBColumns_EmbeddedStructs(t *testing.T) {
	cols := ExtractDBColumns[mockSupplier]()

	expectedCols := []string{
		"id", "status", "created_at", "updated_at", "name", "phone", "note",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
}

func TestStructToMap_EmbeddedStructs(t *testing.T) {
	now := time.Now().UTC()
	sup := mockSupplier{
		Catalog: entity.Catalog{
			BaseEntity: entity.BaseEntity{
				ID:        id.New(),
				Status:    entity.StatusDeleted,
				CreatedAt: now,
				UpdatedAt: now,
			},
			Name: "Acme Produce",
		},
		Phone: "13800000000",
		Note:  "weekly delivery",
	}

	m := StructToMap(sup)

	assert.Equal(t, sup.ID, m["id"])
	assert.Equal(t, entity.StatusDeleted, m["status"])
	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, "Acme Produce", m["name"])
	assert.Equal(t, "13800000000", m["phone"])
	assert.Equal(t, "weekly delivery", m["note"])
}
