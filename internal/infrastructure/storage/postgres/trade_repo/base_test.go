package trade_repo

import (
	"testing"

	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
)

func TestBaseEventRepo_GetByID_ExcludesSoftDeleted(t *testing.T) {
	repo := NewBaseEventRepo[any](nil, "trade_purchases", []string{"id", "num", "status"}, func() any { return nil })
	entityID := id.New()

	sql, args, err := repo.getByIDQuery(entityID).ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	wantSQL := "SELECT id, num, status FROM trade_purchases WHERE id = $1 AND status = $2 LIMIT 1"
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}
	if len(args) != 2 || args[0] != entityID || args[1] != entity.StatusActive {
		t.Errorf("Args mismatch\nwant: [%v %v]\ngot:  %v", entityID, entity.StatusActive, args)
	}
}
