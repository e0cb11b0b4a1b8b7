package statement_repo

import (
	"strings"
	"testing"

	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
)

func TestStatementRepo_GetByID_ExcludesSoftDeleted(t *testing.T) {
	repo := NewStatementRepo(nil)

	sql, args, err := repo.getByIDQuery(id.New()).ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	if !strings.HasSuffix(sql, "WHERE id = $1 AND status = $2 LIMIT 1") {
		t.Errorf("missing soft-delete condition: %s", sql)
	}
	if len(args) != 2 || args[1] != entity.StatusActive {
		t.Errorf("Args mismatch: %v", args)
	}
}

func TestPaymentRepo_GetByID_ExcludesSoftDeleted(t *testing.T) {
	repo := NewPaymentRepo(nil)

	sql, args, err := repo.getByIDQuery(id.New()).ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	if !strings.HasSuffix(sql, "WHERE id = $1 AND status = $2 LIMIT 1") {
		t.Errorf("missing soft-delete condition: %s", sql)
	}
	if len(args) != 2 || args[1] != entity.StatusActive {
		t.Errorf("Args mismatch: %v", args)
	}
}
