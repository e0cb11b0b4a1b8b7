package statement_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"
	"tradeledger/internal/domain/statement"
	"tradeledger/internal/infrastructure/storage/postgres"
)

const paymentTable = "doc_payments"

var paymentCols = postgres.ExtractDBColumns[statement.Payment]()

// PaymentRepo implements statement.PaymentRepository.
type PaymentRepo struct {
	txm *postgres.TxManager
}

// NewPaymentRepo creates a new payment repository.
func NewPaymentRepo(txm *postgres.TxManager) *PaymentRepo {
	return &PaymentRepo{txm: txm}
}

func (r *PaymentRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *PaymentRepo) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// Create inserts a settlement row.
func (r *PaymentRepo) Create(ctx context.Context, p *statement.Payment) error {
	data := postgres.StructToMap(p)

	q := r.builder().
		Insert(paymentTable).
		SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// getByIDQuery selects one active settlement row; a deleted payment cannot
// be deleted again.
func (r *PaymentRepo) getByIDQuery(paymentID id.ID) squirrel.SelectBuilder {
	return r.builder().
		Select(paymentCols...).
		From(paymentTable).
		Where(squirrel.Eq{"id": paymentID}).
		Where(squirrel.Eq{"status": entity.StatusActive}).
		Limit(1)
}

// GetByID retrieves a non-deleted settlement row.
func (r *PaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*statement.Payment, error) {
	sql, args, err := r.getByIDQuery(paymentID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	p := &statement.Payment{}
	if err := pgxscan.Get(ctx, r.querier(ctx), p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("payment", paymentID.String())
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// SumForStatement sums the non-deleted settlement rows of a statement.
func (r *PaymentRepo) SumForStatement(ctx context.Context, statementID id.ID) (types.Money, error) {
	q := r.builder().
		Select("COALESCE(SUM(amount), 0)").
		From(paymentTable).
		Where(squirrel.Eq{"statement_id": statementID}).
		Where(squirrel.Eq{"status": entity.StatusActive})

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build sum: %w", err)
	}

	var sum types.Money
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&sum); err != nil {
		return types.Zero(), fmt.Errorf("sum payments: %w", err)
	}
	return sum, nil
}

// ListForStatement returns the non-deleted settlement rows of a statement,
// oldest first.
func (r *PaymentRepo) ListForStatement(ctx context.Context, statementID id.ID) ([]*statement.Payment, error) {
	q := r.builder().
		Select(paymentCols...).
		From(paymentTable).
		Where(squirrel.Eq{"statement_id": statementID}).
		Where(squirrel.Eq{"status": entity.StatusActive}).
		OrderBy("pay_date ASC, created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	var items []*statement.Payment
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return items, nil
}

// SetStatus transitions the settlement row lifecycle state.
func (r *PaymentRepo) SetStatus(ctx context.Context, paymentID id.ID, status entity.Status) error {
	q := r.builder().
		Update(paymentTable).
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": paymentID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build set status: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set payment status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("payment", paymentID.String())
	}
	return nil
}
