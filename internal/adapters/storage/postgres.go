package storage

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/nezferoz/fashion-park-sub001/internal/customerrors"
	"github.com/nezferoz/fashion-park-sub001/internal/models"
)

// TransactionStoragePostgres is the postgres implementation of ports.TransactionStorage
type TransactionStoragePostgres struct {
	pool *pgxpool.Pool
}

// NewTransactionStoragePostgres creates a new *TransactionStoragePostgres with given DB pool
func NewTransactionStoragePostgres(pool *pgxpool.Pool) *TransactionStoragePostgres {
	return &TransactionStoragePostgres{
		pool: pool,
	}
}

// SaveTransaction persists the transaction and its line items in one DB transaction.
//
// The order_id column carries a UNIQUE constraint; inserting a duplicate maps to
// customerrors.ErrDuplicateOrderID so the orchestrator can tell a replay from a failure
func (s *TransactionStoragePostgres) SaveTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	dbTx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("couldn't start transaction: %w", err)
	}
	defer func() { _ = dbTx.Rollback(ctx) }()

	sql, args, err := squirrel.
		Insert("fashion_park.transactions").
		Columns(
			"order_id", "customer_id", "subtotal", "shipping_cost", "fee_amount",
			"discount", "total_amount", "payment_method", "payment_status", "courier",
		).
		Values(
			tx.OrderID, tx.CustomerID, tx.Subtotal, tx.ShippingCost, tx.FeeAmount,
			tx.Discount, tx.TotalAmount, tx.PaymentMethod, tx.PaymentStatus, tx.Courier,
		).
		Suffix("RETURNING transaction_id, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return models.Transaction{}, fmt.Errorf("couldn't build an SQL query: %w", err)
	}

	err = dbTx.QueryRow(ctx, sql, args...).Scan(&tx.TransactionID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Transaction{}, customerrors.ErrDuplicateOrderID
		}
		return models.Transaction{}, fmt.Errorf("couldn't insert transaction: %w", err)
	}

	if len(tx.Lines) > 0 {
		builder := squirrel.
			Insert("fashion_park.transaction_items").
			Columns("transaction_id", "product_id", "variant_id", "product_name", "quantity", "unit_price", "weight_grams").
			PlaceholderFormat(squirrel.Dollar)
		for i := range tx.Lines {
			tx.Lines[i].TransactionID = tx.TransactionID
			line := tx.Lines[i]
			builder = builder.Values(
				line.TransactionID, line.ProductID, line.VariantID, line.ProductName,
				line.Quantity, line.UnitPrice, line.WeightGrams,
			)
		}

		sql, args, err = builder.ToSql()
		if err != nil {
			return models.Transaction{}, fmt.Errorf("couldn't build items query: %w", err)
		}

		if _, err = dbTx.Exec(ctx, sql, args...); err != nil {
			return models.Transaction{}, fmt.Errorf("couldn't insert transaction items: %w", err)
		}
	}

	if err = dbTx.Commit(ctx); err != nil {
		return models.Transaction{}, fmt.Errorf("couldn't commit transaction: %w", err)
	}

	return tx, nil
}

// GetTransactionByOrderID gathers the transaction row and its items.
//
// Querying for the transaction and its items is parallel
func (s *TransactionStoragePostgres) GetTransactionByOrderID(ctx context.Context, orderID string) (models.Transaction, error) {
	var tx models.Transaction
	var lines []models.TransactionLine

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var err error
		tx, err = s.getTransactionBase(egCtx, orderID)
		if err != nil {
			return fmt.Errorf("error trying to get transaction itself: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		var err error
		lines, err = s.getTransactionItems(egCtx, orderID)
		if err != nil {
			return fmt.Errorf("error trying to get transaction items: %w", err)
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return models.Transaction{}, err
	}

	tx.Lines = lines
	return tx, nil
}

func (s *TransactionStoragePostgres) getTransactionBase(ctx context.Context, orderID string) (models.Transaction, error) {
	sql, args, err := squirrel.Select(
		"transaction_id", "order_id", "customer_id", "subtotal", "shipping_cost",
		"fee_amount", "discount", "total_amount", "payment_method", "payment_status",
		"courier", "waybill_number", "created_at", "updated_at",
	).
		From("fashion_park.transactions").
		Where(squirrel.Eq{"order_id": orderID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return models.Transaction{}, fmt.Errorf("couldn't build an SQL query: %w", err)
	}

	var tx models.Transaction
	err = s.pool.QueryRow(ctx, sql, args...).Scan(
		&tx.TransactionID, &tx.OrderID, &tx.CustomerID, &tx.Subtotal, &tx.ShippingCost,
		&tx.FeeAmount, &tx.Discount, &tx.TotalAmount, &tx.PaymentMethod, &tx.PaymentStatus,
		&tx.Courier, &tx.WaybillNumber, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Transaction{}, customerrors.ErrTransactionNotFound
		}
		return models.Transaction{}, fmt.Errorf("error mapping query result fields: %w", err)
	}

	return tx, nil
}

func (s *TransactionStoragePostgres) getTransactionItems(ctx context.Context, orderID string) ([]models.TransactionLine, error) {
	sql, args, err := squirrel.Select(
		"i.transaction_id", "i.product_id", "i.variant_id", "i.product_name",
		"i.quantity", "i.unit_price", "i.weight_grams",
	).
		From("fashion_park.transaction_items i").
		Join("fashion_park.transactions t ON t.transaction_id = i.transaction_id").
		Where(squirrel.Eq{"t.order_id": orderID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("couldn't build items query: %w", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("couldn't query items: %w", err)
	}
	defer rows.Close()

	var lines = make([]models.TransactionLine, 0)
	for rows.Next() {
		var line models.TransactionLine
		err = rows.Scan(
			&line.TransactionID, &line.ProductID, &line.VariantID, &line.ProductName,
			&line.Quantity, &line.UnitPrice, &line.WeightGrams,
		)
		if err != nil {
			return nil, fmt.Errorf("couldn't scan item: %w", err)
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

// UpdateStatusIfPending is the conditional status write all reconciliation goes
// through: the row changes only while payment_status is still PENDING, so two
// concurrently delivered webhooks for the same order cannot both win
func (s *TransactionStoragePostgres) UpdateStatusIfPending(ctx context.Context, orderID string, to models.PaymentStatus) (bool, error) {
	sql, args, err := squirrel.
		Update("fashion_park.transactions").
		Set("payment_status", to).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"order_id": orderID, "payment_status": models.PaymentStatusPending}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("couldn't build an SQL query: %w", err)
	}

	var result pgconn.CommandTag
	result, err = s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("couldn't exec status update: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

// DecrementStock subtracts sold quantities from stock.
// Stock lives on the variant row for sized products and on the product row for
// variant-less ones, mirroring where the catalog read it at draft time.
// The stock_quantity >= quantity guard keeps stock from going negative when the
// fulfillment-time race (stock is checked, not reserved, at draft time) is lost
func (s *TransactionStoragePostgres) DecrementStock(ctx context.Context, lines []models.TransactionLine) error {
	dbTx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("couldn't start transaction: %w", err)
	}
	defer func() { _ = dbTx.Rollback(ctx) }()

	for _, line := range lines {
		sql, args, err := stockUpdateQuery(line)
		if err != nil {
			return fmt.Errorf("couldn't build stock update query: %w", err)
		}

		result, err := dbTx.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("couldn't exec stock update: %w", err)
		}
		if result.RowsAffected() != 1 {
			return fmt.Errorf("stock for product %d went below sold quantity: %w",
				line.ProductID, customerrors.ErrInsufficientStock)
		}
	}

	if err = dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("couldn't commit stock update: %w", err)
	}
	return nil
}

// stockUpdateQuery builds the guarded decrement for one sold line, targeting
// the same table the catalog checked the stock in
func stockUpdateQuery(line models.TransactionLine) (string, []any, error) {
	if line.VariantID == nil {
		return squirrel.
			Update("fashion_park.products").
			Set("stock_quantity", squirrel.Expr("stock_quantity - ?", line.Quantity)).
			Where(squirrel.And{
				squirrel.Eq{"product_id": line.ProductID},
				squirrel.GtOrEq{"stock_quantity": line.Quantity},
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
	}
	return squirrel.
		Update("fashion_park.product_variants").
		Set("stock_quantity", squirrel.Expr("stock_quantity - ?", line.Quantity)).
		Where(squirrel.And{
			squirrel.Eq{"product_id": line.ProductID, "variant_id": *line.VariantID},
			squirrel.GtOrEq{"stock_quantity": line.Quantity},
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

// isUniqueViolation checks for postgres UNIQUE violations (code 23505)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
