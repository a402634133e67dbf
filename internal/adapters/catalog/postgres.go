package catalog

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nezferoz/fashion-park-sub001/internal/customerrors"
	"github.com/nezferoz/fashion-park-sub001/internal/models"
)

// CatalogStoragePostgres is the postgres implementation of ports.ProductCatalog.
//
// Prices and weights live on the product row; stock lives on the variant row
// (sizes), or on the product row for variant-less products
type CatalogStoragePostgres struct {
	pool *pgxpool.Pool
}

func NewCatalogStoragePostgres(pool *pgxpool.Pool) *CatalogStoragePostgres {
	return &CatalogStoragePostgres{pool: pool}
}

// GetVariant re-reads the authoritative price, stock and weight for one line.
// Missing product or variant maps to customerrors.ErrProductNotFound
func (c *CatalogStoragePostgres) GetVariant(ctx context.Context, productID int64, variantID *int64) (models.Variant, error) {
	builder := squirrel.Select("p.product_id", "p.name", "p.price", "p.weight_grams").
		From("fashion_park.products p").
		Where(squirrel.Eq{"p.product_id": productID}).
		PlaceholderFormat(squirrel.Dollar)

	if variantID != nil {
		builder = builder.
			Columns("v.variant_id", "v.stock_quantity").
			Join("fashion_park.product_variants v ON v.product_id = p.product_id").
			Where(squirrel.Eq{"v.variant_id": *variantID})
	} else {
		builder = builder.Columns("NULL::bigint", "p.stock_quantity")
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return models.Variant{}, fmt.Errorf("couldn't build variant query: %w", err)
	}

	var variant models.Variant
	err = c.pool.QueryRow(ctx, sql, args...).Scan(
		&variant.ProductID, &variant.ProductName, &variant.UnitPrice, &variant.WeightGrams,
		&variant.VariantID, &variant.StockQuantity,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Variant{}, customerrors.ErrProductNotFound
		}
		return models.Variant{}, fmt.Errorf("error mapping variant fields: %w", err)
	}

	return variant, nil
}

// CartStoragePostgres is the postgres implementation of ports.CartSource
type CartStoragePostgres struct {
	pool *pgxpool.Pool
}

func NewCartStoragePostgres(pool *pgxpool.Pool) *CartStoragePostgres {
	return &CartStoragePostgres{pool: pool}
}

// GetCartItems reads the customer's persisted cart lines
func (c *CartStoragePostgres) GetCartItems(ctx context.Context, customerID int64) ([]models.CartItem, error) {
	sql, args, err := squirrel.Select("product_id", "variant_id", "quantity").
		From("fashion_park.cart_items").
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("cart_item_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("couldn't build cart query: %w", err)
	}

	rows, err := c.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("couldn't query cart items: %w", err)
	}
	defer rows.Close()

	var items = make([]models.CartItem, 0)
	for rows.Next() {
		var item models.CartItem
		if err = rows.Scan(&item.ProductID, &item.VariantID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("couldn't scan cart item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// CustomerStoragePostgres is the postgres implementation of ports.CustomerSource
type CustomerStoragePostgres struct {
	pool *pgxpool.Pool
}

func NewCustomerStoragePostgres(pool *pgxpool.Pool) *CustomerStoragePostgres {
	return &CustomerStoragePostgres{pool: pool}
}

// GetCustomer reads the checkout-relevant slice of a customer profile
func (c *CustomerStoragePostgres) GetCustomer(ctx context.Context, customerID int64) (models.Customer, error) {
	sql, args, err := squirrel.Select(
		"customer_id", "name", "email", "phone",
		"COALESCE(address, '')", "COALESCE(city_id, '')", "COALESCE(province_id, '')",
	).
		From("fashion_park.customers").
		Where(squirrel.Eq{"customer_id": customerID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return models.Customer{}, fmt.Errorf("couldn't build customer query: %w", err)
	}

	var customer models.Customer
	err = c.pool.QueryRow(ctx, sql, args...).Scan(
		&customer.CustomerID, &customer.Name, &customer.Email, &customer.Phone,
		&customer.Address, &customer.CityID, &customer.ProvinceID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Customer{}, customerrors.ErrCustomerNotFound
		}
		return models.Customer{}, fmt.Errorf("error mapping customer fields: %w", err)
	}

	return customer, nil
}
