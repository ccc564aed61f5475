package source

import (
	"context"
	"fmt"
	"time"

	"catalog-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresSource serves the catalog from a local `products` mirror
// table instead of the remote store API. Useful for air-gapped
// deployments and seed data; selected with STORE_SOURCE=postgres.
type PostgresSource struct {
	db *sqlx.DB
}

var _ Source = (*PostgresSource)(nil)

// NewPostgresSource connects to the mirror database.
func NewPostgresSource(databaseURL string) (*PostgresSource, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresSource{db: db}, nil
}

// Close closes the database connection
func (s *PostgresSource) Close() error {
	return s.db.Close()
}

const productColumns = `id, title, price, description, category, image, rating_rate, rating_count`

// productRow flattens the nested rating for sqlx scanning.
type productRow struct {
	models.Product
	RatingRate  float64 `db:"rating_rate"`
	RatingCount int     `db:"rating_count"`
}

func (r productRow) toProduct() models.Product {
	p := r.Product
	p.Rating = models.Rating{Rate: r.RatingRate, Count: r.RatingCount}
	return p
}

// Products returns every product in the mirror, in id order.
func (s *PostgresSource) Products(ctx context.Context) ([]models.Product, error) {
	var rows []productRow
	query := fmt.Sprintf("SELECT %s FROM products ORDER BY id", productColumns)
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, &NetworkError{Endpoint: "products", Err: err}
	}
	return rowsToProducts(rows), nil
}

// ProductsByCategory returns products with an exact category match.
func (s *PostgresSource) ProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	var rows []productRow
	query := fmt.Sprintf("SELECT %s FROM products WHERE category = $1 ORDER BY id", productColumns)
	if err := s.db.SelectContext(ctx, &rows, query, category); err != nil {
		return nil, &NetworkError{Endpoint: "products/category", Err: err}
	}
	return rowsToProducts(rows), nil
}

// Categories returns the distinct category list.
func (s *PostgresSource) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := s.db.SelectContext(ctx, &categories,
		"SELECT DISTINCT category FROM products ORDER BY category")
	if err != nil {
		return nil, &NetworkError{Endpoint: "categories", Err: err}
	}
	return categories, nil
}

func rowsToProducts(rows []productRow) []models.Product {
	products := make([]models.Product, 0, len(rows))
	for _, r := range rows {
		products = append(products, r.toProduct())
	}
	return products
}
