package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/FilipeCampos25/SiteClienteLucas/internal/domain"
	"github.com/FilipeCampos25/SiteClienteLucas/internal/repository"
	"github.com/FilipeCampos25/SiteClienteLucas/pkg/database"
	apperrors "github.com/FilipeCampos25/SiteClienteLucas/pkg/errors"
)

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

const productSelectColumns = `id, name, slug, description, price, image_url, image_bytes IS NOT NULL AS has_image, active, created_at, updated_at`

// Create inserts a new product, optionally with its image, and fills in the
// generated ID.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product, img *domain.ProductImage) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO products (name, slug, description, price, image_url, image_bytes, image_mime, image_sha256, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	var (
		imgBytes  []byte
		imgMime   *string
		imgSHA256 *string
	)
	if img != nil {
		imgBytes = img.Bytes
		imgMime = &img.Mime
		imgSHA256 = &img.SHA256
		p.HasImage = true
	}

	err := r.db.QueryRow(ctx, query,
		p.Name,
		p.Slug,
		p.Description,
		p.Price,
		p.ImageURL,
		imgBytes,
		imgMime,
		imgSHA256,
		p.Active,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE id = $1`, productSelectColumns)

	return r.scanProduct(ctx, query, id)
}

// List returns products matching the given filter with the total count.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.ActiveOnly {
		conditions = append(conditions, "active = TRUE")
	}

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT %s,
			   count(*) OVER() AS total_count
		FROM products
		%s
		ORDER BY id
		LIMIT $%d OFFSET $%d`,
		productSelectColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		products   []domain.Product
		totalCount int
	)

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Slug,
			&p.Description,
			&p.Price,
			&p.ImageURL,
			&p.HasImage,
			&p.Active,
			&p.CreatedAt,
			&p.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}

	return products, totalCount, nil
}

// Update modifies an existing product. A non-nil img replaces the stored
// image; a nil img leaves the current one untouched.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product, img *domain.ProductImage) error {
	p.UpdatedAt = time.Now().UTC()

	var (
		query string
		args  []any
	)

	if img != nil {
		query = `
			UPDATE products
			SET name = $1, slug = $2, description = $3, price = $4, image_url = $5,
			    image_bytes = $6, image_mime = $7, image_sha256 = $8, active = $9, updated_at = $10
			WHERE id = $11`
		args = []any{
			p.Name, p.Slug, p.Description, p.Price, p.ImageURL,
			img.Bytes, img.Mime, img.SHA256, p.Active, p.UpdatedAt, p.ID,
		}
		p.HasImage = true
	} else {
		query = `
			UPDATE products
			SET name = $1, slug = $2, description = $3, price = $4, image_url = $5,
			    active = $6, updated_at = $7
			WHERE id = $8`
		args = []any{
			p.Name, p.Slug, p.Description, p.Price, p.ImageURL,
			p.Active, p.UpdatedAt, p.ID,
		}
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", strconv.FormatInt(p.ID, 10))
	}

	return nil
}

// Delete deactivates a product. The row stays so stored images and carts
// pointing at the ID keep resolving.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	query := `UPDATE products SET active = FALSE, updated_at = $1 WHERE id = $2`

	ct, err := r.db.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", strconv.FormatInt(id, 10))
	}

	return nil
}

// GetImage retrieves the stored image for a product. Products without
// stored bytes report not found.
func (r *ProductRepository) GetImage(ctx context.Context, id int64) (*domain.ProductImage, error) {
	query := `
		SELECT image_bytes, image_mime, image_sha256
		FROM products
		WHERE id = $1 AND image_bytes IS NOT NULL`

	var (
		img  domain.ProductImage
		mime *string
		sha  *string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(&img.Bytes, &mime, &sha)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product image", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("scan product image: %w", err)
	}
	if mime != nil {
		img.Mime = *mime
	}
	if sha != nil {
		img.SHA256 = *sha
	}

	return &img, nil
}

// scanProduct is a helper that executes a query expected to return a single product row.
func (r *ProductRepository) scanProduct(ctx context.Context, query string, args ...any) (*domain.Product, error) {
	var p domain.Product

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Price,
		&p.ImageURL,
		&p.HasImage,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return &p, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
