package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/FilipeCampos25/SiteClienteLucas/internal/domain"
	"github.com/FilipeCampos25/SiteClienteLucas/internal/event"
	"github.com/FilipeCampos25/SiteClienteLucas/internal/repository"
	apperrors "github.com/FilipeCampos25/SiteClienteLucas/pkg/errors"
	"github.com/FilipeCampos25/SiteClienteLucas/pkg/slug"
)

// allowedImageMimes lists the content types accepted for product images.
var allowedImageMimes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
}

// ProductService implements the business logic for catalog administration.
type ProductService struct {
	repo     repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, producer *event.Producer, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	ImageURL    string
}

// UpdateProductInput holds the parameters for updating a product. Nil fields
// are left unchanged.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	ImageURL    *string
	Active      *bool
}

// ImageUpload is a raw uploaded image before validation.
type ImageUpload struct {
	Data        []byte
	ContentType string
}

// CreateProduct creates a new product, optionally with an uploaded image.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput, upload *ImageUpload) (*domain.Product, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}

	img, err := buildImage(upload)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:        input.Name,
		Slug:        slug.Generate(input.Name),
		Description: input.Description,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
		Active:      true,
	}

	if err := s.repo.Create(ctx, product, img); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish produto.created event",
			slog.Int64("product_id", product.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", product.ID),
		slog.String("slug", product.Slug),
	)

	return product, nil
}

// GetProduct retrieves a product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// ListProducts returns a filtered, paginated list of products.
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return products, total, nil
}

// UpdateProduct applies partial updates to an existing product, optionally
// replacing its image.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, input *UpdateProductInput, upload *ImageUpload) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("product name must not be empty")
		}
		product.Name = *input.Name
		product.Slug = slug.Generate(*input.Name)
	}

	if input.Description != nil {
		product.Description = *input.Description
	}

	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperrors.InvalidInput("price must not be negative")
		}
		product.Price = *input.Price
	}

	if input.ImageURL != nil {
		product.ImageURL = *input.ImageURL
	}

	if input.Active != nil {
		product.Active = *input.Active
	}

	img, err := buildImage(upload)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, product, img); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish produto.updated event",
			slog.Int64("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.Int64("product_id", product.ID),
		slog.String("slug", product.Slug),
	)

	return product, nil
}

// DeleteProduct deactivates a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if err := s.producer.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish produto.deleted event",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.Int64("product_id", id),
	)

	return nil
}

// GetProductImage retrieves the stored image for a product.
func (s *ProductService) GetProductImage(ctx context.Context, id int64) (*domain.ProductImage, error) {
	img, err := s.repo.GetImage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product image: %w", err)
	}
	return img, nil
}

// buildImage validates an upload and computes its content hash.
func buildImage(upload *ImageUpload) (*domain.ProductImage, error) {
	if upload == nil {
		return nil, nil
	}
	if len(upload.Data) == 0 {
		return nil, apperrors.InvalidInput("image file is empty")
	}
	if !allowedImageMimes[upload.ContentType] {
		return nil, apperrors.InvalidInput(fmt.Sprintf("image type %q is not allowed, must be png or jpeg", upload.ContentType))
	}

	sum := sha256.Sum256(upload.Data)
	return &domain.ProductImage{
		Bytes:  upload.Data,
		Mime:   upload.ContentType,
		SHA256: hex.EncodeToString(sum[:]),
	}, nil
}
