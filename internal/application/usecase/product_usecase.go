package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jhoicas/ecotrace-api/internal/application/dto"
	"github.com/jhoicas/ecotrace-api/internal/domain"
	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

// ProductUseCase casos de uso de productos: alta y listado del fabricante, mantenimiento
// del admin.
type ProductUseCase struct {
	repo      repository.ProductRepository
	batchRepo repository.BatchRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, batchRepo repository.BatchRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, batchRepo: batchRepo}
}

// Create crea un producto. El nombre es único en todo el sistema.
func (uc *ProductUseCase) Create(ctx context.Context, manufacturerID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrConflict
	}

	now := time.Now().UTC()
	product := &entity.Product{
		ID:             uuid.New().String(),
		ManufacturerID: manufacturerID,
		Name:           name,
		Brand:          strings.TrimSpace(in.Brand),
		Category:       strings.TrimSpace(in.Category),
		Description:    in.Description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// ListMy lista los productos del fabricante.
func (uc *ProductUseCase) ListMy(ctx context.Context, manufacturerID string) ([]dto.ProductResponse, error) {
	list, err := uc.repo.ListByManufacturer(ctx, manufacturerID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return items, nil
}

// ListAll lista todos los productos (admin).
func (uc *ProductUseCase) ListAll(ctx context.Context, skip, limit int) (*dto.ProductListResponse, error) {
	pr := dto.PageRequest{Limit: limit, Offset: skip}
	pr.DefaultPage()

	list, total, err := uc.repo.List(ctx, pr.Limit, pr.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{Total: total, Items: items}, nil
}

// Get devuelve el producto con sus lotes (admin).
func (uc *ProductUseCase) Get(ctx context.Context, id string) (*dto.ProductWithBatchesResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	batches, err := uc.batchRepo.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &dto.ProductWithBatchesResponse{
		ProductResponse: *toProductResponse(product),
		Batches:         make([]dto.ProductBatchMini, 0, len(batches)),
	}
	for _, b := range batches {
		out.Batches = append(out.Batches, dto.ProductBatchMini{
			ID:               b.ID,
			BatchCode:        b.BatchCode,
			ValidationStatus: string(b.ValidationStatus),
			CreatedAt:        b.CreatedAt,
		})
	}
	return out, nil
}

// Update modifica los datos descriptivos del producto (admin). El fabricante no cambia.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validateProductName(name); err != nil {
			return nil, err
		}
		existing, err := uc.repo.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != product.ID {
			return nil, domain.ErrConflict
		}
		product.Name = name
	}
	if in.Brand != nil {
		product.Brand = strings.TrimSpace(*in.Brand)
	}
	if in.Category != nil {
		product.Category = strings.TrimSpace(*in.Category)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}

	product.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Delete elimina el producto y en cascada sus lotes (admin).
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func validateProductName(name string) error {
	if n := utf8.RuneCountInString(name); n < 2 || n > 200 {
		return fmt.Errorf("%w: name debe tener entre 2 y 200 caracteres", domain.ErrInvalidInput)
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:             p.ID,
		ManufacturerID: p.ManufacturerID,
		Name:           p.Name,
		Brand:          p.Brand,
		Category:       p.Category,
		Description:    p.Description,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
