package repository

import (
	"context"

	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetByName(ctx context.Context, name string) (*entity.Product, error)
	ListByManufacturer(ctx context.Context, manufacturerID string) ([]*entity.Product, error)
	// List lista todos los productos (vista de administración).
	List(ctx context.Context, limit, offset int) ([]*entity.Product, int, error)
	Update(ctx context.Context, product *entity.Product) error
	// Delete elimina el producto junto con sus lotes y todo lo que cuelga de ellos.
	Delete(ctx context.Context, id string) error
}
