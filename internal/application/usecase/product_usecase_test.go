package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ecotrace-api/internal/application/dto"
	"github.com/jhoicas/ecotrace-api/internal/application/usecase"
	"github.com/jhoicas/ecotrace-api/internal/domain"
	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/internal/infrastructure/memory"
)

func TestProductUseCase_CreateYListMy(t *testing.T) {
	store := memory.New()
	uc := usecase.NewProductUseCase(store.Products(), store.Batches())
	ctx := context.Background()

	created, err := uc.Create(ctx, "m1", dto.CreateProductRequest{Name: "  Camiseta orgánica ", Brand: "Verde"})
	require.NoError(t, err)
	assert.Equal(t, "Camiseta orgánica", created.Name)
	assert.Equal(t, "m1", created.ManufacturerID)
	assert.NotEmpty(t, created.ID)

	_, err = uc.Create(ctx, "m2", dto.CreateProductRequest{Name: "camiseta orgánica"})
	assert.ErrorIs(t, err, domain.ErrConflict, "el nombre es único sin distinguir mayúsculas")

	_, err = uc.Create(ctx, "m1", dto.CreateProductRequest{Name: "X"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	mine, err := uc.ListMy(ctx, "m1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	others, err := uc.ListMy(ctx, "m2")
	require.NoError(t, err)
	assert.Empty(t, others)
}

// ── Administración ────────────────────────────────────────────────────────────

func TestProductUseCase_GetConLotes(t *testing.T) {
	store := memory.New()
	uc := usecase.NewProductUseCase(store.Products(), store.Batches())
	ctx := context.Background()

	p, err := uc.Create(ctx, "m1", dto.CreateProductRequest{Name: "Camiseta"})
	require.NoError(t, err)
	at := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	for i, code := range []string{"LOTE-001", "LOTE-002"} {
		require.NoError(t, store.Batches().Create(ctx, &entity.Batch{
			ID: code, ProductID: p.ID, BatchCode: code, ValidationStatus: entity.ValidationLabRequired,
			CreatedAt: at.Add(time.Duration(i) * time.Hour),
		}))
	}

	got, err := uc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Camiseta", got.Name)
	require.Len(t, got.Batches, 2)
	assert.Equal(t, "LOTE-002", got.Batches[0].BatchCode, "más recientes primero")
	assert.Equal(t, "lab_required", got.Batches[0].ValidationStatus)

	_, err = uc.Get(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUseCase_Update(t *testing.T) {
	store := memory.New()
	uc := usecase.NewProductUseCase(store.Products(), store.Batches())
	ctx := context.Background()

	p, err := uc.Create(ctx, "m1", dto.CreateProductRequest{Name: "Camiseta"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "m2", dto.CreateProductRequest{Name: "Bolso"})
	require.NoError(t, err)

	name, brand := " Camiseta premium ", "Verde"
	updated, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{Name: &name, Brand: &brand})
	require.NoError(t, err)
	assert.Equal(t, "Camiseta premium", updated.Name)
	assert.Equal(t, "Verde", updated.Brand)
	assert.Equal(t, "m1", updated.ManufacturerID, "el fabricante no cambia")

	same := "camiseta PREMIUM"
	_, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{Name: &same})
	assert.NoError(t, err, "renombrar al mismo nombre no es conflicto")

	taken := "bolso"
	_, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{Name: &taken})
	assert.ErrorIs(t, err, domain.ErrConflict)

	short := "X"
	_, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{Name: &short})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Update(ctx, "no-existe", dto.UpdateProductRequest{Brand: &brand})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUseCase_DeleteEnCascadaYListAll(t *testing.T) {
	store := memory.New()
	uc := usecase.NewProductUseCase(store.Products(), store.Batches())
	ctx := context.Background()

	p, err := uc.Create(ctx, "m1", dto.CreateProductRequest{Name: "Camiseta"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "m2", dto.CreateProductRequest{Name: "Bolso"})
	require.NoError(t, err)
	require.NoError(t, store.Batches().Create(ctx, &entity.Batch{ID: "b1", ProductID: p.ID, BatchCode: "LOTE-001"}))
	require.NoError(t, store.Transports().Create(ctx, &entity.Transport{ID: "t1", BatchID: "b1", Origin: "A", Destination: "B"}))

	all, err := uc.ListAll(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)

	page, err := uc.ListAll(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Len(t, page.Items, 1)

	require.NoError(t, uc.Delete(ctx, p.ID))
	b, err := store.Batches().GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.Nil(t, b, "los lotes caen con el producto")
	tr, err := store.Transports().GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, tr)

	assert.ErrorIs(t, uc.Delete(ctx, p.ID), domain.ErrNotFound)
}
