package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ecotrace-api/internal/application/dto"
	"github.com/jhoicas/ecotrace-api/internal/application/provenance"
	apptransport "github.com/jhoicas/ecotrace-api/internal/application/transport"
)

// BatchHandler maneja registro, consulta y mantenimiento de lotes.
type BatchHandler struct {
	register *provenance.RegisterBatchUseCase
	batches  *provenance.BatchUseCase
	ledger   *apptransport.LedgerReportUseCase
	log      zerolog.Logger
}

// NewBatchHandler construye el handler.
func NewBatchHandler(
	register *provenance.RegisterBatchUseCase,
	batches *provenance.BatchUseCase,
	ledger *apptransport.LedgerReportUseCase,
	log zerolog.Logger,
) *BatchHandler {
	return &BatchHandler{register: register, batches: batches, ledger: ledger, log: log}
}

// Create godoc
// @Summary      Registrar lote
// @Description  Clasifica el lote contra el más reciente del producto (copia de puntaje, recálculo o laboratorio).
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path  string                  true  "ID del producto"
// @Param        body       body  dto.CreateBatchRequest  true  "Datos del lote"
// @Success      201  {object}  dto.BatchResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/batches/product/{productId} [post]
func (h *BatchHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.register.CreateBatch(c.Context(), provenance.BatchInputDTO{
		ManufacturerID:        GetUserID(c),
		ProductID:             c.Params("productId"),
		BatchCode:             in.BatchCode,
		ManufactureDate:       in.ManufactureDate,
		ExpiryDate:            in.ExpiryDate,
		MaterialInfo:          in.MaterialInfo,
		MaterialSource:        in.MaterialSource,
		ManufacturingLocation: in.ManufacturingLocation,
		BaseCarbonFootprint:   in.BaseCarbonFootprint,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.batches.Present(res))
}

// ListMy godoc
// @Summary      Listar mis lotes
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        page    query  int     false  "Página (desde 1)"
// @Param        limit   query  int     false  "Tamaño de página (máx 100)"
// @Param        search  query  string  false  "Busca en código, producto y marca"
// @Success      200  {object}  dto.BatchListResponse
// @Router       /api/batches/my [get]
func (h *BatchHandler) ListMy(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", dto.DefaultPageLimit)
	out, err := h.batches.List(c.Context(), GetUserID(c), page, limit, c.Query("search"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// PendingLabTests godoc
// @Summary      Lotes pendientes de laboratorio
// @Description  Lotes lab_required sin ningún informe de laboratorio, más recientes primero.
// @Tags         lab
// @Security     Bearer
// @Produce      json
// @Param        page    query  int     false  "Página (desde 1)"
// @Param        limit   query  int     false  "Tamaño de página (máx 100)"
// @Param        search  query  string  false  "Busca en código, ubicación de fabricación y producto"
// @Success      200  {object}  dto.BatchListResponse
// @Router       /api/lab/pending-tests [get]
func (h *BatchHandler) PendingLabTests(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", dto.DefaultPageLimit)
	out, err := h.batches.PendingLabTests(c.Context(), page, limit, c.Query("search"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener lote
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.BatchResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [get]
func (h *BatchHandler) Get(c *fiber.Ctx) error {
	out, err := h.batches.Get(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar lote
// @Description  Edita campos descriptivos; no vuelve a clasificar el lote.
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del lote"
// @Param        body  body  dto.UpdateBatchRequest  true  "Campos a modificar"
// @Success      200  {object}  dto.BatchResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [put]
func (h *BatchHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.batches.Update(c.Context(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar lote
// @Description  Elimina el lote con sus tramos, puntaje e informes.
// @Tags         batches
// @Security     Bearer
// @Param        id   path  string  true  "ID del lote"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [delete]
func (h *BatchHandler) Delete(c *fiber.Ctx) error {
	if err := h.batches.Delete(c.Context(), GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Rescore godoc
// @Summary      Re-puntuar lote
// @Description  Vuelve a clasificar el lote contra el lote inmediatamente anterior del producto.
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.BatchResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/rescore [post]
func (h *BatchHandler) Rescore(c *fiber.Ctx) error {
	res, err := h.register.RescoreBatch(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(h.batches.Present(res))
}

// LedgerReport godoc
// @Summary      Informe PDF del ledger del lote
// @Description  Tramos, saldos por ubicación, orígenes disponibles y QR de trazabilidad.
// @Tags         batches
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {file}    binary
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/ledger-report [get]
func (h *BatchHandler) LedgerReport(c *fiber.Ctx) error {
	pdf, filename, err := h.ledger.DownloadPDF(c.Context(), GetUserID(c), IsAdmin(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdf)
}
