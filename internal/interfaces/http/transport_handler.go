package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ecotrace-api/internal/application/dto"
	apptransport "github.com/jhoicas/ecotrace-api/internal/application/transport"
)

// TransportHandler maneja el registro de tramos y las consultas del ledger.
type TransportHandler struct {
	register *apptransport.RegisterTransportUseCase
	queries  *apptransport.TransportUseCase
	log      zerolog.Logger
}

// NewTransportHandler construye el handler.
func NewTransportHandler(
	register *apptransport.RegisterTransportUseCase,
	queries *apptransport.TransportUseCase,
	log zerolog.Logger,
) *TransportHandler {
	return &TransportHandler{register: register, queries: queries, log: log}
}

// Create godoc
// @Summary      Registrar tramo de transporte
// @Description  El origen debe estar entre los orígenes disponibles del lote; la emisión se calcula en el servidor.
// @Tags         transports
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransportRequest  true  "Tramo"
// @Success      201  {object}  dto.TransportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/transports [post]
func (h *TransportHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransportRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.register.CreateTransport(c.Context(), apptransport.TransportInputDTO{
		TransporterID: GetUserID(c),
		BatchID:       in.BatchID,
		Origin:        in.Origin,
		Destination:   in.Destination,
		DistanceKm:    in.DistanceKm,
		FuelType:      in.FuelType,
		VehicleType:   in.VehicleType,
		Notes:         in.Notes,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMy godoc
// @Summary      Listar mis tramos
// @Tags         transports
// @Security     Bearer
// @Produce      json
// @Param        skip    query  int     false  "Desplazamiento"
// @Param        limit   query  int     false  "Tamaño de página (máx 100)"
// @Param        search  query  string  false  "Busca en origen, destino y código de lote"
// @Success      200  {object}  dto.TransportListResponse
// @Router       /api/transports/my [get]
func (h *TransportHandler) ListMy(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", dto.DefaultPageLimit)
	out, err := h.queries.ListMy(c.Context(), GetUserID(c), skip, limit, c.Query("search"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListByBatch godoc
// @Summary      Tramos de un lote
// @Description  En orden de registro. Solo el fabricante dueño del lote o un administrador.
// @Tags         transports
// @Security     Bearer
// @Produce      json
// @Param        batchId  path   string  true   "ID del lote"
// @Param        skip     query  int     false  "Desplazamiento"
// @Param        limit    query  int     false  "Tamaño de página (máx 100)"
// @Success      200  {object}  dto.TransportListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transports/batch/{batchId} [get]
func (h *TransportHandler) ListByBatch(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", dto.DefaultPageLimit)
	out, err := h.queries.ListByBatch(c.Context(), GetUserID(c), IsAdmin(c), c.Params("batchId"), skip, limit)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// AvailableOrigins godoc
// @Summary      Orígenes disponibles de un lote
// @Description  Ubicación de fabricación más los destinos con saldo positivo.
// @Tags         transports
// @Security     Bearer
// @Produce      json
// @Param        batchId  path  string  true  "ID del lote"
// @Success      200  {object}  dto.AvailableOriginsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transports/batch/{batchId}/available-origins [get]
func (h *TransportHandler) AvailableOrigins(c *fiber.Ctx) error {
	batchID := c.Params("batchId")
	origins, err := h.register.AvailableOrigins(c.Context(), batchID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	list := origins.Origins
	if list == nil {
		list = []string{}
	}
	return c.JSON(dto.AvailableOriginsResponse{
		BatchID:        batchID,
		ManufacturedAt: origins.ManufacturedAt,
		Origins:        list,
	})
}

// Get godoc
// @Summary      Obtener tramo
// @Tags         transports
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del tramo"
// @Success      200  {object}  dto.TransportResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transports/{id} [get]
func (h *TransportHandler) Get(c *fiber.Ctx) error {
	out, err := h.queries.Get(c.Context(), GetUserID(c), IsAdmin(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Corregir tramo
// @Description  Revalida la ruta duplicada; la disponibilidad del origen no se revalida.
// @Tags         transports
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del tramo"
// @Param        body  body  dto.UpdateTransportRequest  true  "Campos a modificar"
// @Success      200  {object}  dto.TransportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transports/{id} [put]
func (h *TransportHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateTransportRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.register.UpdateTransport(c.Context(), GetUserID(c), IsAdmin(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar tramo
// @Tags         transports
// @Security     Bearer
// @Param        id   path  string  true  "ID del tramo"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transports/{id} [delete]
func (h *TransportHandler) Delete(c *fiber.Ctx) error {
	if err := h.register.DeleteTransport(c.Context(), GetUserID(c), IsAdmin(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
