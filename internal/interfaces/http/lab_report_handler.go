package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ecotrace-api/internal/application/dto"
	"github.com/jhoicas/ecotrace-api/internal/application/usecase"
)

// LabReportHandler maneja los informes de laboratorio.
type LabReportHandler struct {
	uc  *usecase.LabReportUseCase
	log zerolog.Logger
}

// NewLabReportHandler construye el handler.
func NewLabReportHandler(uc *usecase.LabReportUseCase, log zerolog.Logger) *LabReportHandler {
	return &LabReportHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Registrar informe de laboratorio
// @Description  Un laboratorio emite como máximo un informe por lote.
// @Tags         lab-reports
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        batchId  path  string                      true  "ID del lote"
// @Param        body     body  dto.CreateLabReportRequest  true  "Informe"
// @Success      201  {object}  dto.LabReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/lab-reports/batch/{batchId} [post]
func (h *LabReportHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLabReportRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.Context(), GetUserID(c), c.Params("batchId"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMy godoc
// @Summary      Listar mis informes
// @Tags         lab-reports
// @Security     Bearer
// @Produce      json
// @Param        skip      query  int     false  "Desplazamiento"
// @Param        limit     query  int     false  "Tamaño de página (máx 100)"
// @Param        search    query  string  false  "Busca en resumen, certificaciones, ID y código de lote"
// @Param        verified  query  bool    false  "Filtra por verificado"
// @Success      200  {object}  dto.LabReportListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/lab-reports/my [get]
func (h *LabReportHandler) ListMy(c *fiber.Ctx) error {
	var verified *bool
	if raw := c.Query("verified"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "verified debe ser true o false"})
		}
		verified = &v
	}
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", dto.DefaultPageLimit)
	out, err := h.uc.ListMy(c.Context(), GetUserID(c), skip, limit, c.Query("search"), verified)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Dashboard del laboratorio
// @Tags         lab-reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LabStatsResponse
// @Router       /api/lab-reports/my/stats [get]
func (h *LabReportHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListByBatch godoc
// @Summary      Informes de un lote
// @Tags         lab-reports
// @Security     Bearer
// @Produce      json
// @Param        batchId  path  string  true  "ID del lote"
// @Success      200  {array}   dto.LabReportResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lab-reports/batch/{batchId} [get]
func (h *LabReportHandler) ListByBatch(c *fiber.Ctx) error {
	out, err := h.uc.ListByBatch(c.Context(), c.Params("batchId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener informe
// @Tags         lab-reports
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del informe"
// @Success      200  {object}  dto.LabReportResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lab-reports/{id} [get]
func (h *LabReportHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), GetUserID(c), IsAdmin(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar informe
// @Description  Solo un administrador puede marcar el informe como verificado.
// @Tags         lab-reports
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del informe"
// @Param        body  body  dto.UpdateLabReportRequest  true  "Campos a modificar"
// @Success      200  {object}  dto.LabReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lab-reports/{id} [put]
func (h *LabReportHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateLabReportRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.Context(), GetUserID(c), IsAdmin(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar informe
// @Tags         lab-reports
// @Security     Bearer
// @Param        id   path  string  true  "ID del informe"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lab-reports/{id} [delete]
func (h *LabReportHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), GetUserID(c), IsAdmin(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
