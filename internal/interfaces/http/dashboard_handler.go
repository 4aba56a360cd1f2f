package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	appanalytics "github.com/jhoicas/ecotrace-api/internal/application/analytics"
)

// DashboardHandler maneja los resúmenes agregados de fabricantes y transportadores.
type DashboardHandler struct {
	dashboard *appanalytics.DashboardUseCase
	stats     *appanalytics.TransportStatsUseCase
	log       zerolog.Logger
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(
	dashboard *appanalytics.DashboardUseCase,
	stats *appanalytics.TransportStatsUseCase,
	log zerolog.Logger,
) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, stats: stats, log: log}
}

// Manufacturer godoc
// @Summary      Dashboard del fabricante
// @Description  Total de productos y lotes, y por producto el conteo de lotes y el último lote.
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ManufacturerDashboardDTO
// @Router       /api/products/my/dashboard [get]
func (h *DashboardHandler) Manufacturer(c *fiber.Ctx) error {
	out, err := h.dashboard.GetManufacturerDashboard(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// TransportStats godoc
// @Summary      Estadísticas del transportador
// @Description  Tramos, distancia y emisión acumulados; promedio de emisión por km.
// @Tags         transports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.TransportStatsResponse
// @Router       /api/transports/my/stats [get]
func (h *DashboardHandler) TransportStats(c *fiber.Ctx) error {
	out, err := h.stats.GetStats(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
