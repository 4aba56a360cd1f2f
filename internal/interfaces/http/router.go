package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	appanalytics "github.com/jhoicas/ecotrace-api/internal/application/analytics"
	"github.com/jhoicas/ecotrace-api/internal/application/provenance"
	apptransport "github.com/jhoicas/ecotrace-api/internal/application/transport"
	"github.com/jhoicas/ecotrace-api/internal/application/usecase"
	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC          *usecase.ProductUseCase
	RegisterBatch      *provenance.RegisterBatchUseCase
	BatchUC            *provenance.BatchUseCase
	RegisterTransport  *apptransport.RegisterTransportUseCase
	TransportUC        *apptransport.TransportUseCase
	LedgerReportUC     *apptransport.LedgerReportUseCase
	LabReportUC        *usecase.LabReportUseCase
	DashboardUC        *appanalytics.DashboardUseCase
	TransportStatsUC   *appanalytics.TransportStatsUseCase
	JWTSecret          string
	Log                zerolog.Logger
	Ping               func(ctx context.Context) error // opcional: verificación del almacén en /health
	HealthCheckTimeout time.Duration
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", healthHandler(deps.Ping, deps.HealthCheckTimeout))

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	manufacturer := RequireRole(entity.RoleManufacturer)
	transporter := RequireRole(entity.RoleTransporter)
	lab := RequireRole(entity.RoleLab)
	admin := RequireRole(entity.RoleAdmin)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Log)
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, deps.TransportStatsUC, deps.Log)
	products.Post("/", manufacturer, productHandler.Create)
	products.Get("/my", manufacturer, productHandler.ListMy)
	products.Get("/my/dashboard", manufacturer, dashboardHandler.Manufacturer)
	products.Get("/", admin, productHandler.ListAll)
	products.Get("/:id", admin, productHandler.Get)
	products.Put("/:id", admin, productHandler.Update)
	products.Delete("/:id", admin, productHandler.Delete)

	// Batches
	batches := protected.Group("/batches")
	batchHandler := NewBatchHandler(deps.RegisterBatch, deps.BatchUC, deps.LedgerReportUC, deps.Log)
	batches.Get("/my", manufacturer, batchHandler.ListMy)
	batches.Post("/product/:productId", manufacturer, batchHandler.Create)
	batches.Post("/:id/rescore", manufacturer, batchHandler.Rescore)
	batches.Get("/:id/ledger-report", RequireRole(entity.RoleManufacturer, entity.RoleAdmin), batchHandler.LedgerReport)
	batches.Get("/:id", manufacturer, batchHandler.Get)
	batches.Put("/:id", manufacturer, batchHandler.Update)
	batches.Delete("/:id", manufacturer, batchHandler.Delete)

	// Cola del laboratorio
	protected.Get("/lab/pending-tests", lab, batchHandler.PendingLabTests)

	// Transports
	transports := protected.Group("/transports")
	transportHandler := NewTransportHandler(deps.RegisterTransport, deps.TransportUC, deps.Log)
	ownerOrAdmin := RequireRole(entity.RoleTransporter, entity.RoleAdmin)
	transports.Get("/my/stats", transporter, dashboardHandler.TransportStats)
	transports.Get("/my", transporter, transportHandler.ListMy)
	transports.Get("/batch/:batchId/available-origins", transportHandler.AvailableOrigins)
	transports.Get("/batch/:batchId", RequireRole(entity.RoleManufacturer, entity.RoleAdmin), transportHandler.ListByBatch)
	transports.Post("/", transporter, transportHandler.Create)
	transports.Get("/:id", ownerOrAdmin, transportHandler.Get)
	transports.Put("/:id", ownerOrAdmin, transportHandler.Update)
	transports.Delete("/:id", ownerOrAdmin, transportHandler.Delete)

	// Lab reports
	labReports := protected.Group("/lab-reports")
	labHandler := NewLabReportHandler(deps.LabReportUC, deps.Log)
	labOrAdmin := RequireRole(entity.RoleLab, entity.RoleAdmin)
	labReports.Post("/batch/:batchId", lab, labHandler.Create)
	labReports.Get("/my/stats", lab, labHandler.Stats)
	labReports.Get("/my", lab, labHandler.ListMy)
	labReports.Get("/batch/:batchId", RequireRole(entity.RoleLab, entity.RoleManufacturer, entity.RoleAdmin), labHandler.ListByBatch)
	labReports.Get("/:id", labOrAdmin, labHandler.Get)
	labReports.Put("/:id", labOrAdmin, labHandler.Update)
	labReports.Delete("/:id", labOrAdmin, labHandler.Delete)
}

// HealthResponse estado del servicio.
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store,omitempty"`
}

// healthHandler godoc
// @Summary      Estado del servicio
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health [get]
func healthHandler(ping func(ctx context.Context) error, timeout time.Duration) fiber.Handler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return func(c *fiber.Ctx) error {
		if ping == nil {
			return c.JSON(HealthResponse{Status: "ok"})
		}
		ctx, cancel := context.WithTimeout(c.Context(), timeout)
		defer cancel()
		if err := ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{Status: "degraded", Store: "unreachable"})
		}
		return c.JSON(HealthResponse{Status: "ok", Store: "ok"})
	}
}

