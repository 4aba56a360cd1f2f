package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/ecotrace-api/internal/application/analytics"
	"github.com/jhoicas/ecotrace-api/internal/application/dto"
	"github.com/jhoicas/ecotrace-api/internal/application/provenance"
	apptransport "github.com/jhoicas/ecotrace-api/internal/application/transport"
	"github.com/jhoicas/ecotrace-api/internal/application/usecase"
	"github.com/jhoicas/ecotrace-api/internal/domain/emission"
	"github.com/jhoicas/ecotrace-api/internal/infrastructure/ai"
	"github.com/jhoicas/ecotrace-api/internal/infrastructure/memory"
	"github.com/jhoicas/ecotrace-api/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/ecotrace-api/internal/interfaces/http"
)

// ── Fixture ───────────────────────────────────────────────────────────────────

type stubLedgerPDF struct{}

func (stubLedgerPDF) GenerateLedgerPDF(_ context.Context, r *apptransport.LedgerReport) ([]byte, error) {
	return []byte("%PDF-1.4 " + r.Batch.BatchCode), nil
}

const (
	mfrID   = "mfr-1"
	otherID = "mfr-2"
	carrier = "carrier-1"
	labID   = "lab-1"
	adminID = "admin-1"
)

func newAPI(t *testing.T, obs *metrics.Metrics, ping func(context.Context) error) *fiber.App {
	t.Helper()
	store := memory.New()
	log := zerolog.Nop()

	batchUC := provenance.NewBatchUseCase(store, store.Batches(), store.Scores(), "https://eco.test")
	deps := apphttp.RouterDeps{
		ProductUC:         usecase.NewProductUseCase(store.Products(), store.Batches()),
		RegisterBatch:     provenance.NewRegisterBatchUseCase(store, ai.NewPlaceholderScoreProvider(7), obs, log),
		BatchUC:           batchUC,
		RegisterTransport: apptransport.NewRegisterTransportUseCase(store, store.Batches(), store.Transports(), emission.NewFactorTable(), nil, obs, log),
		TransportUC:       apptransport.NewTransportUseCase(store.Batches(), store.Transports()),
		LedgerReportUC:    apptransport.NewLedgerReportUseCase(store.Batches(), store.Transports(), stubLedgerPDF{}, "https://eco.test"),
		LabReportUC:       usecase.NewLabReportUseCase(store.Batches(), store.LabReports()),
		DashboardUC:       appanalytics.NewDashboardUseCase(store.Analytics()),
		TransportStatsUC:  appanalytics.NewTransportStatsUseCase(store.Analytics()),
		JWTSecret:         testJWTSecret,
		Log:               log,
		Ping:              ping,
	}
	app := fiber.New()
	app.Use(apphttp.RequestLogger(log, obs))
	apphttp.Router(app, deps)
	return app
}

func call(t *testing.T, app *fiber.App, method, path, auth string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

// seedBatch crea un producto y su primer lote fabricado en Factory-A.
func seedBatch(t *testing.T, app *fiber.App) dto.BatchResponse {
	t.Helper()
	mfr := tokenFor(t, mfrID, "manufacturer")
	resp, raw := call(t, app, http.MethodPost, "/api/products", mfr, dto.CreateProductRequest{Name: "Camiseta orgánica", Brand: "Eco"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	product := decode[dto.ProductResponse](t, raw)

	resp, raw = call(t, app, http.MethodPost, "/api/batches/product/"+product.ID, mfr, dto.CreateBatchRequest{
		BatchCode:             "LOTE-001",
		MaterialInfo:          "algodón 100%",
		ManufacturingLocation: "Factory-A",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	return decode[dto.BatchResponse](t, raw)
}

// ── Autenticación y roles ─────────────────────────────────────────────────────

func TestRouter_SinToken_Retorna401(t *testing.T) {
	app := newAPI(t, nil, nil)
	resp, _ := call(t, app, http.MethodGet, "/api/products/my", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_RolIncorrecto_Retorna403(t *testing.T) {
	app := newAPI(t, nil, nil)
	resp, raw := call(t, app, http.MethodPost, "/api/products", tokenFor(t, labID, "lab"), dto.CreateProductRequest{Name: "X producto"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(raw), "FORBIDDEN")
}

// ── Lotes ─────────────────────────────────────────────────────────────────────

func TestRouter_CrearLote_PrimerLoteRequiereLaboratorio(t *testing.T) {
	app := newAPI(t, nil, nil)
	batch := seedBatch(t, app)

	assert.Equal(t, "lab_required", batch.ValidationStatus)
	require.NotNil(t, batch.Validation)
	assert.True(t, batch.Validation.RequiresLabTest)
	assert.Equal(t, "https://eco.test/public/batch/"+batch.ID, batch.QRURL)
}

func TestRouter_CodigoDeLoteDuplicado_Retorna409(t *testing.T) {
	app := newAPI(t, nil, nil)
	batch := seedBatch(t, app)

	resp, raw := call(t, app, http.MethodPost, "/api/batches/product/"+batch.ProductID, tokenFor(t, mfrID, "manufacturer"),
		dto.CreateBatchRequest{BatchCode: "LOTE-001", ManufacturingLocation: "Factory-A"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(raw), "CONFLICT")
}

func TestRouter_LoteDeOtroFabricante_Retorna403(t *testing.T) {
	app := newAPI(t, nil, nil)
	batch := seedBatch(t, app)

	resp, raw := call(t, app, http.MethodGet, "/api/batches/"+batch.ID, tokenFor(t, otherID, "manufacturer"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(raw), "NOT_OWNED")
}

func TestRouter_LoteInexistente_Retorna404(t *testing.T) {
	app := newAPI(t, nil, nil)
	resp, raw := call(t, app, http.MethodGet, "/api/batches/no-existe", tokenFor(t, mfrID, "manufacturer"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(raw), "NOT_FOUND")
}

func TestRouter_CodigoDeLoteCorto_Retorna400(t *testing.T) {
	app := newAPI(t, nil, nil)
	batch := seedBatch(t, app)

	resp, raw := call(t, app, http.MethodPost, "/api/batches/product/"+batch.ProductID, tokenFor(t, mfrID, "manufacturer"),
		dto.CreateBatchRequest{BatchCode: "L1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(raw), "VALIDATION")
}

func TestRouter_ListarMisLotes(t *testing.T) {
	app := newAPI(t, nil, nil)
	seedBatch(t, app)

	resp, raw := call(t, app, http.MethodGet, "/api/batches/my?page=1&limit=10&search=camiseta", tokenFor(t, mfrID, "manufacturer"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.BatchListResponse](t, raw)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, 1, list.TotalPages)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Camiseta orgánica", list.Items[0].Product.Name)
}

// ── Tramos ────────────────────────────────────────────────────────────────────

func TestRouter_Tramos_AdmisionYLedger(t *testing.T) {
	app := newAPI(t, nil, nil)
	batch := seedBatch(t, app)
	tr := tokenFor(t, carrier, "transporter")

	resp, raw := call(t, app, http.MethodPost, "/api/transports", tr, dto.CreateTransportRequest{
		BatchID: batch.ID, Origin: "Factory-A", Destination: "Hub-1",
		DistanceKm: decimal.NewFromInt(100), FuelType: "diesel",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	leg := decode[dto.TransportResponse](t, raw)
	assert.True(t, leg.TransportEmission.Equal(decimal.RequireFromString("268")), leg.TransportEmission.String())

	t.Run("origen no disponible → 422", func(t *testing.T) {
		resp, raw := call(t, app, http.MethodPost, "/api/transports", tr, dto.CreateTransportRequest{
			BatchID: batch.ID, Origin: "Hub-9", Destination: "Store-1",
			DistanceKm: decimal.NewFromInt(5), FuelType: "diesel",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, string(raw), "INVALID_ORIGIN")
	})

	t.Run("ruta repetida sin distinguir mayúsculas → 409", func(t *testing.T) {
		resp, raw := call(t, app, http.MethodPost, "/api/transports", tr, dto.CreateTransportRequest{
			BatchID: batch.ID, Origin: "Factory-A", Destination: "hub-1",
			DistanceKm: decimal.NewFromInt(100), FuelType: "diesel",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Contains(t, string(raw), "DUPLICATE_ROUTE")
	})

	t.Run("orígenes disponibles para cualquier rol", func(t *testing.T) {
		resp, raw := call(t, app, http.MethodGet, "/api/transports/batch/"+batch.ID+"/available-origins", tokenFor(t, labID, "lab"), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		out := decode[dto.AvailableOriginsResponse](t, raw)
		assert.Equal(t, "Factory-A", out.ManufacturedAt)
		assert.Equal(t, []string{"Factory-A", "Hub-1"}, out.Origins)
	})

	t.Run("otro transportador no ve el tramo", func(t *testing.T) {
		resp, _ := call(t, app, http.MethodGet, "/api/transports/"+leg.ID, tokenFor(t, "carrier-2", "transporter"), nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("estadísticas del transportador", func(t *testing.T) {
		resp, raw := call(t, app, http.MethodGet, "/api/transports/my/stats", tr, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		stats := decode[dto.TransportStatsResponse](t, raw)
		assert.Equal(t, 1, stats.TotalTransports)
		assert.True(t, stats.TotalDistance.Equal(decimal.NewFromInt(100)))
	})

	t.Run("tramos del lote para el fabricante", func(t *testing.T) {
		resp, raw := call(t, app, http.MethodGet, "/api/transports/batch/"+batch.ID, tokenFor(t, mfrID, "manufacturer"), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 1, decode[dto.TransportListResponse](t, raw).Total)
	})

	t.Run("admin elimina el tramo", func(t *testing.T) {
		resp, _ := call(t, app, http.MethodDelete, "/api/transports/"+leg.ID, tokenFor(t, adminID, "admin"), nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}

func TestRouter_InformeLedgerPDF(t *testing.T) {
	app := newAPI(t, nil, nil)
	batch := seedBatch(t, app)

	resp, raw := call(t, app, http.MethodGet, "/api/batches/"+batch.ID+"/ledger-report", tokenFor(t, mfrID, "manufacturer"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "ledger_LOTE-001.pdf")
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	resp, _ = call(t, app, http.MethodGet, "/api/batches/"+batch.ID+"/ledger-report", tokenFor(t, otherID, "manufacturer"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/api/batches/"+batch.ID+"/ledger-report", tokenFor(t, adminID, "admin"), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ── Informes de laboratorio ───────────────────────────────────────────────────

func TestRouter_InformesDeLaboratorio(t *testing.T) {
	app := newAPI(t, nil, nil)
	batch := seedBatch(t, app)
	lab := tokenFor(t, labID, "lab")

	resp, raw := call(t, app, http.MethodPost, "/api/lab-reports/batch/"+batch.ID, lab, dto.CreateLabReportRequest{
		TestSummary: "sin metales pesados", EcoRating: 4, LabScore: decimal.NewFromInt(88),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	report := decode[dto.LabReportResponse](t, raw)
	assert.False(t, report.Verified)

	verified := true
	resp, raw = call(t, app, http.MethodPut, "/api/lab-reports/"+report.ID, lab, dto.UpdateLabReportRequest{Verified: &verified})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "solo un admin verifica")
	assert.Contains(t, string(raw), "FORBIDDEN")

	resp, raw = call(t, app, http.MethodPut, "/api/lab-reports/"+report.ID, tokenFor(t, adminID, "admin"), dto.UpdateLabReportRequest{Verified: &verified})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.True(t, decode[dto.LabReportResponse](t, raw).Verified)

	resp, raw = call(t, app, http.MethodGet, "/api/lab-reports/my?verified=true", lab, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[dto.LabReportListResponse](t, raw).Total)

	resp, _ = call(t, app, http.MethodGet, "/api/lab-reports/my?verified=quizas", lab, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = call(t, app, http.MethodGet, "/api/lab-reports/batch/"+batch.ID, tokenFor(t, mfrID, "manufacturer"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.LabReportResponse](t, raw), 1)

	resp, _ = call(t, app, http.MethodPost, "/api/lab-reports/batch/"+batch.ID, lab, dto.CreateLabReportRequest{EcoRating: 1, LabScore: decimal.NewFromInt(50)})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "un informe por laboratorio y lote")
}

func TestRouter_ColaYDashboardDelLaboratorio(t *testing.T) {
	app := newAPI(t, nil, nil)
	batch := seedBatch(t, app)
	lab := tokenFor(t, labID, "lab")

	resp, _ := call(t, app, http.MethodGet, "/api/lab/pending-tests", tokenFor(t, mfrID, "manufacturer"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := call(t, app, http.MethodGet, "/api/lab/pending-tests?search=factory", lab, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	queue := decode[dto.BatchListResponse](t, raw)
	require.Equal(t, 1, queue.Total)
	assert.Equal(t, batch.ID, queue.Items[0].ID)
	assert.Equal(t, "lab_required", queue.Items[0].ValidationStatus)

	resp, raw = call(t, app, http.MethodPost, "/api/lab-reports/batch/"+batch.ID, lab, dto.CreateLabReportRequest{
		EcoRating: 3, LabScore: decimal.NewFromInt(70),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = call(t, app, http.MethodGet, "/api/lab/pending-tests", lab, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, decode[dto.BatchListResponse](t, raw).Total, "un lote informado sale de la cola")

	resp, raw = call(t, app, http.MethodGet, "/api/lab-reports/my/stats", lab, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	stats := decode[dto.LabStatsResponse](t, raw)
	assert.Equal(t, 1, stats.TotalBatchesTested)
	assert.Equal(t, 1, stats.UniqueProductsTested)
	assert.Equal(t, 1, stats.PendingReports)
	assert.Zero(t, stats.VerifiedReports)
	assert.Len(t, stats.RecentReports, 1)
}

// ── Productos (admin) ─────────────────────────────────────────────────────────

func TestRouter_ProductosAdmin(t *testing.T) {
	app := newAPI(t, nil, nil)
	batch := seedBatch(t, app)
	admin := tokenFor(t, adminID, "admin")
	productID := batch.ProductID

	resp, _ := call(t, app, http.MethodGet, "/api/products/"+productID, tokenFor(t, mfrID, "manufacturer"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := call(t, app, http.MethodGet, "/api/products", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, 1, decode[dto.ProductListResponse](t, raw).Total)

	resp, raw = call(t, app, http.MethodGet, "/api/products/"+productID, admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	detail := decode[dto.ProductWithBatchesResponse](t, raw)
	assert.Equal(t, "Camiseta orgánica", detail.Name)
	require.Len(t, detail.Batches, 1)
	assert.Equal(t, "LOTE-001", detail.Batches[0].BatchCode)

	name := "Camiseta reciclada"
	resp, raw = call(t, app, http.MethodPut, "/api/products/"+productID, admin, dto.UpdateProductRequest{Name: &name})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, name, decode[dto.ProductResponse](t, raw).Name)

	resp, _ = call(t, app, http.MethodDelete, "/api/products/"+productID, admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/api/batches/"+batch.ID, tokenFor(t, mfrID, "manufacturer"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "el lote cae con el producto")

	resp, raw = call(t, app, http.MethodGet, "/api/products/"+productID, admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(raw), "NOT_FOUND")

	resp, _ = call(t, app, http.MethodGet, "/api/products/my", tokenFor(t, mfrID, "manufacturer"), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "/my no choca con /:id")
}

// ── Dashboard, health y métricas ──────────────────────────────────────────────

func TestRouter_DashboardDelFabricante(t *testing.T) {
	app := newAPI(t, nil, nil)
	seedBatch(t, app)

	resp, raw := call(t, app, http.MethodGet, "/api/products/my/dashboard", tokenFor(t, mfrID, "manufacturer"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.ManufacturerDashboardDTO](t, raw)
	assert.Equal(t, 1, out.TotalProducts)
	assert.Equal(t, 1, out.TotalBatches)
	require.Len(t, out.Products, 1)
	require.NotNil(t, out.Products[0].LastBatchCode)
	assert.Equal(t, "LOTE-001", *out.Products[0].LastBatchCode)
}

func TestRouter_Health(t *testing.T) {
	resp, _ := call(t, newAPI(t, nil, nil), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	down := func(context.Context) error { return errors.New("sin conexión") }
	resp, raw := call(t, newAPI(t, nil, down), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(raw), "degraded")
}

func TestRequestLogger_RegistraMetricaPorPatronDeRuta(t *testing.T) {
	obs := metrics.New(prometheus.NewRegistry())
	app := newAPI(t, obs, nil)

	call(t, app, http.MethodGet, "/api/batches/abc", tokenFor(t, mfrID, "manufacturer"), nil)
	call(t, app, http.MethodGet, "/api/batches/def", tokenFor(t, mfrID, "manufacturer"), nil)

	assert.Equal(t, float64(2), testutil.ToFloat64(obs.HTTPRequests.WithLabelValues("GET", "/api/batches/:id", "404")))
}
