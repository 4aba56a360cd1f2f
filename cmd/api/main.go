// @title        EcoTrace API
// @version      1.0
// @description  Trazabilidad de lotes: clasificación de cambios, ledger de transporte con emisiones e informes de laboratorio.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/ecotrace-api/docs"
	appanalytics "github.com/jhoicas/ecotrace-api/internal/application/analytics"
	"github.com/jhoicas/ecotrace-api/internal/application/ports"
	"github.com/jhoicas/ecotrace-api/internal/application/provenance"
	apptransport "github.com/jhoicas/ecotrace-api/internal/application/transport"
	"github.com/jhoicas/ecotrace-api/internal/application/usecase"
	"github.com/jhoicas/ecotrace-api/internal/domain/emission"
	infraai "github.com/jhoicas/ecotrace-api/internal/infrastructure/ai"
	"github.com/jhoicas/ecotrace-api/internal/infrastructure/cache"
	"github.com/jhoicas/ecotrace-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/ecotrace-api/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/ecotrace-api/internal/interfaces/http"
	"github.com/jhoicas/ecotrace-api/pkg/config"
	"github.com/jhoicas/ecotrace-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer st.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Caché de orígenes disponibles (opcional). Sin REDIS_URL se calcula siempre.
	var originsCache apptransport.OriginsCache
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		log.Warn().Err(err).Msg("redis no disponible, caché de orígenes desactivada")
	} else if redisClient != nil {
		defer redisClient.Close()
		originsCache = cache.NewOriginsCache(redisClient, cfg.Redis.OriginsTTL, log.Component("origins-cache"))
	}

	// Proveedor de puntajes: Anthropic si hay API key; si no, el sustituto aleatorio.
	var scorer ports.ScoreProvider
	if cfg.AI.AnthropicAPIKey != "" {
		scorer = infraai.NewAnthropicScoreProvider(cfg.AI.AnthropicAPIKey, cfg.AI.AnthropicModel)
	} else {
		log.Warn().Msg("ANTHROPIC_API_KEY vacío, se usa el proveedor de puntajes sustituto")
		scorer = infraai.NewPlaceholderScoreProvider(cfg.AI.ScoreSeed)
	}

	productUC := usecase.NewProductUseCase(st.products, st.batches)
	registerBatchUC := provenance.NewRegisterBatchUseCase(st.batchTx, scorer, m, log.Component("register-batch"))
	batchUC := provenance.NewBatchUseCase(st.batchTx, st.batches, st.scores, cfg.App.BaseURL)
	registerTransportUC := apptransport.NewRegisterTransportUseCase(
		st.transportTx, st.batches, st.transports, emission.NewFactorTable(),
		originsCache, m, log.Component("register-transport"),
	)
	transportUC := apptransport.NewTransportUseCase(st.batches, st.transports)
	ledgerReportUC := apptransport.NewLedgerReportUseCase(
		st.batches, st.transports, infrapdf.NewMarotoLedgerGenerator(), cfg.App.BaseURL,
	)
	labReportUC := usecase.NewLabReportUseCase(st.batches, st.labReports)
	dashboardUC := appanalytics.NewDashboardUseCase(st.analytics)
	statsUC := appanalytics.NewTransportStatsUseCase(st.analytics)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http"), m))

	// Swagger UI en local: http://localhost:<port>/docs
	docs.SwaggerInfo.Title = cfg.App.Name
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "EcoTrace API",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:         productUC,
		RegisterBatch:     registerBatchUC,
		BatchUC:           batchUC,
		RegisterTransport: registerTransportUC,
		TransportUC:       transportUC,
		LedgerReportUC:    ledgerReportUC,
		LabReportUC:       labReportUC,
		DashboardUC:       dashboardUC,
		TransportStatsUC:  statsUC,
		JWTSecret:         cfg.JWT.Secret,
		Log:               log.Component("http"),
		Ping:              st.ping,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
