package router

import (
	"context"
	"time"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/config"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/handler"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/infra"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/middleware"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/negociacion"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/repository"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/service"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the process-wide clients the router wires into services.
// Redis, Mailer and Dispatcher may be nil (tests); the final-offer cache,
// the health breaker report and approval notifications are then disabled.
type Deps struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Mailer     *infra.Mailer
	Dispatcher *worker.Dispatcher
}

// App is what the caller needs besides the engine: the catalog service is
// the loader the offer worker reads final versions through.
type App struct {
	Engine    *gin.Engine
	Catalogos service.CatalogoService
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// ctx bounds background housekeeping (rate limiter purge).
func New(ctx context.Context, cfg *config.Config, deps Deps) *App {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())

	// ── Infrastructure ───────────────────────────────────────────────────────
	var cache service.OfertaCache
	if deps.Redis != nil {
		cache = service.NewRedisOfertaCache(deps.Redis, time.Duration(cfg.FinalCacheTTLMin)*time.Minute)
	}
	var notifier service.OfertaNotifier
	if deps.Dispatcher != nil {
		notifier = deps.Dispatcher
	}
	var breaker handler.BreakerReporter
	if deps.Mailer != nil {
		breaker = deps.Mailer
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	clienteRepo := repository.NewClienteRepository(deps.DB)
	productoRepo := repository.NewProductoRepository(deps.DB)
	catalogoRepo := repository.NewCatalogoRepository(deps.DB)
	sesionRepo := repository.NewSesionRepository(deps.DB)
	versionRepo := repository.NewVersionRepository(deps.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	clienteSvc := service.NewClienteService(clienteRepo)
	productoSvc := service.NewProductoService(productoRepo)
	catalogoSvc := service.NewCatalogoService(catalogoRepo, sesionRepo, versionRepo, clienteRepo, productoRepo, cache)
	sesionSvc := service.NewSesionService(sesionRepo, catalogoRepo, versionRepo)
	versionSvc := service.NewVersionService(versionRepo, sesionRepo, catalogoRepo, productoRepo, notifier)

	// ── Handlers ─────────────────────────────────────────────────────────────
	clientesH := handler.NewClientesHandler(clienteSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	catalogosH := handler.NewCatalogosHandler(catalogoSvc)
	sesionesH := handler.NewSesionesHandler(sesionSvc)
	versionesH := handler.NewVersionesHandler(versionSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(deps.DB, deps.Redis, breaker))

	// Protected routes
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret, cfg.JWTIssuer))
	if cfg.RateLimitPerMin > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitPerMin, time.Minute)
		limiter.StartPurge(ctx)
		v1.Use(limiter.Middleware())
	}
	{
		// Master data: any authenticated caller reads, ADMIN/COMERCIAL write.
		maestros := middleware.RequireRole(middleware.RolAdmin, middleware.RolComercial)
		v1.POST("/clientes", maestros, clientesH.Crear)
		v1.GET("/clientes", clientesH.Listar)
		v1.GET("/clientes/:id", clientesH.Obtener)
		v1.POST("/productos", maestros, productosH.Crear)
		v1.GET("/productos", productosH.Listar)
		v1.GET("/productos/:id", productosH.Obtener)

		cat := v1.Group("/catalogos")
		{
			cat.POST("", catalogosH.Crear)
			cat.GET("", catalogosH.Listar)
			cat.GET("/:id", catalogosH.Obtener)
			cat.PATCH("/:id", catalogosH.Editar)
			cat.GET("/:id/final", catalogosH.ObtenerFinal)
			cat.GET("/:id/final/pdf", catalogosH.DescargarPDF)
			cat.GET("/:id/sesiones", sesionesH.ListarPorCatalogo)
			cat.POST("/:id/sesiones", sesionesH.Crear)
		}

		ses := v1.Group("/sesiones")
		{
			ses.GET("/:id", sesionesH.Obtener)
			ses.PATCH("/:id", sesionesH.Editar)
			ses.DELETE("/:id", sesionesH.Eliminar)
			ses.GET("/:id/versiones", versionesH.ListarPorSesion)
			ses.POST("/:id/versiones", versionesH.Crear)
		}

		ver := v1.Group("/versiones")
		{
			ver.GET("/:id", versionesH.Obtener)
			ver.PATCH("/:id", versionesH.Editar)
			ver.POST("/:id/current", versionesH.ForzarCurrent)
			for _, a := range negociacion.Acciones {
				ver.POST("/:id/"+string(a), versionesH.Transicionar)
			}
		}
	}

	// Swagger UI, outside production only
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return &App{Engine: r, Catalogos: catalogoSvc}
}
