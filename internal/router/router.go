package router

import (
	"net/http"
	"time"

	"firmeza/internal/apierror"
	"firmeza/internal/config"
	"firmeza/internal/handler"
	"firmeza/internal/infra"
	"firmeza/internal/middleware"
	"firmeza/internal/model"
	"firmeza/internal/repository"
	"firmeza/internal/service"
	"firmeza/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb and ai may be nil: email is then sent inline and insights use the
// fallback texts.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, ai *infra.GeminiClient) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	devDetail := !cfg.IsProduction()

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery(devDetail))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler(devDetail))
	r.Use(middleware.StatusResponse())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP
	if cfg.APIEnvelope {
		r.Use(middleware.SuccessEnvelope())
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, apierror.ForStatus(http.StatusNotFound, ""))
	})

	// ── Infrastructure ───────────────────────────────────────────────────────
	mailer := infra.NewMailer(cfg)
	var queue service.EmailQueue
	if rdb != nil {
		queue = worker.NewDispatcher(rdb)
	}
	var gen service.TextGenerator
	var aiCB *infra.CircuitBreaker
	if ai != nil {
		aiCB = ai.Breaker()
		if ai.Enabled() {
			gen = ai
		}
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, clienteRepo, cfg)
	clienteSvc := service.NewClienteService(clienteRepo, usuarioRepo, ventaRepo)
	productoSvc := service.NewProductoService(productoRepo)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, clienteRepo, queue, mailer)
	importSvc := service.NewImportService(productoRepo)
	dashboardSvc := service.NewDashboardService(ventaRepo, clienteRepo, productoRepo, gen)
	reporteSvc := service.NewReporteService(ventaRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	sesiones := middleware.NewSessionManager(
		cfg.SessionSecret,
		time.Duration(cfg.SessionHours)*time.Hour,
		cfg.IsProduction(),
		authSvc.EsAdminActivo,
	)
	authH := handler.NewAuthHandler(authSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	adminH := handler.NewAdminHandler(authSvc, sesiones, dashboardSvc, importSvc, reporteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, aiCB))

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
			auth.POST("/register", authH.Register)
		}

		jwtMW := middleware.JWTAuth(middleware.JWTOptions{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		})
		admin := middleware.RequireRole(model.RolAdministrador)
		cliente := middleware.RequireRole(model.RolCliente)
		cualquiera := middleware.RequireRole(model.RolAdministrador, model.RolCliente)

		p := api.Group("", jwtMW)

		// Self-service profile, declared before /clientes/:id
		p.GET("/clientes/me", cualquiera, clientesH.Perfil)
		p.PUT("/clientes/me", cliente, clientesH.ActualizarPerfil)
		p.DELETE("/clientes/me", cliente, clientesH.EliminarPerfil)

		clientes := p.Group("/clientes", admin)
		{
			clientes.GET("", clientesH.Listar)
			clientes.POST("", clientesH.Crear)
			clientes.GET("/:id", clientesH.Obtener)
			clientes.PUT("/:id", clientesH.Actualizar)
			clientes.DELETE("/:id", clientesH.Eliminar)
			clientes.POST("/:id/link-user", clientesH.VincularUsuario)
		}

		p.GET("/productos", cualquiera, productosH.Listar)
		p.GET("/productos/:id", cualquiera, productosH.Obtener)
		p.POST("/productos", admin, productosH.Crear)
		p.PUT("/productos/:id", admin, productosH.Actualizar)
		p.DELETE("/productos/:id", admin, productosH.Eliminar)

		p.GET("/ventas", cualquiera, ventasH.Listar)
		p.GET("/ventas/:id", cualquiera, ventasH.Obtener)
		p.POST("/ventas", cliente, ventasH.Crear)
		p.PUT("/ventas/:id", ventasH.Modificar)
		p.DELETE("/ventas/:id", admin, ventasH.Eliminar)

		p.GET("/detalles-venta", admin, ventasH.ListarDetalles)
		p.GET("/detalles-venta/:id", cualquiera, ventasH.ObtenerDetalle)
	}

	// Admin panel: session cookie, active administrators only
	adminGrp := r.Group("/admin", sesiones.Middleware())
	adminGrp.POST("/login", middleware.LoginRateLimiter(), adminH.Login)
	adminGrp.POST("/logout", adminH.Logout)
	panel := adminGrp.Group("", sesiones.RequireAdmin())
	{
		panel.GET("/dashboard", adminH.Dashboard)
		panel.POST("/chat", adminH.Chat)

		panel.GET("/clientes", clientesH.Listar)
		panel.POST("/clientes", clientesH.Crear)
		panel.GET("/clientes/:id", clientesH.Obtener)
		panel.PUT("/clientes/:id", clientesH.Actualizar)
		panel.DELETE("/clientes/:id", clientesH.Eliminar)
		panel.POST("/clientes/:id/link-user", clientesH.VincularUsuario)

		panel.GET("/productos", productosH.Listar)
		panel.POST("/productos", productosH.Crear)
		panel.POST("/productos/importar", adminH.ImportarProductos)
		panel.GET("/productos/:id", productosH.Obtener)
		panel.PUT("/productos/:id", productosH.Actualizar)
		panel.DELETE("/productos/:id", productosH.Eliminar)

		panel.GET("/ventas", ventasH.Listar)
		panel.GET("/ventas/pdf", adminH.PDFVentas)
		panel.GET("/ventas/pdf/dia", adminH.PDFVentasDia)
		panel.GET("/ventas/:id", ventasH.Obtener)
		panel.DELETE("/ventas/:id", ventasH.Eliminar)
	}

	// Swagger UI outside production only
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
