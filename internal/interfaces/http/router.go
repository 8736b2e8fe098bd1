package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/entregas-api/internal/application/dto"
	"github.com/jhoicas/entregas-api/internal/application/usecase"
	"github.com/jhoicas/entregas-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger       StockWorkflow
	Transactions TransactionReader
	Receipts     ReceiptDownloader
	ProductUC    *usecase.ProductUseCase
	CustomerUC   *usecase.CustomerUseCase
	WarehouseUC  *usecase.WarehouseUseCase
	Idempotency  IdempotencyStore // nil = sin Idempotency-Key
	JWTSecret    string
	JWTIssuer    string
	ServiceName  string
	// RateLimitPerMinute límite por IP en /api. 0 = sin límite.
	RateLimitPerMinute int
	Logger             *logger.Logger
}

// Router registra middleware global y las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(RequestLogger(log.Component("http")))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	api := app.Group("/api")
	if deps.RateLimitPerMinute > 0 {
		api.Use(limiter.New(limiter.Config{
			Max:        deps.RateLimitPerMinute,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: "RATE_LIMITED", Message: "demasiadas solicitudes"})
			},
		}))
	}

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	// Entregas y devoluciones
	ledgerHandler := NewLedgerHandler(deps.Ledger)
	idem := Idempotency(deps.Idempotency, log.Component("idempotency"))
	protected.Post("/deliveries", idem, ledgerHandler.Deliver)
	protected.Post("/returns", idem, ledgerHandler.Return)

	// Historial
	transactions := protected.Group("/transactions")
	txHandler := NewTransactionHandler(deps.Transactions, deps.Receipts)
	transactions.Get("/", txHandler.List)
	transactions.Get("/:id", txHandler.GetByID)
	transactions.Patch("/:id", txHandler.Update)
	transactions.Get("/:id/receipt", txHandler.Receipt)

	// Catálogo
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", customerHandler.Delete)

	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", warehouseHandler.Update)
	warehouses.Delete("/:id", warehouseHandler.Delete)
}
