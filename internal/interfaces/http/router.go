package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kimhun645/stock-ledger-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    LedgerService
	Queries   *usecase.MovementQueryUseCase
	ProductUC *usecase.ProductUseCase
	JWTSecret string
	JWTIssuer string
	JWTExpMin int
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público, stub)
	authHandler := NewAuthHandler(deps.JWTSecret, deps.JWTIssuer, deps.JWTExpMin)
	api.Post("/auth/token", authHandler.Token)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Libro de stock (protegido)
	ledgerHandler := NewLedgerHandler(deps.Ledger, deps.Queries)
	movements := protected.Group("/movements")
	movements.Post("/", ledgerHandler.RecordMovement)
	movements.Get("/", ledgerHandler.ListMovements)
	movements.Put("/:id", ledgerHandler.ReviseMovement)
	movements.Delete("/:id", ledgerHandler.RetireMovement)

	// Conciliación (protegido; corregir requiere rol admin)
	products.Get("/:id/reconcile", ledgerHandler.Reconcile)
	products.Post("/:id/reconcile/correct", RequireRole("admin"), ledgerHandler.CorrectDrift)
}
