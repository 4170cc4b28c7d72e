package routes

import (
	"github.com/gofiber/fiber/v2"

	"mandi-backend/controllers"
	"mandi-backend/middlewares"
	"mandi-backend/models"
)

// Register wires all HTTP routes.
func Register(app *fiber.App, h *controllers.Handler) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/login", h.Login)

	// Protected endpoints (JWT auth)
	protected := api.Group("", middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency(h.DB))

	admin := middlewares.RequireAdmin()

	protected.Post("/users", admin, h.CreateUser)
	protected.Get("/events", h.Events)

	// Master data runs in a per-request transaction.
	farmers := protected.Group("/farmers", middlewares.RequestTx(h.DB))
	farmers.Post("/", controllers.CreateFarmer)
	farmers.Get("/", controllers.GetFarmers)
	farmers.Get("/:farmerName", controllers.GetFarmer)
	farmers.Put("/:farmerName", controllers.UpdateFarmer)
	farmers.Delete("/:farmerName", admin, controllers.DeleteFarmer)

	vegetables := protected.Group("/vegetables", middlewares.RequestTx(h.DB))
	vegetables.Post("/", controllers.CreateVegetable)
	vegetables.Get("/", controllers.GetVegetables)
	vegetables.Delete("/:vegetableName", admin, controllers.DeleteVegetable)

	groups := protected.Group("/groups", middlewares.RequestTx(h.DB))
	groups.Post("/", controllers.CreateGroup)
	groups.Get("/", controllers.GetGroups)
	groups.Delete("/:groupName", admin, controllers.DeleteGroup)

	// Customers (history before :customerName so it is not taken as a name)
	protected.Post("/customers", h.CreateCustomer)
	protected.Get("/customers", h.GetCustomers)
	protected.Get("/customers/history", h.History(models.HistoryCustomer))
	protected.Get("/customers/:customerName", h.GetCustomer)
	protected.Get("/customers/:customerName/ledger", h.GetCustomerLedger)
	protected.Get("/customers/:customerName/whatsapp", h.GetCustomerWhatsApp)
	protected.Put("/customers/:customerName", h.UpdateCustomer)
	protected.Delete("/customers/:customerName", admin, h.DeleteCustomer)

	// Stock lots
	protected.Post("/stocks", h.CreateStock)
	protected.Get("/stocks", h.GetStocks)
	protected.Get("/stocks/history", h.History(models.HistoryStock))
	protected.Get("/stocks/:lotName", h.GetStock)
	protected.Put("/stocks/:lotName", h.UpdateStock)
	protected.Delete("/stocks/:lotName", admin, h.DeleteStock)

	// Sales
	protected.Post("/sales", h.CreateSale)
	protected.Get("/sales", h.GetSales)
	protected.Get("/sales/history", h.History(models.HistorySales))
	protected.Get("/sales/deleted", h.GetDeletedSales)
	protected.Post("/sales/deleted/:salesId/restore", admin, h.RestoreSale)
	protected.Get("/sales/:salesId", h.GetSale)
	protected.Put("/sales/:salesId", h.UpdateSale)
	protected.Delete("/sales/:salesId", admin, h.DeleteSale)

	// Credits (jamalu)
	protected.Post("/credits", h.CreateCredit)
	protected.Get("/credits", h.GetCredits)
	protected.Get("/credits/history", h.History(models.HistoryCredit))
	protected.Get("/credits/:creditId", h.GetCredit)
	protected.Put("/credits/:creditId", h.UpdateCredit)
	protected.Delete("/credits/:creditId", admin, h.DeleteCredit)

	// Reports
	protected.Get("/reports/kuli", h.KuliReport)
	protected.Get("/reports/sales.xlsx", h.SalesExport)
}
