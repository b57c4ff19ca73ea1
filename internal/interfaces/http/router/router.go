package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/himfirm/backend/internal/infrastructure/auth"
	"github.com/himfirm/backend/internal/interfaces/http/handler"
	"github.com/himfirm/backend/internal/interfaces/http/middleware"
)

// Config carries everything the router needs to assemble the HTTP surface
type Config struct {
	Logger         *zap.Logger
	TokenService   *auth.TokenService
	AllowedOrigins []string

	System        *handler.SystemHandler
	Invoice       *handler.InvoiceHandler
	Payment       *handler.PaymentHandler
	Bank          *handler.BankHandler
	PettyCash     *handler.PettyCashHandler
	Expense       *handler.ExpenseHandler
	PurchaseOrder *handler.PurchaseOrderHandler
	Budget        *handler.BudgetHandler
	Commission    *handler.CommissionHandler
	Period        *handler.PeriodHandler
	Dashboard     *handler.DashboardHandler
}

// New builds the gin engine with middleware and all routes wired
func New(cfg Config) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	cfg.System.RegisterRoutes(r)

	api := r.Group("/api/v1")
	api.Use(middleware.Auth(middleware.AuthConfig{TokenService: cfg.TokenService}))
	{
		cfg.Invoice.RegisterRoutes(api)
		cfg.Payment.RegisterRoutes(api)
		cfg.Bank.RegisterRoutes(api)
		cfg.PettyCash.RegisterRoutes(api)
		cfg.Expense.RegisterRoutes(api)
		cfg.PurchaseOrder.RegisterRoutes(api)
		cfg.Budget.RegisterRoutes(api)
		cfg.Commission.RegisterRoutes(api)
		cfg.Period.RegisterRoutes(api)
		cfg.Dashboard.RegisterRoutes(api)
	}

	return r
}
