// Package server assembles the HTTP API: middleware order, route table and
// operator endpoints.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "cashtrackr/internal/docs" // Import swagger docs
	"cashtrackr/internal/handlers"
	"cashtrackr/internal/logger"
	"cashtrackr/internal/metrics"
	"cashtrackr/internal/middleware"
	"cashtrackr/internal/ratelimit"
	"cashtrackr/internal/services"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	FrontendURL   string
	MetricsAPIKey string

	Sessions middleware.SessionVerifier
	Users    services.UserServicer
	Auth     services.AuthServicer
	Budgets  services.BudgetServicer
	Expenses services.ExpenseServicer
	Audit    services.AuditServicer

	Limiter ratelimit.Limiter
	Metrics *metrics.Metrics
	DB      Pinger
}

// NewRouter builds the Gin engine serving every route under /api plus the
// health, metrics and swagger endpoints.
func NewRouter(d Deps) *gin.Engine {
	authHandler := handlers.NewAuthHandler(d.Auth, d.Audit)
	budgetHandler := handlers.NewBudgetHandler(d.Budgets, d.Audit)
	expenseHandler := handlers.NewExpenseHandler(d.Expenses, d.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Metrics(d.Metrics))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(d.FrontendURL))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus scrape endpoint
	router.GET("/metrics", middleware.APIKey(d.MetricsAPIKey), gin.WrapH(d.Metrics.Handler()))

	api := router.Group("/api")

	// Health check endpoint
	api.GET("/health", healthHandler(d.DB))

	authenticate := middleware.Authenticate(d.Sessions, d.Users)
	limit := middleware.RateLimit(d.Limiter, d.Metrics)

	// Auth routes; all but the profile lookup are rate limited
	auth := api.Group("/auth")
	auth.POST("/create-account", limit, authHandler.CreateAccount)
	auth.POST("/confirm-account", limit, authHandler.ConfirmAccount)
	auth.POST("/login", limit, authHandler.Login)
	auth.POST("/forgot-password", limit, authHandler.ForgotPassword)
	auth.POST("/validate-token", limit, authHandler.ValidateToken)
	auth.POST("/reset-password/:token", limit, authHandler.ResetPassword)
	auth.GET("/user", authenticate, authHandler.GetUser)
	auth.POST("/update-password", limit, authenticate, authHandler.UpdatePassword)
	auth.POST("/check-password", limit, authenticate, authHandler.CheckPassword)

	// Budget routes
	budgets := api.Group("/budgets", authenticate)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.POST("", budgetHandler.CreateBudget)

	// A budget is validated, loaded and checked for ownership, in that order
	budget := budgets.Group("/:"+middleware.BudgetIDParam,
		middleware.ValidateBudgetID(),
		middleware.BudgetExists(d.Budgets),
		middleware.HasAccess(),
	)
	budget.GET("", budgetHandler.GetBudget)
	budget.PUT("", budgetHandler.UpdateBudget)
	budget.DELETE("", budgetHandler.DeleteBudget)

	// Expense routes
	budget.GET("/expenses", expenseHandler.GetExpenses)
	budget.POST("/expenses", expenseHandler.CreateExpense)

	expense := budget.Group("/expenses/:"+middleware.ExpenseIDParam,
		middleware.ValidateExpenseID(),
		middleware.ExpenseExists(d.Expenses),
	)
	expense.GET("", expenseHandler.GetExpense)
	expense.PUT("", expenseHandler.UpdateExpense)
	expense.DELETE("", expenseHandler.DeleteExpense)

	return router
}

func healthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				logger.Get().Errorw("health check failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
