package routes

import (
	"github.com/LovationAdmin/superapp-api/handlers"
	"github.com/LovationAdmin/superapp-api/middleware"

	"github.com/gin-gonic/gin"
)

// Dependencies are the long-lived services behind the API, built once in main.
type Dependencies struct {
	Verifier     middleware.TokenVerifier
	Links        handlers.LinkTokenCreator
	Importer     handlers.Importer
	Accounts     handlers.AccountStore
	Transactions handlers.TransactionStore
	Budgets      handlers.BudgetStore
	Categories   handlers.CategoryStore
	Profiles     handlers.ProfileSaver
	Hub          *handlers.Hub
}

// Register mounts every API route on rg (normally /api/v1).
func Register(rg *gin.RouterGroup, d Dependencies) {
	protected := rg.Group("", middleware.AuthMiddleware(d.Verifier))
	perUser := protected.Group("/users/:userId", middleware.RequireSameUser())

	SetupPlaidRoutes(rg, protected, d)
	SetupAccountRoutes(perUser, d)
	SetupTransactionRoutes(protected, perUser, d)
	SetupBudgetRoutes(protected, perUser, d)
	SetupUserRoutes(protected, d)

	rg.GET("/ws", middleware.WebSocketAuth(d.Verifier), d.Hub.HandleWS)
}

// SetupPlaidRoutes: link token creation is public, the exchange needs a user.
func SetupPlaidRoutes(public, protected *gin.RouterGroup, d Dependencies) {
	h := &handlers.PlaidHandler{Links: d.Links, Importer: d.Importer, Notifier: d.Hub}

	public.POST("/plaid/link-token", h.CreateLinkToken)
	protected.POST("/plaid/exchange-token", h.ExchangeToken)
}

func SetupAccountRoutes(perUser *gin.RouterGroup, d Dependencies) {
	h := &handlers.AccountHandler{Accounts: d.Accounts, Importer: d.Importer, Notifier: d.Hub}

	perUser.GET("/accounts", h.ListAccounts)
	perUser.POST("/accounts/sync", h.SyncAccounts)
	perUser.DELETE("/accounts/:accountId", h.UnlinkAccount)
}

// SetupTransactionRoutes: edits by transaction id are scoped to the token user inside the store.
func SetupTransactionRoutes(protected, perUser *gin.RouterGroup, d Dependencies) {
	h := &handlers.TransactionHandler{Transactions: d.Transactions, Notifier: d.Hub}

	perUser.GET("/transactions", h.ListTransactions)
	perUser.POST("/transactions/bulk-category", h.BulkUpdateCategory)

	protected.PUT("/transactions/:id/category", h.UpdateCategory)
	protected.PUT("/transactions/:id/recurring", h.UpdateRecurring)
	protected.PUT("/transactions/:id/manual", h.UpdateManual)
}

func SetupBudgetRoutes(protected, perUser *gin.RouterGroup, d Dependencies) {
	budgets := &handlers.BudgetHandler{Budgets: d.Budgets, Notifier: d.Hub}
	categories := &handlers.CategoryHandler{Categories: d.Categories}

	perUser.GET("/categories", categories.ListCategories)
	perUser.POST("/categories", categories.CreateCategory)

	perUser.GET("/budgets", budgets.GetBudgets)
	perUser.POST("/budgets", budgets.CreateBudget)
	perUser.GET("/insights", budgets.GetInsights)

	protected.PUT("/budgets/:id", budgets.UpdateBudget)
	protected.DELETE("/budgets/:id", budgets.DeleteBudget)
}

func SetupUserRoutes(protected *gin.RouterGroup, d Dependencies) {
	h := &handlers.UserHandler{Profiles: d.Profiles}

	protected.POST("/users/profile", h.SaveProfile)
}
