package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taxiops-finance-core/internal/api/handler"
	"github.com/taxiops-finance-core/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	accountHandler *handler.AccountHandler,
	transactionHandler *handler.TransactionHandler,
	payableHandler *handler.PayableHandler,
	pettyCashHandler *handler.PettyCashHandler,
	splitHandler *handler.SplitHandler,
	costsHandler *handler.CostsHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.ActorIdentity())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Account operations
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", accountHandler.Create)
			accounts.GET("", accountHandler.List)
			accounts.GET("/:id", accountHandler.GetByID)
			accounts.POST("/:id/verify", accountHandler.ClearUnverified)
			accounts.GET("/:id/transactions", transactionHandler.GetByAccountID)
		}

		// Transaction operations
		transactions := v1.Group("/transactions")
		{
			transactions.POST("", transactionHandler.Create)
			transactions.GET("/:id", transactionHandler.GetByID)
			transactions.PUT("/:id", transactionHandler.Update)
			transactions.DELETE("/:id", transactionHandler.Delete)
		}

		// Payable records and their payments
		payables := v1.Group("/payables")
		{
			payables.POST("", payableHandler.Create)
			payables.GET("", payableHandler.List)
			payables.GET("/:id", payableHandler.GetByID)
			payables.DELETE("/:id", payableHandler.Delete)
			payables.POST("/:id/payments", payableHandler.AddPayment)
			payables.DELETE("/:id/payments/:paymentId", payableHandler.RemovePayment)
		}

		// Petty cash ledger
		pettycash := v1.Group("/pettycash")
		{
			pettycash.POST("", pettyCashHandler.Create)
			pettycash.GET("", pettyCashHandler.List)
			pettycash.DELETE("/:id", pettyCashHandler.Delete)
		}

		// Profit splits
		splits := v1.Group("/splits")
		{
			splits.POST("/preview", splitHandler.Preview)
			splits.POST("", splitHandler.Create)
			splits.GET("", splitHandler.List)
			splits.GET("/:id", splitHandler.GetByID)
			splits.PUT("/:id", splitHandler.Update)
			splits.DELETE("/:id", splitHandler.Delete)
		}

		// Cost quoting
		v1.POST("/costs/quote", costsHandler.Quote)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
