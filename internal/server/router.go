package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ybotello/finstream-backend/internal/handlers"
)

type RouterConfig struct {
	TransactionHandler *handlers.TransactionHandler
	SummaryHandler     *handlers.SummaryHandler
	AggregationHandler *handlers.AggregationHandler
	AllowOrigins       []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Performed-By"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/aggregate", cfg.AggregationHandler.Trigger)

		api.POST("/transactions", cfg.TransactionHandler.Create)
		api.GET("/transactions/:id", cfg.TransactionHandler.GetByID)
		api.PUT("/transactions/:id", cfg.TransactionHandler.Update)
		api.DELETE("/transactions/:id", cfg.TransactionHandler.Delete)
		api.GET("/transactions/:id/audit", cfg.TransactionHandler.GetAuditHistory)

		api.GET("/customers/:customerId/transactions", cfg.TransactionHandler.ListByCustomer)
		api.GET("/customers/:customerId/summary", cfg.SummaryHandler.GetCustomerSummary)
	}

	return router
}
