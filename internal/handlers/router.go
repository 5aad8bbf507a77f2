package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"taxledger/internal/middleware"
	"taxledger/internal/models"
	"taxledger/internal/services"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Transactions services.TransactionServicer
	Attachments  services.AttachmentServicer
	Categories   services.CategoryServicer
	Summary      services.SummaryServicer
	Invoices     services.InvoiceServicer
	Export       services.ExportServicer
	Settings     services.SettingsServicer
	Audit        services.AuditServicer
}

// NewRouter builds the gin engine. An empty authSecret leaves the API open.
func NewRouter(svc Services, authSecret []byte) *gin.Engine {
	transactionHandler := NewTransactionHandler(svc.Transactions, svc.Audit)
	attachmentHandler := NewAttachmentHandler(svc.Attachments, svc.Audit)
	categoryHandler := NewCategoryHandler(svc.Categories, svc.Audit)
	summaryHandler := NewSummaryHandler(svc.Summary)
	invoiceHandler := NewInvoiceHandler(svc.Invoices, svc.Audit)
	exportHandler := NewExportHandler(svc.Export, svc.Audit)
	settingsHandler := NewSettingsHandler(svc.Settings, svc.Audit)
	auditHandler := NewAuditHandler(svc.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(authSecret))

	for _, ledger := range []struct {
		path   string
		txType models.TransactionType
	}{
		{"/income", models.TransactionTypeIncome},
		{"/expenses", models.TransactionTypeExpense},
	} {
		g := v1.Group(ledger.path, withLedger(ledger.txType))
		g.POST("", transactionHandler.CreateTransaction)
		g.GET("", transactionHandler.ListTransactions)
		g.GET("/:id", transactionHandler.GetTransaction)
		g.PUT("/:id", transactionHandler.UpdateTransaction)
		g.DELETE("/:id", transactionHandler.DeleteTransaction)
		g.DELETE("/:id/attachments/:attachment_id", transactionHandler.RemoveAttachment)
	}

	attachments := v1.Group("/attachments")
	attachments.POST("", attachmentHandler.UploadAttachment)
	attachments.GET("/files/:name", attachmentHandler.DownloadAttachment)
	attachments.GET("/archive", attachmentHandler.DownloadArchive)
	attachments.POST("/export", attachmentHandler.ExportReceipts)

	categories := v1.Group("/categories/:type")
	categories.GET("", categoryHandler.ListCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("/:id/usage", categoryHandler.GetCategoryUsage)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	v1.GET("/summary", summaryHandler.GetSummary)
	v1.GET("/summary/years", summaryHandler.ListYears)

	v1.POST("/invoices", invoiceHandler.CreateInvoice)

	v1.GET("/export/xlsx", exportHandler.ExportXLSX)
	v1.GET("/export/csv", exportHandler.ExportCSV)

	v1.GET("/settings/theme", settingsHandler.GetTheme)
	v1.PUT("/settings/theme", settingsHandler.SetTheme)

	v1.GET("/audit-logs", auditHandler.ListAuditLogs)

	return router
}
