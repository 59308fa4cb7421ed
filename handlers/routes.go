package handlers

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers every endpoint on router.
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)

	adminAuth := []gin.HandlerFunc{h.AuthMiddleware(), h.AdminMiddleware()}

	router.POST("/admin/login", h.AdminLogin)
	router.GET("/admin", append(adminAuth, h.AdminDashboard)...)
	router.GET("/admin/me", append(adminAuth, h.AdminMe)...)

	api := router.Group("/api/v1")
	{
		products := api.Group("/products")
		{
			products.GET("", h.GetProducts)
			products.GET("/:id", h.GetProduct)
		}

		api.GET("/completed-jobs", h.GetCompletedJobs)

		cart := api.Group("/cart")
		{
			cart.GET("", h.GetCart)
			cart.POST("/items", h.AddToCart)
			cart.DELETE("/items/:id", h.RemoveFromCart)
			cart.DELETE("", h.ClearCart)
		}

		api.POST("/orders/checkout", h.Checkout)

		api.GET("/feedback", h.GetTestimonials)
		api.POST("/feedback", h.SubmitFeedback)
		api.POST("/contact", h.SubmitContact)
		api.GET("/settings/contact-email", h.GetContactEmail)

		push := api.Group("/push")
		{
			push.GET("/public-key", h.GetPushPublicKey)
			push.POST("/subscribe", h.PushSubscribe)
			push.POST("/unsubscribe", h.PushUnsubscribe)
		}

		api.GET("/admin/orders/feed", h.WebsocketAuthMiddleware(), h.AdminMiddleware(), h.OrderFeed)

		admin := api.Group("/admin")
		admin.Use(adminAuth...)
		{
			admin.GET("/dashboard", h.AdminDashboard)

			admin.GET("/products", h.GetAdminProducts)
			admin.GET("/products/export", h.ExportProducts)
			admin.POST("/products/import", h.ImportProducts)
			admin.GET("/products/:id", h.GetAdminProduct)
			admin.POST("/products", h.CreateProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)

			admin.GET("/completed-jobs", h.GetAdminCompletedJobs)
			admin.POST("/completed-jobs", h.CreateCompletedJob)
			admin.PUT("/completed-jobs/:id", h.UpdateCompletedJob)
			admin.DELETE("/completed-jobs/:id", h.DeleteCompletedJob)

			admin.POST("/uploads", h.UploadImage)

			admin.GET("/orders", h.GetAdminOrders)
			admin.GET("/orders/:id", h.GetAdminOrder)
			admin.PUT("/orders/:id/status", h.UpdateOrderStatus)
			admin.POST("/orders/:id/resend-email", h.ResendOrderEmail)

			admin.GET("/feedback", h.GetAdminFeedback)
			admin.DELETE("/feedback/:id", h.DeleteFeedback)

			admin.GET("/contact-submissions", h.GetContactSubmissions)
			admin.PUT("/settings/contact-email", h.UpdateContactEmail)

			admin.POST("/push/send", h.SendPushNotification)
		}
	}
}
