package api

import (
	"log"
	stdhttp "net/http"

	intconfig "annexe9-backend/internal/config"
	h "annexe9-backend/internal/http/handlers"
	"annexe9-backend/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	middleware.SetJWTSecret(env.JWTSecret)
	h.SetPublicBaseURL(env.PublicBaseURL)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route inconnue",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	// Public signature page endpoints, token in the URL is the only auth.
	public := r.Group("/public")
	{
		public.GET("/signature/:token", h.PublicSignatureView)
		public.POST("/signature/:token", h.PublicSignatureSubmit)
	}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		auth := api.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)

		staff := api.Group("")
		staff.Use(middleware.RequireAuth())

		orders := staff.Group("/orders")
		orders.GET("", h.ListOrders)
		orders.POST("", h.CreateOrder)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id", h.UpdateOrder)
		orders.DELETE("/:id", h.DeleteOrder)
		orders.POST("/:id/duplicate", h.DuplicateOrder)
		orders.POST("/:id/signature-link", h.IssueSignatureLink)
		orders.GET("/:id/signature-status", h.SignatureStatus)

		// PDF routes also accept ?token= so generated links open in a browser.
		orders.GET("/:id/pdf", h.DownloadOrderPDF)
		orders.GET("/:id/pdf/preview", h.PreviewOrderPDF)
		orders.POST("/:id/pdf", h.GenerateOrderPDF)

		clients := staff.Group("/clients")
		clients.GET("", h.ListClients)
		clients.POST("", h.CreateClient)
		clients.GET("/:id", h.GetClient)
		clients.PUT("/:id", h.UpdateClient)
		clients.DELETE("/:id", h.DeleteClient)

		staff.GET("/operator-config", h.GetOperatorConfig)
		staff.PUT("/operator-config", middleware.RequireStaff(), h.UpdateOperatorConfig)
	}

	h.SetRouter(r)
	return r
}
