package handlers

import (
	"net/http"
	"time"

	"gym_manager/internal/metrics"
	"gym_manager/internal/middleware"
	"gym_manager/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	Users          middleware.AdminUsers

	Members       *MemberHandler
	Plans         *PlanHandler
	Payments      *PaymentHandler
	Cafe          *CafeHandler
	Notifications *NotificationHandler
	Accounts      *UserHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), metrics.Middleware())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.AdminHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(middleware.Timeout(cfg.RequestTimeout), middleware.AdminIdentity(cfg.Users))
	// Staff run the front desk; removing records and managing accounts needs
	// a manager.
	managers := middleware.RequireRole(models.SuperAdmin, models.Admin)
	{
		m := cfg.Members
		api.POST("/members", m.Enroll)
		api.GET("/members", m.ListMembers)
		api.GET("/members/code/:code", m.GetMemberByCode)
		api.GET("/members/:id", m.GetMember)
		api.PUT("/members/:id", m.UpdateProfile)
		api.PATCH("/members/:id/status", m.SetStatus)
		api.POST("/members/:id/renew", m.Renew)
		api.DELETE("/members/:id", managers, m.DeleteMember)
		api.GET("/members/:id/history", m.GetHistory)
		api.GET("/members/:id/payments", m.GetPayments)

		p := cfg.Plans
		api.POST("/plans", p.CreatePlan)
		api.GET("/plans", p.ListPlans)
		api.GET("/plans/active", p.ListActivePlans)
		api.POST("/plans/bulk", managers, p.BulkAction)
		api.GET("/plans/:id", p.GetPlan)
		api.PUT("/plans/:id", p.UpdatePlan)
		api.DELETE("/plans/:id", managers, p.DeletePlan)
		api.POST("/plans/:id/duplicate", p.DuplicatePlan)

		pay := cfg.Payments
		api.POST("/payments", pay.RecordPayment)
		api.GET("/payments", pay.ListPayments)
		api.GET("/payments/:id", pay.GetPayment)

		cafe := cfg.Cafe
		api.POST("/cafe/products", cafe.CreateProduct)
		api.GET("/cafe/products", cafe.ListProducts)
		api.GET("/cafe/products/:id", cafe.GetProduct)
		api.PUT("/cafe/products/:id", cafe.UpdateProduct)
		api.DELETE("/cafe/products/:id", managers, cafe.DeleteProduct)
		api.POST("/cafe/products/:id/restock", cafe.Restock)
		api.POST("/cafe/orders", cafe.PlaceOrder)
		api.GET("/cafe/orders", cafe.ListOrders)
		api.GET("/cafe/orders/:id", cafe.GetOrder)
		api.POST("/cafe/orders/:id/cancel", cafe.CancelOrder)

		n := cfg.Notifications
		api.POST("/notifications/sms", n.SendSMS)
		api.POST("/notifications/broadcast", n.Broadcast)
		api.GET("/notifications/broadcast/:id", n.BroadcastStatus)
		api.GET("/notifications/logs", n.GetLogs)
		api.GET("/notifications", n.GetNotifications)
		api.PATCH("/notifications/:id/read", n.MarkRead)
		api.POST("/notifications/expiry/run", n.RunExpiryCheck)

		if u := cfg.Accounts; u != nil {
			api.GET("/users", managers, u.ListUsers)
			api.POST("/users", middleware.RequireRole(models.SuperAdmin), u.CreateUser)
		}
	}

	return router
}
