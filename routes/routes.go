package routes

import (
	"log/slog"
	"time"

	"tableorder-backend/config"
	"tableorder-backend/controllers"
	"tableorder-backend/services"
	"tableorder-backend/store"
	"tableorder-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps are the services the router wires into controllers.
type Deps struct {
	Store         store.Store
	Auth          *services.AuthService
	Menu          *services.MenuService
	Orders        *services.OrderService
	Dashboard     *services.DashboardService
	ClientBaseURL string
	CORSOrigins   []string
	Logger        *slog.Logger
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(config.PerformanceLogger(d.Logger))

	authController := controllers.NewAuthController(d.Auth, d.Logger)
	menuController := controllers.NewMenuController(d.Menu, d.Logger)
	orderController := controllers.NewOrderController(d.Orders, d.Logger)
	dashboardController := controllers.NewDashboardController(d.Dashboard, d.Logger)
	tableController := controllers.NewTableController(d.ClientBaseURL, d.Logger)
	healthController := controllers.NewHealthController(d.Store, d.Logger)

	requireManager := utils.AuthMiddleware(d.Auth)

	r.GET("/health", healthController.Health)

	api := r.Group("/api")

	manager := api.Group("/manager")
	{
		manager.POST("/register", authController.Register)
		manager.POST("/login", authController.Login)
		manager.GET("/profile", requireManager, authController.Profile)
		manager.GET("/dashboard", requireManager, dashboardController.GetDashboardOverview)
	}

	menu := api.Group("/menu")
	{
		menu.GET("", menuController.GetMenu)
		menu.GET("/all", requireManager, menuController.GetAllMenuItems)
		menu.GET("/:id", menuController.GetMenuItem)
		menu.POST("", requireManager, menuController.CreateMenuItem)
		menu.PUT("/:id", requireManager, menuController.UpdateMenuItem)
		menu.DELETE("/:id", requireManager, menuController.DeleteMenuItem)
		menu.PATCH("/:id/toggle", requireManager, menuController.ToggleAvailability)
	}

	// Order routes stay public: tables order without an account and the
	// kitchen board has no manager session.
	orders := api.Group("/orders")
	{
		orders.POST("", orderController.CreateOrder)
		orders.GET("", orderController.GetOrders)
		orders.GET("/table/:tableNumber", orderController.GetOrdersByTable)
		orders.GET("/:orderId", orderController.GetOrder)
		orders.PATCH("/:orderId/status", orderController.UpdateOrderStatus)
	}

	api.GET("/tables/links", requireManager, tableController.GetTableLinks)

	return r
}
