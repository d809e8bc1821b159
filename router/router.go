package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-dashboard/controllers"
	"github.com/yeremiapane/restaurant-dashboard/kds"
	"github.com/yeremiapane/restaurant-dashboard/middlewares"
	"github.com/yeremiapane/restaurant-dashboard/services"
)

// Options -> dependency dan pengaturan router
type Options struct {
	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int
}

func SetupRouter(orders *services.OrderService, hub *kds.Hub, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(opts.AllowedOrigins))
	r.Use(middlewares.LoggerMiddleware())
	if opts.RateLimit > 0 {
		r.Use(middlewares.NewRateLimiter(opts.RateLimit, opts.RateBurst).RateLimit())
	}

	orderCtrl := controllers.NewOrderController(orders)
	tokenCtrl := controllers.NewKitchenTokenController(orders)
	billCtrl := controllers.NewBillController(orders)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Push channel untuk semua dashboard
	r.GET("/ws", controllers.KDSHandler(hub, originChecker(opts.AllowedOrigins)))

	api := r.Group("/api")
	{
		api.GET("/orders", orderCtrl.GetAllOrders)
		api.POST("/orders", orderCtrl.CreateOrder)
		api.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		api.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)

		api.GET("/kitchen-tokens", tokenCtrl.GetAllKitchenTokens)

		api.GET("/bills", billCtrl.GetAllBills)
		api.POST("/bills/:bill_id/pay", billCtrl.PayBill)
	}

	return r
}

// originChecker -> izinkan tanpa Origin (client non-browser) atau origin yang terdaftar
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}
