package routes

import (
	"milk-backend/database"
	"milk-backend/firebase"
	"milk-backend/handlers"
	"milk-backend/middleware"
	"milk-backend/realtime"

	"github.com/gin-gonic/gin"
)

// Deps carries everything the handlers need. Events defaults to Hub when nil;
// Storage and Limiter are optional.
type Deps struct {
	Store     database.Store
	Hub       *realtime.Hub
	Events    realtime.Publisher
	Storage   firebase.StorageClient
	Limiter   *middleware.RateLimiter
	StaticDir string
	AdminPath string
}

func SetupRoutes(r *gin.Engine, d Deps) {
	events := d.Events
	if events == nil && d.Hub != nil {
		events = d.Hub
	}

	statsHandler := &handlers.StatsHandler{Store: d.Store}
	userHandler := &handlers.UserHandler{Store: d.Store}
	pointsHandler := &handlers.PointsHandler{Store: d.Store}
	rewardHandler := &handlers.RewardHandler{Store: d.Store, Storage: d.Storage}
	orderHandler := &handlers.OrderHandler{Store: d.Store}
	prepaidHandler := &handlers.PrepaidHandler{Store: d.Store}
	reservationHandler := &handlers.ReservationHandler{Store: d.Store, Events: events}
	happyHandler := &handlers.HappyHandler{Store: d.Store, Events: events}
	staticHandler := &handlers.StaticHandler{Dir: d.StaticDir}

	api := r.Group("/api")
	if d.Limiter != nil {
		api.Use(d.Limiter.Middleware())
	}

	milk := api.Group("/milk")
	{
		milk.GET("/stats", statsHandler.GetStats)

		milk.GET("/users", userHandler.ListUsers)
		milk.GET("/users/:id", userHandler.GetUser)

		milk.POST("/points/add", pointsHandler.AddPoints)
		milk.GET("/points/ops", pointsHandler.ListOps)

		milk.GET("/rewards", rewardHandler.ListRewards)
		milk.GET("/rewards/:id", rewardHandler.GetReward)
		milk.POST("/rewards", rewardHandler.CreateReward)
		milk.PUT("/rewards/:id", rewardHandler.UpdateReward)
		milk.DELETE("/rewards/:id", rewardHandler.DeleteReward)
		milk.POST("/rewards/:id/icon", rewardHandler.UploadIcon)

		milk.GET("/orders", orderHandler.ListOrders)
		milk.GET("/orders/:id", orderHandler.GetOrder)
		milk.POST("/orders", orderHandler.CreateOrder)
		milk.PUT("/orders/:id", orderHandler.UpdateOrderStatus)

		// "purchase" is a static segment so it wins over :code
		milk.GET("/prepaid", prepaidHandler.ListCards)
		milk.POST("/prepaid/purchase", prepaidHandler.Purchase)
		milk.GET("/prepaid/:code", prepaidHandler.GetByCode)
		milk.POST("/prepaid/:code/adjust", prepaidHandler.Adjust)
	}

	api.GET("/rezerwacje", reservationHandler.ListReservations)
	api.GET("/rezerwacje/:id", reservationHandler.GetReservation)
	api.POST("/rezerwacje", reservationHandler.CreateReservation)
	api.PUT("/rezerwacje/:id", reservationHandler.UpdateReservation)
	api.DELETE("/rezerwacje/:id", reservationHandler.DeleteReservation)

	api.GET("/happy", happyHandler.GetHappy)
	api.POST("/happy", happyHandler.PostHappy)

	if d.Hub != nil {
		eventsHandler := &handlers.EventsHandler{Hub: d.Hub}
		api.GET("/events", eventsHandler.Stream)
	}

	if d.AdminPath != "" {
		r.GET(d.AdminPath, staticHandler.Admin)
	}
	r.GET("/health", handlers.Health)
	r.NoRoute(staticHandler.NoRoute)
}
