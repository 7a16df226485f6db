package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"sync"
	"testing"
	"time"

	"milk-backend/database"
	"milk-backend/models"
	"milk-backend/realtime"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	testDB    *gorm.DB
	testStore database.Store
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	var err error
	testDB, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}
	// a shared in-memory database disappears with its last connection
	sqlDB, _ := testDB.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(testDB); err != nil {
		panic("failed to migrate test database: " + err.Error())
	}
	testStore = database.NewGormStore(testDB)

	code := m.Run()
	os.Exit(code)
}

// freshStore returns the shared store with every table emptied.
func freshStore() database.Store {
	testDB.Exec("DELETE FROM points_operations")
	testDB.Exec("DELETE FROM users")
	testDB.Exec("DELETE FROM rewards")
	testDB.Exec("DELETE FROM orders")
	testDB.Exec("DELETE FROM prepaid_cards")
	testDB.Exec("DELETE FROM reservations")
	testDB.Exec("DELETE FROM happy_messages")
	return testStore
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev realtime.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, len(p.events))
	for i, ev := range p.events {
		names[i] = ev.Name
	}
	return names
}

func seedUser(store database.Store, id string, points int, email string) models.User {
	user, err := store.UpsertUser(context.Background(), id, func(u *models.User) error {
		u.Points = points
		if email != "" {
			name := "Ala Kowalska"
			u.Email = &email
			u.Name = &name
		}
		return nil
	})
	if err != nil {
		panic("failed to seed user: " + err.Error())
	}
	return user
}

func seedReward(store database.Store, title string, cost int, icon string) models.Reward {
	reward := models.Reward{
		ID:        uuid.New().String(),
		Title:     title,
		Cost:      cost,
		Icon:      icon,
		CreatedAt: models.Now(),
	}
	if err := store.CreateReward(context.Background(), &reward); err != nil {
		panic("failed to seed reward: " + err.Error())
	}
	return reward
}

func seedOrder(store database.Store, status string, userID *string) models.Order {
	order := models.Order{
		ID:        uuid.New().String(),
		Items:     []models.OrderItem{{Title: "Shake waniliowy", Quantity: 1, Price: 18}},
		Total:     18,
		Status:    status,
		UserID:    userID,
		CreatedAt: models.Now(),
	}
	if err := store.CreateOrder(context.Background(), &order); err != nil {
		panic("failed to seed order: " + err.Error())
	}
	return order
}

func seedCard(store database.Store, code string, value, bonus float64) models.PrepaidCard {
	card := models.NewPrepaidCard(code, "Karta", value, bonus, nil, models.Now())
	if err := store.CreatePrepaid(context.Background(), &card); err != nil {
		panic("failed to seed card: " + err.Error())
	}
	return card
}

func seedReservation(store database.Store, name, milkID string) models.Reservation {
	reservation := models.Reservation{
		ID:        uuid.New().String(),
		Name:      name,
		Phone:     "500600700",
		Date:      "2026-11-01",
		Time:      "18:00",
		Guests:    2,
		Room:      "Sala główna",
		MilkID:    milkID,
		Source:    models.ReservationSource("", milkID),
		CreatedAt: models.Now(),
	}
	if err := store.CreateReservation(context.Background(), &reservation); err != nil {
		panic("failed to seed reservation: " + err.Error())
	}
	return reservation
}

func setupMilkRouter(store database.Store) *gin.Engine {
	r := gin.New()
	stats := &StatsHandler{Store: store}
	users := &UserHandler{Store: store}
	points := &PointsHandler{Store: store}
	orders := &OrderHandler{Store: store}
	prepaid := &PrepaidHandler{Store: store}

	milk := r.Group("/api/milk")
	milk.GET("/stats", stats.GetStats)
	milk.GET("/users", users.ListUsers)
	milk.GET("/users/:id", users.GetUser)
	milk.POST("/points/add", points.AddPoints)
	milk.GET("/points/ops", points.ListOps)
	milk.GET("/orders", orders.ListOrders)
	milk.GET("/orders/:id", orders.GetOrder)
	milk.POST("/orders", orders.CreateOrder)
	milk.PUT("/orders/:id", orders.UpdateOrderStatus)
	milk.GET("/prepaid", prepaid.ListCards)
	milk.POST("/prepaid/purchase", prepaid.Purchase)
	milk.GET("/prepaid/:code", prepaid.GetByCode)
	milk.POST("/prepaid/:code/adjust", prepaid.Adjust)
	return r
}

func setupRewardRouter(store database.Store, storage *mockStorage) *gin.Engine {
	r := gin.New()
	h := &RewardHandler{Store: store}
	if storage != nil {
		h.Storage = storage
	}
	rewards := r.Group("/api/milk/rewards")
	rewards.GET("", h.ListRewards)
	rewards.GET("/:id", h.GetReward)
	rewards.POST("", h.CreateReward)
	rewards.PUT("/:id", h.UpdateReward)
	rewards.DELETE("/:id", h.DeleteReward)
	rewards.POST("/:id/icon", h.UploadIcon)
	return r
}

func setupReservationRouter(store database.Store, events realtime.Publisher) *gin.Engine {
	r := gin.New()
	h := &ReservationHandler{Store: store, Events: events}
	happy := &HappyHandler{Store: store, Events: events}

	r.GET("/api/rezerwacje", h.ListReservations)
	r.GET("/api/rezerwacje/:id", h.GetReservation)
	r.POST("/api/rezerwacje", h.CreateReservation)
	r.PUT("/api/rezerwacje/:id", h.UpdateReservation)
	r.DELETE("/api/rezerwacje/:id", h.DeleteReservation)
	r.GET("/api/happy", happy.GetHappy)
	r.POST("/api/happy", happy.PostHappy)
	return r
}

func jsonRequest(method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// rawRequest sends body as-is, for payloads json.Encoder cannot produce.
func rawRequest(method, url, body string) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest builds a form with one file part named field.
func multipartRequest(method, url, field, filename, contentType string, data []byte) *http.Request {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := writer.CreatePart(h)
	if err != nil {
		panic("failed to create multipart file part: " + err.Error())
	}
	part.Write(data)
	writer.Close()

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func parseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

func parseResponseArray(w *httptest.ResponseRecorder) []interface{} {
	var result []interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// tick keeps consecutive creates apart so newest-first ordering is stable.
func tick() {
	time.Sleep(2 * time.Millisecond)
}
