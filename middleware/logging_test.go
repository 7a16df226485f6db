package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"milk-backend/logging"

	"github.com/gin-gonic/gin"
)

func TestRequestLoggerAttachesLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	base := logging.NewWithWriter(&buf, "info")

	r := gin.New()
	r.Use(RequestLogger(base))
	r.GET("/api/milk/users/:id", func(c *gin.Context) {
		logging.FromContext(c.Request.Context()).Info("inside handler")
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	})

	req := httptest.NewRequest("GET", "/api/milk/users/u1", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") != "abc" {
		t.Error("request id should be echoed")
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}

	var inner, done map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &inner); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &done); err != nil {
		t.Fatal(err)
	}
	if inner["request_id"] != "abc" || inner["path"] != "/api/milk/users/:id" {
		t.Errorf("handler log missing request fields: %v", inner)
	}
	if done["level"] != "WARN" {
		t.Errorf("expected WARN for 404, got %v", done["level"])
	}
	if done["status"] != float64(404) {
		t.Errorf("expected status 404, got %v", done["status"])
	}
}
