package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestStaticFallbacks(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>shell</html>"), 0o644)
	os.WriteFile(filepath.Join(dir, "admin.html"), []byte("<html>panel</html>"), 0o644)
	os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log('milk')"), 0o644)

	h := &StaticHandler{Dir: dir}
	router := gin.New()
	router.GET("/panel-milk-admin", h.Admin)
	router.GET("/health", Health)
	router.NoRoute(h.NoRoute)

	tests := []struct {
		method, path string
		status       int
		contains     string
	}{
		{"GET", "/api/milk/nope", http.StatusNotFound, `"error":"Not found"`},
		{"POST", "/api/whatever", http.StatusNotFound, `"error"`},
		{"GET", "/app.js", http.StatusOK, "console.log"},
		{"GET", "/rezerwacja/krok-2", http.StatusOK, "shell"},
		{"GET", "/panel-milk-admin", http.StatusOK, "panel"},
		{"GET", "/health", http.StatusOK, `"status":"ok"`},
		{"DELETE", "/anything", http.StatusNotFound, `"error"`},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		if w.Code != tt.status {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, tt.status, w.Code)
			continue
		}
		if !strings.Contains(w.Body.String(), tt.contains) {
			t.Errorf("%s %s: expected body to contain %q, got %q", tt.method, tt.path, tt.contains, w.Body.String())
		}
	}
}
