package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// StaticHandler serves the customer shell and the staff panel out of Dir.
type StaticHandler struct {
	Dir string
}

func (h *StaticHandler) Admin(c *gin.Context) {
	c.File(filepath.Join(h.Dir, "admin.html"))
}

// NoRoute answers unknown API paths with JSON and everything else with a
// static asset or, failing that, the client shell.
func (h *StaticHandler) NoRoute(c *gin.Context) {
	p := c.Request.URL.Path
	if p == "/api" || strings.HasPrefix(p, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	file := filepath.Join(h.Dir, filepath.FromSlash(path.Clean("/"+p)))
	if info, err := os.Stat(file); err == nil && !info.IsDir() {
		c.File(file)
		return
	}
	c.File(filepath.Join(h.Dir, "index.html"))
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
