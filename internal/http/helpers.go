package http

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound answers 404 with "<resource> not found".
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs err with where it happened and hides it from the client.
func respondInternalError(c *gin.Context, err error, where string) {
	log.Printf("Internal error (%s): %v", where, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// parseID accepts positive record IDs only.
func parseID(value string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseIDParam reads a record ID from the route. It does not respond on
// failure; callers decide between a 404 page and a JSON error.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	return parseID(c.Param(name))
}

// parseOptionalID reads an ID from a form or query value where blank means
// "none", as for a book without an author.
func parseOptionalID(value string) (*uint, bool) {
	if strings.TrimSpace(value) == "" {
		return nil, true
	}
	id, ok := parseID(value)
	if !ok {
		return nil, false
	}
	return &id, true
}

func isAPIPath(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}
