package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookoutlet/internal/auth"
	"github.com/mrlokans/bookoutlet/internal/demo"
)

// view builds the data every page template expects.
type view struct {
	sessions    *auth.SessionManager
	authEnabled bool
}

func (v view) data(c *gin.Context, title string) gin.H {
	data := gin.H{
		"Title":       title,
		"AuthEnabled": v.authEnabled,
		"Demo":        demo.IsDemo(c),
		"CSRFField":   auth.CSRFTokenField(c),
		"CanWrite":    auth.CanWrite(c),
	}
	if user := auth.CurrentUser(c); user != nil {
		data["Username"] = user.Username
	}
	if v.sessions != nil {
		if msg := v.sessions.PopFlash(c.Request); msg != "" {
			data["Flash"] = msg
		}
	}
	return data
}

// flash stores a message for the next page. Without sessions the message is
// dropped.
func (v view) flash(c *gin.Context, message string) {
	if v.sessions != nil {
		v.sessions.SetFlash(c.Request, message)
	}
}

func (v view) notFound(c *gin.Context, message string) {
	data := v.data(c, "Not Found")
	data["Message"] = message
	c.HTML(http.StatusNotFound, "not_found", data)
}

func (v view) serverError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.HTML(http.StatusInternalServerError, "error", v.data(c, "Server Error"))
}
