package http

import (
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/scorchos/site/internal/shared/id"
)

const maxSlugLen = 64

// slugPattern allows lowercase letters, digits and dashes.
var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// viewCookie returns the visitor's view id if the cookie holds a valid one.
func viewCookie(c *gin.Context) (id.ViewID, bool) {
	value, err := c.Cookie(ViewCookie)
	if err != nil || !id.HasPrefix(value, id.ViewPrefix) {
		return "", false
	}
	return id.ViewID(value), true
}

// validSlug reports whether s can name a case study.
func validSlug(s string) bool {
	return len(s) <= maxSlugLen && slugPattern.MatchString(s)
}
