package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	allowedLanguages = map[string]bool{"en": true, "fr": true}
	allowedChannels  = map[string]bool{"web": true, "mobile": true}
)

// ValidateChannels gates every API route on the lg (language) and ch
// (client channel) headers.
func ValidateChannels() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allowedLanguages[c.GetHeader("lg")] {
			AbortWithError(c, http.StatusBadRequest, "invalid language header")
			return
		}
		if !allowedChannels[c.GetHeader("ch")] {
			AbortWithError(c, http.StatusBadRequest, "invalid channel header")
			return
		}
		c.Set("lg", c.GetHeader("lg"))
		c.Set("ch", c.GetHeader("ch"))
		c.Next()
	}
}
