package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/luckguide/luckguide-golang/internal/i18n"
)

// LocaleMiddleware resolves the request language (?lang= wins over the
// Accept-Language header) and threads it through the request context.
// The language lives on the context only, never in a package variable.
func LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var lang i18n.Lang
		if q := c.Query("lang"); q != "" {
			lang = i18n.Parse(q)
		} else {
			lang = i18n.FromLanguageCode(c.GetHeader("Accept-Language"))
		}
		c.Request = c.Request.WithContext(i18n.WithLang(c.Request.Context(), lang))
		c.Next()
	}
}
