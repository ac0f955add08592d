package middleware

import (
	"cityportal/i18n"
	"cityportal/utils"

	"github.com/gin-gonic/gin"
)

// LocaleMiddleware resolves the response language from ?lang=, then Accept-Language.
func LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tag, ok := i18n.Parse(c.Query(i18n.LangParam))
		if !ok {
			tag = i18n.MatchAccept(c.GetHeader("Accept-Language"))
		}
		c.Set(utils.CtxLang, tag)
		c.Header("Content-Language", i18n.Code(tag))
		c.Next()
	}
}
