package middlewares

import "github.com/gin-gonic/gin"

// NoStore disables caching on every response. Clients poll the list
// endpoints for freshness; a proxy or CDN serving a stale body would
// silently desynchronize them from concurrent edits, so this is a
// correctness requirement rather than a tuning knob.
func NoStore() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Header("Cache-Control", "no-store, no-cache, must-revalidate")
		ctx.Header("Pragma", "no-cache")
		ctx.Header("Expires", "0")
		ctx.Next()
	}
}
