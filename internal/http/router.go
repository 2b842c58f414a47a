package http

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine. global middlewares wrap every route including
// /health; api middlewares wrap the document routes only.
func NewRouter(handler *Handler, env string, global []gin.HandlerFunc, api ...gin.HandlerFunc) *gin.Engine {
	if !strings.EqualFold(env, "development") {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(global...)

	handler.Register(router, api...)
	return router
}
