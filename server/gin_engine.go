package server

import (
	"github.com/gin-gonic/gin"
)

// NewGinEngine 创建不带默认中间件的 Gin 引擎，由调用方决定中间件顺序与集合。
// environment 为 prod 时切换到 release 模式。
func NewGinEngine(environment string, middlewares ...gin.HandlerFunc) *gin.Engine {
	switch environment {
	case "prod":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	engine := gin.New()
	engine.Use(middlewares...)
	return engine
}
