// Package handlers 放置各路由處理器共用的回應工具。
package handlers

import (
	"ingredient-parser/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondError 以統一格式回應錯誤並中止後續處理
func RespondError(c *gin.Context, e *common.CustomError, debug bool) {
	fields := []zap.Field{
		zap.String("code", e.Code),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", RequestID(c)),
	}
	if e.Err != nil {
		fields = append(fields, zap.Error(e.Err))
	}
	if e.Status >= 500 {
		common.LogError(e.Message, fields...)
	} else {
		common.LogWarn(e.Message, fields...)
	}

	c.AbortWithStatusJSON(e.Status, e.ToResponse(debug))
}

// RequestID 取得本次請求的 ID
func RequestID(c *gin.Context) string {
	if id := requestid.Get(c); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}
