// Package middleware 存放 Gin 框架的中间件。
package middleware

import (
	"bytes"
	"strings"
	"time"

	"animal-nexus-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// 响应体日志的截断上限。分片上传的应答很小，但资产列表可能较长。
const maxLoggedBody = 2048

// bodyLogWriter 用于捕获响应体
type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write 实现了 io.Writer 接口，将响应写入 gin.ResponseWriter 和一个内部的 buffer
func (w bodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// RequestLogger 是一个 Gin 中间件，用于记录请求和响应日志。
// multipart 请求体是二进制分片，不做捕获；响应体超长时截断。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		// 使用自定义的 ResponseWriter 捕获响应
		blw := &bodyLogWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		// 处理请求
		c.Next()

		latency := time.Since(startTime)

		contentType := c.ContentType()
		requestSize := c.Request.ContentLength
		responseBody := blw.body.String()
		if len(responseBody) > maxLoggedBody {
			responseBody = responseBody[:maxLoggedBody] + "...(truncated)"
		}
		if strings.HasPrefix(contentType, "multipart/") {
			// 分片内容不进日志，只记大小
			log.Infow("HTTP Request Log",
				"statusCode", c.Writer.Status(),
				"latency", latency.String(),
				"clientIP", c.ClientIP(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"requestSize", requestSize,
				"responseBody", responseBody,
			)
			return
		}

		log.Infow("HTTP Request Log",
			"statusCode", c.Writer.Status(),
			"latency", latency.String(),
			"clientIP", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"responseBody", responseBody,
		)
	}
}
