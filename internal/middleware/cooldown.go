package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 生成限流中间件 ====================

// Cooldown 生成接口限流中间件
// 按客户端 IP + 动作类型维度限流，interval 为 0 时不限流
// 请求失败 (4xx/5xx) 时不计入冷却，客户端可立即重试
//
// 使用示例:
//
//	campaigns.POST("/generate",
//	    middleware.Cooldown(limiter, middleware.ActionGenerate, cfg.Server.GenerateCooldown),
//	    campaignCtl.Generate,
//	)
func Cooldown(limiter *CooldownLimiter, action ActionType, interval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if interval <= 0 || limiter == nil {
			c.Next()
			return
		}

		key := ClientKey(c.ClientIP(), action)
		result := limiter.Check(key, interval)
		if !result.Allowed {
			retryAfter := int(math.Ceil(result.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       formatRetryMessage(result.RetryAfter),
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			limiter.Reset(key)
		}
	}
}

// ==================== 辅助函数 ====================

// formatRetryMessage 格式化重试提示信息
func formatRetryMessage(d time.Duration) string {
	seconds := int(math.Ceil(d.Seconds()))

	if seconds < 60 {
		return fmt.Sprintf("生成冷却中，请 %d 秒后重试", seconds)
	}

	minutes := seconds / 60
	remainingSeconds := seconds % 60
	if remainingSeconds == 0 {
		return fmt.Sprintf("生成冷却中，请 %d 分钟后重试", minutes)
	}
	return fmt.Sprintf("生成冷却中，请 %d 分 %d 秒后重试", minutes, remainingSeconds)
}
