package middleware

import (
	"fmt"
	"sync"
	"time"
)

// ==================== CooldownLimiter 冷却限流器 ====================

// CooldownLimiter 冷却限流器
// 同一个 key 在冷却间隔内只允许执行一次，防止频繁触发模型调用
type CooldownLimiter struct {
	locks sync.Map // key -> *lockEntry
	now   func() time.Time
}

// lockEntry 锁条目
type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// NewCooldownLimiter 创建限流器
func NewCooldownLimiter() *CooldownLimiter {
	return &CooldownLimiter{now: time.Now}
}

// ==================== 限流检查 ====================

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查是否允许执行，允许时更新最后执行时间
// key: 限流键，如 "generate:127.0.0.1"
func (r *CooldownLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := r.now()
	elapsed := now.Sub(entry.lastTime)

	if !entry.lastTime.IsZero() && elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 重置指定 key 的限流
func (r *CooldownLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// Sweep 清理超过 maxAge 未活动的条目，返回清理数量
func (r *CooldownLimiter) Sweep(maxAge time.Duration) int {
	cutoff := r.now().Add(-maxAge)
	removed := 0
	r.locks.Range(func(key, value any) bool {
		entry := value.(*lockEntry)
		entry.mu.Lock()
		stale := entry.lastTime.Before(cutoff)
		entry.mu.Unlock()
		if stale {
			r.locks.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// ==================== Key 生成工具 ====================

// ActionType 限流动作类型
type ActionType string

const (
	ActionGenerate      ActionType = "generate"
	ActionGenerateText  ActionType = "generate_text"
	ActionGenerateImage ActionType = "generate_image"
)

// ClientKey 生成客户端级限流 Key
func ClientKey(clientIP string, action ActionType) string {
	return fmt.Sprintf("%s:%s", action, clientIP)
}
