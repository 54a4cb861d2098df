package msgrate

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/graphstream/pkg/lib/log"
)

var logger = log.Logger("core/msgrate")

// ============================================================================
//                              配置
// ============================================================================

// Config 是限速器配置
type Config struct {
	// Limit 是每个 Window 允许发送的消息数
	Limit int
	// Window 是速率窗口的时长
	Window time.Duration
}

// DefaultConfig 返回 §6.4 的默认值：60 条 / 1000ms
func DefaultConfig() Config {
	return Config{Limit: 60, Window: time.Second}
}

func (c Config) rate() float64 {
	if c.Window <= 0 {
		return float64(c.Limit)
	}
	return float64(c.Limit) / c.Window.Seconds()
}

// ============================================================================
//                              Limiter
// ============================================================================

// Limiter 是一个令牌桶：容量等于 Config.Limit，按 Config.Limit/Config.Window
// 的速率补充。Allow 是非阻塞探测；Wait 阻塞到有令牌或 ctx 取消。
type Limiter struct {
	mu     sync.Mutex
	cfg    Config
	clock  clock.Clock
	tokens float64
	last   time.Time
}

// NewLimiter 创建一个满桶启动的限速器
func NewLimiter(cfg Config, clk clock.Clock) *Limiter {
	if clk == nil {
		clk = clock.New()
	}
	return &Limiter{
		cfg:    cfg,
		clock:  clk,
		tokens: float64(cfg.Limit),
		last:   clk.Now(),
	}
}

// Allow 非阻塞地尝试消费一个令牌，桶空时返回 false
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refillLocked()
	if l.tokens < 1 {
		return false
	}
	l.tokens--
	return true
}

// Wait 阻塞直到消费到一个令牌或 ctx 被取消
//
// 对应 §4.7 "over-budget messages are queued, not dropped"：调用方在把消息
// 放进出站队列之后，用 Wait 节流写协程实际把它发到线上的速度。
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		l.refillLocked()
		if l.tokens >= 1 {
			l.tokens--
			l.mu.Unlock()
			return nil
		}
		deficit := 1 - l.tokens
		wait := time.Duration(deficit / l.cfg.rate() * float64(time.Second))
		l.mu.Unlock()

		timer := l.clock.Timer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *Limiter) refillLocked() {
	now := l.clock.Now()
	elapsed := now.Sub(l.last)
	if elapsed <= 0 {
		return
	}
	l.last = now

	l.tokens += elapsed.Seconds() * l.cfg.rate()
	if l.tokens > float64(l.cfg.Limit) {
		l.tokens = float64(l.cfg.Limit)
	}
}

// SetConfig 允许运行时调整速率（§6.3 settings_update 触达此处）
func (l *Limiter) SetConfig(cfg Config) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg = cfg
	if l.tokens > float64(cfg.Limit) {
		l.tokens = float64(cfg.Limit)
	}
	logger.Debug("消息限速配置已更新", "limit", cfg.Limit, "window", cfg.Window)
}
