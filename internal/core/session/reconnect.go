package session

import (
	"math/rand"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	reconnectBase    = 1 * time.Second
	reconnectCap     = 60 * time.Second
	reconnectJitter  = 1 * time.Second
	maxReconnectTrys = 5
)

// ReconnectPolicy 实现 §4.6 的指数退避重连调度
//
// attempts 达到上限后 NextAttempt 返回 ok=false，调用方据此把状态迁移到
// FAILED。一旦会话曾经到达过 READY，之后每次重连成功都把计数器归零，
// 避免长期在线连接偶发抖动后被过早判定为 FAILED。
type ReconnectPolicy struct {
	clock     clock.Clock
	rng       *rand.Rand
	attempts  int
	everReady bool
}

// NewReconnectPolicy 创建一个全新的重连策略
func NewReconnectPolicy(clk clock.Clock) *ReconnectPolicy {
	if clk == nil {
		clk = clock.New()
	}
	return &ReconnectPolicy{
		clock: clk,
		rng:   rand.New(rand.NewSource(clk.Now().UnixNano())),
	}
}

// MarkReady 记录会话至少到达过一次 READY
func (p *ReconnectPolicy) MarkReady() {
	p.everReady = true
}

// Attempts 返回已经消耗的重连尝试次数
func (p *ReconnectPolicy) Attempts() int {
	return p.attempts
}

// NextAttempt 返回下一次重连前应该等待的时长；ok 为 false 表示已经用尽
// maxReconnectTrys 次尝试，调用方应当转入 FAILED
func (p *ReconnectPolicy) NextAttempt() (time.Duration, bool) {
	if p.attempts >= maxReconnectTrys {
		return 0, false
	}

	backoff := reconnectBase * time.Duration(1<<uint(p.attempts))
	if backoff > reconnectCap {
		backoff = reconnectCap
	}
	jitter := time.Duration(p.rng.Int63n(int64(reconnectJitter)))

	p.attempts++
	return backoff + jitter, true
}

// OnReconnectSuccess 在传输重新建立后调用；曾经到达过 READY 的会话把
// 计数器重置为 0
func (p *ReconnectPolicy) OnReconnectSuccess() {
	if p.everReady {
		p.attempts = 0
	}
}
