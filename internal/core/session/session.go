package session

import (
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/dep2p/graphstream/internal/core/metrics"
	"github.com/dep2p/graphstream/internal/core/msgrate"
	"github.com/dep2p/graphstream/pkg/lib/log"
	"github.com/dep2p/graphstream/pkg/types"
)

var logger = log.Logger("session")

// Config 是构造 Session 时的可调项（§6.4）
type Config struct {
	QueueCapacity int
	RateLimit     msgrate.Config
}

// DefaultConfig 返回 §6.4 列出的默认值
func DefaultConfig() Config {
	return Config{
		QueueCapacity: defaultQueueCapacity,
		RateLimit:     msgrate.DefaultConfig(),
	}
}

// Session 是一个客户端连接的完整状态：状态机、出站队列、入站去抖缓冲、
// 出站限速与重连策略（§4.6、§4.7）
type Session struct {
	ID types.ExternalID

	mu    sync.Mutex
	state ConnState

	Queue     *OutboundQueue
	Limiter   *msgrate.Limiter
	Reconnect *ReconnectPolicy
	Debouncer *Debouncer

	metrics *metrics.Registry

	consecutiveDrops int
}

// New 创建一个处于 DISCONNECTED 状态的会话，带一个随机 uuid 作为 ID
//
// reg 由调用方在启动时构造并拥有；会话只持有引用，不持有全局单例。
func New(cfg Config, clk clock.Clock, reg *metrics.Registry, onNudgeFlush func(map[types.Slot]types.Vec3)) *Session {
	return &Session{
		ID:        types.ExternalID(uuid.NewString()),
		state:     Disconnected,
		Queue:     NewOutboundQueue(cfg.QueueCapacity),
		Limiter:   msgrate.NewLimiter(cfg.RateLimit, clk),
		Reconnect: NewReconnectPolicy(clk),
		Debouncer: NewDebouncer(clk, onNudgeFlush),
		metrics:   reg,
	}
}

// State 返回当前连接状态
func (s *Session) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transition 尝试把会话迁移到 to；拒绝任何不在 §4.6 状态图内的边
func (s *Session) Transition(to ConnState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !canTransition(s.state, to) {
		return &ErrInvalidTransition{From: s.state, To: to}
	}

	from := s.state
	s.state = to
	if to == Ready {
		s.Reconnect.MarkReady()
		s.metrics.SessionsReady.Inc()
	} else if from == Ready {
		s.metrics.SessionsReady.Dec()
	}
	logger.Debug("session transition", "id", s.ID, "from", from, "to", to)
	return nil
}

// IsReady 报告会话是否处于 READY，二进制流量在此之前必须被丢弃（§4.6）
func (s *Session) IsReady() bool {
	return s.State() == Ready
}

// EnqueueOutbound 把消息放进出站队列；队列饱和时记一次连续丢弃并在超过
// 阈值时把会话标记为待优雅关闭（§4.8、§7 QueueSaturated）
func (s *Session) EnqueueOutbound(msg Message) (shouldClose bool) {
	if err := s.Queue.Enqueue(msg); err != nil {
		s.mu.Lock()
		s.consecutiveDrops++
		drops := s.consecutiveDrops
		s.mu.Unlock()
		s.metrics.QueueSaturatedTotal.Inc()
		logger.Warn("outbound queue saturated", "id", s.ID, "consecutiveDrops", drops)
		return drops >= consecutiveDropThreshold
	}

	s.mu.Lock()
	s.consecutiveDrops = 0
	s.mu.Unlock()
	return false
}

// consecutiveDropThreshold 是 §4.8 "exceed a consecutive-drop threshold are
// marked for graceful close" 里的阈值
const consecutiveDropThreshold = 10
