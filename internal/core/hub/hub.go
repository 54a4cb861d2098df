package hub

import (
	"sync"

	"github.com/dep2p/graphstream/internal/core/metrics"
	"github.com/dep2p/graphstream/internal/core/session"
	"github.com/dep2p/graphstream/pkg/lib/log"
	"github.com/dep2p/graphstream/pkg/types"
)

var logger = log.Logger("hub")

// Encoder 把一份节点快照编码成即将进入会话出站队列的帧字节
//
// 枢纽本身不关心编码细节（压缩阈值、格式版本），只负责把编码好的字节
// 非阻塞地投递给每个 READY 会话。
type Encoder func(nodes []types.Node) []byte

// Hub 维护 READY 会话集合，非阻塞扇出快照（§4.8）
type Hub struct {
	mu       sync.RWMutex
	sessions map[types.ExternalID]*session.Session
	encode   Encoder
	metrics  *metrics.Registry

	dropped     uint64
	closeNotify func(*session.Session)
}

// New 创建一个空的枢纽；encode 用于把快照编码成帧字节
//
// reg 由调用方在启动时构造并拥有；枢纽只持有引用，不持有全局单例。
func New(encode Encoder, reg *metrics.Registry) *Hub {
	return &Hub{
		sessions: make(map[types.ExternalID]*session.Session),
		encode:   encode,
		metrics:  reg,
	}
}

// OnGracefulClose 注册一个回调，在某个会话因连续丢弃过多被标记为待关闭时触发
func (h *Hub) OnGracefulClose(fn func(*session.Session)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closeNotify = fn
}

// Register 把一个刚到达 READY 的会话加入枢纽
func (h *Hub) Register(s *session.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.ID] = s
	logger.Debug("session registered with hub", "id", s.ID, "total", len(h.sessions))
}

// Unregister 把会话从枢纽移除，通常发生在会话进入 CLOSED
func (h *Hub) Unregister(id types.ExternalID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, id)
	logger.Debug("session unregistered from hub", "id", id, "total", len(h.sessions))
}

// BroadcastSnapshot 把一份快照非阻塞地投递给每个 READY 会话
//
// 实现 pkg/interfaces.Broadcaster；单个会话队列饱和只丢弃那一份快照并计数，
// 从不阻塞其它会话的投递（§4.8 no head-of-line blocking）。
func (h *Hub) BroadcastSnapshot(nodes []types.Node) {
	h.mu.RLock()
	sessions := make([]*session.Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	encode := h.encode
	closeNotify := h.closeNotify
	h.mu.RUnlock()

	frame := encode(nodes)

	for _, s := range sessions {
		if !s.IsReady() {
			continue
		}
		shouldClose := s.EnqueueOutbound(session.Message{Kind: session.KindPosition, Payload: frame})
		if shouldClose {
			h.mu.Lock()
			h.dropped++
			h.mu.Unlock()
			if closeNotify != nil {
				closeNotify(s)
			}
		}
	}
}

// SessionCount 返回当前已注册的会话数
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// DroppedCloses 返回因连续丢弃触发优雅关闭通知的次数（诊断用）；会话越过
// 阈值后，它之后的每一次丢弃都会再计一次
func (h *Hub) DroppedCloses() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}
