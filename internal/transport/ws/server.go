package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	appconfig "github.com/dep2p/graphstream/internal/config"
	"github.com/dep2p/graphstream/internal/core/codec"
	"github.com/dep2p/graphstream/internal/core/compress"
	"github.com/dep2p/graphstream/internal/core/control"
	"github.com/dep2p/graphstream/internal/core/hub"
	"github.com/dep2p/graphstream/internal/core/identity"
	"github.com/dep2p/graphstream/internal/core/metrics"
	"github.com/dep2p/graphstream/internal/core/session"
	"github.com/dep2p/graphstream/internal/core/simulation"
	"github.com/dep2p/graphstream/pkg/interfaces"
	"github.com/dep2p/graphstream/pkg/lib/log"
	"github.com/dep2p/graphstream/pkg/types"
)

var logger = log.Logger("transport/ws")

// Server 把入站 HTTP 升级请求接入会话/枢纽/模拟循环三者构成的运行时
type Server struct {
	upgrader websocket.Upgrader

	cfg        appconfig.TransportConfig
	sessionCfg session.Config

	loop     *simulation.Loop
	hub      *hub.Hub
	identity *identity.Table
	gate     *compress.Gate
	metrics  *metrics.Registry
	provider *appconfig.Provider
}

// NewServer 创建一个绑定到给定运行时组件的服务器
//
// reg 由调用方（通常是 main）在启动时构造并拥有；服务器只持有引用，
// 不通过全局单例访问指标。provider 是 settings_update（§4.9、§6.3）校验并
// 落地物理参数变更的唯一入口。
func NewServer(loop *simulation.Loop, h *hub.Hub, ids *identity.Table, cfg appconfig.TransportConfig, sessCfg session.Config, reg *metrics.Registry, provider *appconfig.Provider) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			HandshakeTimeout: cfg.HandshakeTimeout,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
		cfg:        cfg,
		sessionCfg: sessCfg,
		loop:       loop,
		hub:        h,
		identity:   ids,
		gate:       compress.NewGate(),
		metrics:    reg,
		provider:   provider,
	}
}

// ServeHTTP 升级连接，驱动一条会话直到连接关闭
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	conn := NewConn(raw, s.cfg.WriteTimeout)
	s.serve(r.Context(), conn)
}

// serve 是每条连接独立的会话驱动循环，直到 ctx 取消或连接出错
func (s *Server) serve(ctx context.Context, conn interfaces.Conn) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer conn.Close()

	sess := session.New(s.sessionCfg, nil, s.metrics, func(batch map[types.Slot]types.Vec3) {
		for slot, pos := range batch {
			s.loop.Nudge(slot, pos)
		}
	})

	if err := sess.Transition(session.Connecting); err != nil {
		logger.Error("cannot start session", "err", err)
		return
	}
	if err := sess.Transition(session.Connected); err != nil {
		logger.Error("cannot connect session", "err", err)
		return
	}

	established := control.NewConnectionEstablished(time.Now())
	if err := s.writeControl(ctx, conn, established); err != nil {
		logger.Warn("failed to send connection_established", "err", err)
		return
	}
	if err := sess.Transition(session.Ready); err != nil {
		logger.Error("cannot ready session", "err", err)
		return
	}

	s.hub.Register(sess)
	s.hub.OnGracefulClose(func(closing *session.Session) {
		if closing.ID == sess.ID {
			cancel()
		}
	})
	defer s.hub.Unregister(sess.ID)

	go s.writeLoop(ctx, conn, sess)
	s.readLoop(ctx, conn, sess)
}

// writeLoop drains the session's outbound queue onto the wire
//
// Rate limiting (§4.7) is outbound only: sess.Limiter.Wait gates how fast
// queued messages are admitted to the wire, so a burst past the configured
// rate accumulates in the already-bounded OutboundQueue instead of being
// dropped — the queue's own capacity is the only thing that ever discards
// anything, exactly as §4.7 specifies.
func (s *Server) writeLoop(ctx context.Context, conn interfaces.Conn, sess *session.Session) {
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for sess.Queue.Len() > 0 {
				if err := sess.Limiter.Wait(ctx); err != nil {
					return
				}
				msg, ok := sess.Queue.Dequeue()
				if !ok {
					break
				}
				kind := interfaces.FrameText
				if msg.Kind == session.KindPosition {
					// position payloads arrive already gate-encoded by their
					// producer (the hub's Encoder or handleControl's
					// requestInitialData branch)
					kind = interfaces.FrameBinary
				}
				if err := conn.WriteMessage(ctx, kind, msg.Payload); err != nil {
					logger.Debug("write failed, closing session", "id", sess.ID, "err", err)
					return
				}
			}
		}
	}
}

// readLoop consumes inbound control and nudge frames until the connection dies
func (s *Server) readLoop(ctx context.Context, conn interfaces.Conn, sess *session.Session) {
	for {
		kind, data, err := conn.ReadMessage(ctx)
		if err != nil {
			logger.Debug("read loop ending", "id", sess.ID, "err", err)
			return
		}

		switch kind {
		case interfaces.FrameText:
			s.handleControl(sess, data)
		case interfaces.FrameBinary:
			s.handleNudgeFrame(sess, data)
		}
	}
}

func (s *Server) handleControl(sess *session.Session, data []byte) {
	msg, err := control.Decode(data)
	if err != nil {
		logger.Debug("ignoring unrecognised control message", "id", sess.ID, "err", err)
		return
	}

	switch m := msg.(type) {
	case control.RequestInitialData:
		snapshot := s.loop.Snapshot()
		frame := s.gate.EncodeFrame(codec.Encode(snapshot))
		sess.EnqueueOutbound(session.Message{Kind: session.KindPosition, Payload: frame})
	case control.EnableRandomization:
		if m.Enabled {
			s.loop.Randomize()
		}
	case control.PauseSimulation:
		if m.Enabled {
			s.loop.Pause()
		} else {
			s.loop.Resume()
		}
	case control.ApplyForces:
		// §6.3: schedule one extra tick ahead of the next scheduled one,
		// rather than resuming the whole loop.
		s.loop.RequestTick()
	case control.SettingsMessage:
		s.handleSettingsUpdate(sess, m)
	}
}

func (s *Server) handleNudgeFrame(sess *session.Session, data []byte) {
	body := s.gate.DecodeFrame(data)
	result, err := codec.Decode(body)
	if err != nil {
		logger.Warn("malformed nudge frame", "id", sess.ID, "err", err)
		s.metrics.MalformedFramesTotal.Inc()
		return
	}
	if result.Clamped {
		s.metrics.ClampedRecordsTotal.Inc()
	}

	updates := make([]session.NudgeUpdate, len(result.Nodes))
	for i, n := range result.Nodes {
		updates[i] = session.NudgeUpdate{Slot: n.Slot, Position: n.Position}
	}
	truncated, dropped := session.TruncateBatch(updates)
	if dropped {
		logger.Warn("nudge batch exceeded per-message limit, excess dropped", "id", sess.ID)
	}
	for _, u := range truncated {
		sess.Debouncer.Add(u.Slot, u.Position)
	}
}

func (s *Server) writeControl(ctx context.Context, conn interfaces.Conn, msg any) error {
	data, err := marshalControl(msg)
	if err != nil {
		return err
	}
	return conn.WriteMessage(ctx, interfaces.FrameText, data)
}
