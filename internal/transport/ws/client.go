package ws

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"

	"github.com/dep2p/graphstream/internal/core/codec"
	"github.com/dep2p/graphstream/internal/core/compress"
	"github.com/dep2p/graphstream/internal/core/control"
	"github.com/dep2p/graphstream/internal/core/session"
	"github.com/dep2p/graphstream/pkg/interfaces"
	"github.com/dep2p/graphstream/pkg/types"
)

// Handlers 是客户端在驱动一条连接时收到的回调集合
type Handlers struct {
	// OnSnapshot 在每次收到并成功解码一帧节点快照后调用
	OnSnapshot func(nodes []types.Node, clamped bool)
	// OnControl 在每次收到并成功解码一条控制消息后调用
	OnControl func(msg any)
	// OnStateChange 在会话状态机迁移时调用，供 UI 展示连接状态
	OnStateChange func(from, to session.ConnState)
	// OnReady 在连接刚进入 READY 时同步调用，可用它发送初始控制消息
	OnReady func(ctx context.Context, conn interfaces.Conn)
}

// Client 是 graphstream 服务端的参考客户端，驱动 §4.6 的重连状态机
type Client struct {
	url          string
	writeTimeout time.Duration
	gate         *compress.Gate
	clock        clock.Clock
}

// NewClient 创建一个指向给定 WebSocket URL 的客户端
func NewClient(url string, writeTimeout time.Duration) *Client {
	return &Client{
		url:          url,
		writeTimeout: writeTimeout,
		gate:         compress.NewGate(),
		clock:        clock.New(),
	}
}

// Run 持续连接、读取、并在断线时按 §4.6 的退避策略重连，直至 ctx 被取消或
// 重连尝试次数耗尽（进入 FAILED）
func (c *Client) Run(ctx context.Context, h Handlers) error {
	reconnect := session.NewReconnectPolicy(c.clock)
	state := session.Disconnected

	transition := func(to session.ConnState) {
		from := state
		state = to
		if h.OnStateChange != nil {
			h.OnStateChange(from, to)
		}
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		transition(session.Connecting)
		conn, err := c.dial(ctx)
		if err != nil {
			if !c.backoff(ctx, reconnect, &state, transition) {
				transition(session.Failed)
				return err
			}
			continue
		}

		transition(session.Connected)
		if err := c.awaitReady(ctx, conn, h); err != nil {
			conn.Close()
			if ctx.Err() != nil {
				transition(session.Closed)
				return ctx.Err()
			}
			transition(session.Reconnecting)
			if !c.backoff(ctx, reconnect, &state, transition) {
				transition(session.Failed)
				return err
			}
			continue
		}

		transition(session.Ready)
		reconnect.OnReconnectSuccess()
		reconnect.MarkReady()
		if h.OnReady != nil {
			h.OnReady(ctx, conn)
		}

		c.readUntilFailure(ctx, conn, h)
		conn.Close()

		if ctx.Err() != nil {
			transition(session.Closed)
			return ctx.Err()
		}

		transition(session.Reconnecting)
		if !c.backoff(ctx, reconnect, &state, transition) {
			transition(session.Failed)
			return session.ErrTransportClosed
		}
	}
}

func (c *Client) dial(ctx context.Context) (*Conn, error) {
	raw, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, err
	}
	return NewConn(raw, c.writeTimeout), nil
}

// backoff waits for the next scheduled reconnect attempt; returns false once
// the attempt budget is exhausted.
func (c *Client) backoff(ctx context.Context, r *session.ReconnectPolicy, state *session.ConnState, transition func(session.ConnState)) bool {
	delay, ok := r.NextAttempt()
	if !ok {
		return false
	}
	transition(session.Reconnecting)
	timer := c.clock.Timer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// awaitReady blocks until the server's connection_established control message
// arrives, per §4.6: READY requires that handshake, and binary traffic seen
// before it is discarded rather than handed to OnSnapshot.
func (c *Client) awaitReady(ctx context.Context, conn *Conn, h Handlers) error {
	for {
		kind, data, err := conn.ReadMessage(ctx)
		if err != nil {
			return err
		}
		if kind != interfaces.FrameText {
			continue
		}
		msg, err := control.Decode(data)
		if err != nil {
			continue
		}
		if _, ok := msg.(control.ConnectionEstablished); ok {
			return nil
		}
		if h.OnControl != nil {
			h.OnControl(msg)
		}
	}
}

func (c *Client) readUntilFailure(ctx context.Context, conn *Conn, h Handlers) {
	for {
		kind, data, err := conn.ReadMessage(ctx)
		if err != nil {
			return
		}
		switch kind {
		case interfaces.FrameBinary:
			body := c.gate.DecodeFrame(data)
			result, err := codec.Decode(body)
			if err != nil {
				continue
			}
			if h.OnSnapshot != nil {
				h.OnSnapshot(result.Nodes, result.Clamped)
			}
		case interfaces.FrameText:
			msg, err := control.Decode(data)
			if err != nil {
				continue
			}
			if h.OnControl != nil {
				h.OnControl(msg)
			}
		}
	}
}

// SendControl marshals and writes a control.* message on conn
func SendControl(ctx context.Context, conn interfaces.Conn, msg any) error {
	data, err := marshalControl(msg)
	if err != nil {
		return err
	}
	return conn.WriteMessage(ctx, interfaces.FrameText, data)
}
