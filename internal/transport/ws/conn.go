package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dep2p/graphstream/pkg/interfaces"
)

var _ interfaces.Conn = (*Conn)(nil)

// Conn 包装一条 gorilla/websocket 连接，实现 interfaces.Conn
//
// gorilla 的底层连接不允许并发写入；writeMu 序列化所有 WriteMessage 调用，
// 和会话层的出站队列消费者一一对应（每条连接只有一个写循环）。
type Conn struct {
	writeMu sync.Mutex

	conn         *websocket.Conn
	remoteAddr   string
	writeTimeout time.Duration
}

// NewConn 包装一条已经完成升级的 WebSocket 连接
func NewConn(conn *websocket.Conn, writeTimeout time.Duration) *Conn {
	return &Conn{
		conn:         conn,
		remoteAddr:   conn.RemoteAddr().String(),
		writeTimeout: writeTimeout,
	}
}

// ReadMessage 阻塞直至读到下一帧；ctx 取消会异步关闭底层连接以unblock读
func (c *Conn) ReadMessage(ctx context.Context) (interfaces.FrameKind, []byte, error) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.conn.Close()
		case <-done:
		}
	}()

	msgType, data, err := c.conn.ReadMessage()
	if err != nil {
		return 0, nil, err
	}

	switch msgType {
	case websocket.TextMessage:
		return interfaces.FrameText, data, nil
	case websocket.BinaryMessage:
		return interfaces.FrameBinary, data, nil
	default:
		return 0, nil, ErrUnsupportedFrame
	}
}

// WriteMessage 把一帧写到连接上；对并发调用者安全
func (c *Conn) WriteMessage(ctx context.Context, kind interfaces.FrameKind, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Now().Add(c.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}

	msgType := websocket.BinaryMessage
	if kind == interfaces.FrameText {
		msgType = websocket.TextMessage
	}
	return c.conn.WriteMessage(msgType, payload)
}

// Close 关闭连接；幂等（gorilla 自身容忍重复 Close）
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr 返回用于日志的对端地址描述
func (c *Conn) RemoteAddr() string {
	return c.remoteAddr
}
