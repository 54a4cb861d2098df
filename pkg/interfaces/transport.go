package interfaces

import "context"

// FrameKind 区分传输帧承载的是文本控制消息还是二进制记录
type FrameKind int

const (
	// FrameText 是 UTF-8 编码的 JSON 控制消息（§6.3）
	FrameText FrameKind = iota
	// FrameBinary 是零个或多个 28 字节记录的拼接（§4.1）
	FrameBinary
)

// Conn 抽象一条同时承载文本与二进制帧的双向消息通道
//
// gorilla/websocket 是唯一的实现（internal/transport/ws），但会话层只依赖
// 这个接口，方便在测试中用内存实现替换真实的 WebSocket 连接。
type Conn interface {
	// ReadMessage 阻塞直至读到下一帧，或 ctx 被取消，或连接关闭
	ReadMessage(ctx context.Context) (FrameKind, []byte, error)

	// WriteMessage 把一帧写到连接上；对并发调用者安全
	WriteMessage(ctx context.Context, kind FrameKind, payload []byte) error

	// Close 关闭连接；幂等
	Close() error

	// RemoteAddr 返回用于日志的对端地址描述
	RemoteAddr() string
}
