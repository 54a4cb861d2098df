package ws

import "errors"

// ──────────────────────────────────────────────────────────────────
// 哨兵错误
// ──────────────────────────────────────────────────────────────────

var (
	// ErrUnsupportedFrame 表示对端发来了既非文本也非二进制的 WebSocket 帧
	ErrUnsupportedFrame = errors.New("ws: unsupported frame type")
)
