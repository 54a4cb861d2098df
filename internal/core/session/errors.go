package session

import "errors"

// ──────────────────────────────────────────────────────────────────
// §7 错误分类中与会话直接相关的哨兵错误
// ──────────────────────────────────────────────────────────────────

var (
	// ErrQueueSaturated 表示出站队列已满且没有可丢弃的非位置消息
	ErrQueueSaturated = errors.New("session: outbound queue saturated")

	// ErrInvalidSlot 表示入站 nudge 引用了一个未知的 slot
	ErrInvalidSlot = errors.New("session: nudge references unknown slot")

	// ErrTransportClosed 是会话级终态错误，驱动客户端侧的重连策略
	ErrTransportClosed = errors.New("session: transport closed")

	// ErrClosed 表示对已关闭会话的操作
	ErrClosed = errors.New("session: session is closed")
)
