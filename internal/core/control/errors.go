package control

import "errors"

// ──────────────────────────────────────────────────────────────────
// 哨兵错误
// ──────────────────────────────────────────────────────────────────

var (
	// ErrUnknownType 表示消息的 "type" 字段不在已知集合内；调用方应当忽略
	// 消息并记一条 debug 日志，而不是把它当作会话错误处理（§4.9）。
	ErrUnknownType = errors.New("control: unrecognised message type")
)
