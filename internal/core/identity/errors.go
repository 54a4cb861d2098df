package identity

import "errors"

// ──────────────────────────────────────────────────────────────────
// 哨兵错误
// ──────────────────────────────────────────────────────────────────

var (
	// ErrUnknownSlot 表示 lookup() 查询的 Slot 从未被 intern() 分配过
	ErrUnknownSlot = errors.New("identity: slot has no interned external id")
)
