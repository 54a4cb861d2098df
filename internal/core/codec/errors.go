package codec

import "errors"

// ────────────────────────────────────────────────────────────────────────
// 帧解码错误
// ────────────────────────────────────────────────────────────────────────

// ErrMalformedFrame 表示帧长度不是 28 的整数倍
var ErrMalformedFrame = errors.New("codec: frame length is not a multiple of 28 bytes")
