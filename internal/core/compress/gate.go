package compress

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Threshold 是决定是否压缩帧体的字节数边界（§6.4 compressionThreshold 默认值）
const Threshold = 1024

// RecordSize 必须与 codec.RecordSize 一致；这里独立声明以避免 compress 包
// 依赖 codec 包——两者都只依赖“记录是 28 字节”这一线格式常量。
const RecordSize = 28

// Gate 是可配置阈值的压缩网关
type Gate struct {
	// Threshold 覆盖包级默认值；零值表示使用 Threshold 常量
	Threshold int
}

// NewGate 返回一个使用默认阈值的网关
func NewGate() *Gate {
	return &Gate{Threshold: Threshold}
}

func (g *Gate) threshold() int {
	if g.Threshold > 0 {
		return g.Threshold
	}
	return Threshold
}

// EncodeFrame 按阈值决定是否压缩 body
//
// body 长度不超过阈值时原样返回（Testable Property 4：小帧上是幂等的，
// 输出与输入字节相同）。更大的 body 用 deflate 压缩；压缩失败时退化为
// 原样返回，因为线上没有显式的压缩标志，收发双方必须能容忍任一种情况。
func (g *Gate) EncodeFrame(body []byte) []byte {
	if len(body) <= g.threshold() {
		return body
	}

	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(body); err != nil {
		return body
	}
	if err := w.Close(); err != nil {
		return body
	}
	return buf.Bytes()
}

// DecodeFrame 先尝试解压，再校验解压结果是否是 28 字节记录的整数倍长度；
// 任一步失败都退回原始字节，因为没有显式标志区分“压缩过的帧”和
// “本来就不是有效 deflate 流的原始帧”。
func (g *Gate) DecodeFrame(body []byte) []byte {
	r, err := zlib.NewReader(bytes.NewReader(body))
	if err != nil {
		return body
	}
	defer r.Close()

	decoded, err := io.ReadAll(r)
	if err != nil {
		return body
	}
	if len(decoded)%RecordSize != 0 {
		return body
	}
	return decoded
}
