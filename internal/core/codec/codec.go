package codec

import (
	"encoding/binary"
	"fmt"

	"go.uber.org/multierr"

	"github.com/dep2p/graphstream/pkg/types"
)

// RecordSize 是单条节点记录的字节数（§4.1 的固定布局）
const RecordSize = 28

// DecodeResult 携带一次解码的产出以及是否发生过夹紧（clamping）
type DecodeResult struct {
	Nodes   []types.Node
	Clamped bool
}

// Encode 把节点序列编码为二进制帧
//
// 编码是规范的：字段顺序、字节序（小端）、宽度都是固定的，同一个节点序列
// 总是产生同一个字节串。
func Encode(nodes []types.Node) []byte {
	out := make([]byte, len(nodes)*RecordSize)
	for i, n := range nodes {
		putRecord(out[i*RecordSize:(i+1)*RecordSize], n)
	}
	return out
}

// putRecord writes the record's raw bit pattern, unmodified: Encode never
// clamps or coerces. Non-finite values and out-of-range magnitudes round-trip
// onto the wire exactly as given, and Decode is where §3's invariants are
// enforced — see S3 in spec.md §8.
func putRecord(b []byte, n types.Node) {
	binary.LittleEndian.PutUint32(b[0:4], uint32(n.Slot))
	binary.LittleEndian.PutUint32(b[4:8], floatToBits(n.Position.X))
	binary.LittleEndian.PutUint32(b[8:12], floatToBits(n.Position.Y))
	binary.LittleEndian.PutUint32(b[12:16], floatToBits(n.Position.Z))
	binary.LittleEndian.PutUint32(b[16:20], floatToBits(n.Velocity.X))
	binary.LittleEndian.PutUint32(b[20:24], floatToBits(n.Velocity.Y))
	binary.LittleEndian.PutUint32(b[24:28], floatToBits(n.Velocity.Z))
}

// Decode 解析一个二进制帧
//
// 长度不是 28 的整数倍时返回 ErrMalformedFrame，不产生任何部分结果。
// NaN 会被替换为 0；越界的位置/速度分量（包括 ±Inf）会被夹到 §3 规定的
// 范围。Clamped 报告本帧内是否发生过任何一次替换或夹紧，供调用方
// 决定是否记录 OutOfRange 诊断。
func Decode(frame []byte) (DecodeResult, error) {
	if len(frame)%RecordSize != 0 {
		return DecodeResult{}, ErrMalformedFrame
	}

	count := len(frame) / RecordSize
	nodes := make([]types.Node, count)
	clamped := false

	for i := 0; i < count; i++ {
		rec := frame[i*RecordSize : (i+1)*RecordSize]
		node, didClamp := parseRecord(rec)
		nodes[i] = node
		clamped = clamped || didClamp
	}

	return DecodeResult{Nodes: nodes, Clamped: clamped}, nil
}

func parseRecord(b []byte) (types.Node, bool) {
	slot := types.Slot(binary.LittleEndian.Uint32(b[0:4]))
	rawPos := types.Vec3{
		X: floatFromBits(binary.LittleEndian.Uint32(b[4:8])),
		Y: floatFromBits(binary.LittleEndian.Uint32(b[8:12])),
		Z: floatFromBits(binary.LittleEndian.Uint32(b[12:16])),
	}
	rawVel := types.Vec3{
		X: floatFromBits(binary.LittleEndian.Uint32(b[16:20])),
		Y: floatFromBits(binary.LittleEndian.Uint32(b[20:24])),
		Z: floatFromBits(binary.LittleEndian.Uint32(b[24:28])),
	}

	pos, posClamped := rawPos.SanitizedPosition()
	vel, velClamped := rawVel.SanitizedVelocity()

	node := types.Node{
		Slot:     slot,
		Position: pos,
		Velocity: vel,
		Mass:     types.DefaultMass,
		Flags:    types.FlagActive | types.FlagConnected,
	}
	return node, posClamped || velClamped
}

// DecodeBatch 解码多个独立帧，聚合每一帧各自的解码错误
//
// 与单帧 Decode 不同，一批帧里某一帧格式错误不会丢弃其它帧的结果：
// 返回的切片与输入等长，出错的位置是零值 DecodeResult。聚合错误用
// go.uber.org/multierr 拼接，方便调用方一次性判断“这批里有没有坏帧”，
// 同时仍能通过 multierr.Errors 拆开定位是哪一帧、哪个原因。
func DecodeBatch(frames [][]byte) ([]DecodeResult, error) {
	results := make([]DecodeResult, len(frames))
	var errs error
	for i, frame := range frames {
		res, err := Decode(frame)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("frame %d: %w", i, err))
			continue
		}
		results[i] = res
	}
	return results, errs
}
