package types

import "math"

// ============================================================================
//                              Slot / ExternalID
// ============================================================================

// Slot 是节点在当前图代（generation）内的紧凑 32 位标识
//
// Slot 在图重置之前保持稳定，客户端不应假设 Slot 是稠密或连续的。
type Slot uint32

// ExternalID 是摄取层选择的可打印字符串标识
//
// ExternalID 可能是文件名，也可能是不透明的名称；它是身份表（identity
// table）与 Slot 之间的唯一桥梁，永不出现在二进制记录的线格式中。
type ExternalID string

// ============================================================================
//                              数值边界
// ============================================================================

const (
	// PositionLimit 是位置分量的硬边界，单位为米
	PositionLimit float32 = 1000

	// VelocityLimit 是速度分量的硬边界，单位为米/tick
	VelocityLimit float32 = 0.05

	// DefaultMass 是节点未显式设置质量时使用的默认值
	DefaultMass uint8 = 1
)

// ============================================================================
//                              Flags
// ============================================================================

// NodeFlags 是 8 位标志位，编码在线记录之外的节点状态
type NodeFlags uint8

const (
	// FlagActive 标记节点参与物理内核的力计算与快照
	FlagActive NodeFlags = 1 << 0

	// FlagConnected 标记节点当前至少连接一条边，参与弹簧与向心力计算
	FlagConnected NodeFlags = 1 << 1
)

// Active 报告节点是否处于活跃状态（非活跃节点内核既不将其作为力的来源，也不将其作为力的目标）
func (f NodeFlags) Active() bool {
	return f&FlagActive != 0
}

// Connected 报告节点是否被标记为已连接边
func (f NodeFlags) Connected() bool {
	return f&FlagConnected != 0
}

// ============================================================================
//                              Vec3
// ============================================================================

// Vec3 是一个三维浮点向量，用作位置与速度的载体
type Vec3 struct {
	X, Y, Z float32
}

// Finite 报告向量的三个分量是否都是有限数（非 NaN、非 ±Inf）
func (v Vec3) Finite() bool {
	return isFinite32(v.X) && isFinite32(v.Y) && isFinite32(v.Z)
}

// SanitizedPosition 返回把 NaN 分量替换为 0、再把每个分量（包括 ±Inf）夹到
// [-PositionLimit, PositionLimit] 之后的向量，以及是否发生过任何替换/夹紧
func (v Vec3) SanitizedPosition() (Vec3, bool) {
	return sanitize(v, PositionLimit)
}

// SanitizedVelocity 与 SanitizedPosition 相同，但边界是 VelocityLimit
func (v Vec3) SanitizedVelocity() (Vec3, bool) {
	return sanitize(v, VelocityLimit)
}

func sanitize(v Vec3, limit float32) (Vec3, bool) {
	clamped := false
	fix := func(x float32) float32 {
		if math.IsNaN(float64(x)) {
			clamped = true
			return 0
		}
		if x > limit {
			clamped = true
			return limit
		}
		if x < -limit {
			clamped = true
			return -limit
		}
		return x
	}
	return Vec3{X: fix(v.X), Y: fix(v.Y), Z: fix(v.Z)}, clamped
}

func isFinite32(x float32) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ============================================================================
//                              Node
// ============================================================================

// Node 是知识图中的一个可寻址实体
//
// 经 codec 解码得到的 Node 满足 §3 的不变式：位置分量落在
// [-PositionLimit, PositionLimit]，速度分量落在 [-VelocityLimit, VelocityLimit]。
// 物理内核改按 Params.MaxVelocity 与 BoundsSize·1000 钳制，这两个上限可以
// 大于上述边界。
// 非活跃节点（FlagActive 未置位）仍然占据它的 Slot，但内核既不读也不写它。
type Node struct {
	Slot     Slot
	Position Vec3
	Velocity Vec3
	Mass     uint8
	Flags    NodeFlags
}

// NewNode 构造一个默认质量为 1、标记为活跃且已连接的节点
func NewNode(slot Slot, pos Vec3) Node {
	return Node{
		Slot:     slot,
		Position: pos,
		Mass:     DefaultMass,
		Flags:    FlagActive | FlagConnected,
	}
}

// NodeMetadata 承载摄取层附加在节点上的描述性元数据
//
// 这些字段永远不会出现在 28 字节的线记录里，也不会进入物理内核的热路径。
// 没有任何响应路径发送它们：requestInitialData 的回复与广播快照都只携带
// 二进制记录。
type NodeMetadata struct {
	ExternalID ExternalID
	Label      string
	Color      string
	NodeType   string
	Group      string
	Weight     float64
	Metadata   map[string]string
	UserData   map[string]any
}
