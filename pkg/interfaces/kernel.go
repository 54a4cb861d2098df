package interfaces

import "github.com/dep2p/graphstream/pkg/types"

// Kernel 是模拟循环驱动的力计算契约
//
// internal/core/physics 提供唯一实现；模拟循环只依赖这个接口，方便在
// 测试里换成确定性的桩实现。
type Kernel interface {
	// Step 在给定的节点与边集合上推进一个 tick，返回新的节点集合
	Step(nodes []types.Node, edges []types.Edge) []types.Node
}
