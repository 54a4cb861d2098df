package interfaces

import "github.com/dep2p/graphstream/pkg/types"

// Broadcaster 是广播枢纽向外暴露的最小行为契约
//
// 模拟循环只需要能把一份快照发给所有就绪会话，不需要知道枢纽如何
// 管理会话集合或如何做背压处理。
type Broadcaster interface {
	// BroadcastSnapshot 把一份节点快照非阻塞地投递给所有就绪会话
	BroadcastSnapshot(nodes []types.Node)
}
