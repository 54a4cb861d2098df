// Package physics 实现力导向物理内核（§4.4）
//
// 内核从当前节点/边集合产出新的位置与速度：两两互斥的排斥力、连接节点间的
// 弹簧回复力、连接节点的向心吸引力，叠加阻尼与硬性速度/位置钳制。内核只有
// 纯函数式的一步（Step），不持有跨 tick 的状态——调用方（simulation 包）
// 负责把上一次的输出喂给下一次调用。
//
// Step 是标量参考实现；StepParallel 把节点集合切成 GOMAXPROCS 份并行累加力，
// 两者在浮点误差范围内必须一致，kernel_test.go 里有交叉验证。
package physics
