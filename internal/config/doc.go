// Package config 提供 graphstream 的统一配置管理
//
// 本包采用与内部子系统一一对应的分组结构：
//   - Physics: 物理内核参数（§4.4）
//   - Session: 会话限速与队列参数（§4.7、§6.4）
//   - Simulation: 模拟循环参数（§4.5）
//   - Transport: 传输层参数（§6.2）
//
// 配置以 YAML 加载，未知字段一律视为解码错误（严格模式），任何越界的
// 数值字段在校验阶段被拒绝并保留此前的值，而不是被静默夹到边界上。
package config
