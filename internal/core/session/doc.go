// Package session 实现每连接状态机与客户端会话（§4.6、§4.7）
//
// 状态机守卫 DISCONNECTED → CONNECTING → CONNECTED → READY 的前进路径，
// READY 可以转入 CLOSED（终态，没有出边）或 RECONNECTING，RECONNECTING 经
// CONNECTING 重新握手；重连用指数退避驱动，超过重试上限（除非上一次已经
// 到过 READY）落入终态 FAILED。
//
// Session 把有界出站队列、50ms 去抖合并、消息限速捆在一起，对应 §4.7
// 描述的"读协程/写协程通过有界队列连接"的并发形态。
package session
