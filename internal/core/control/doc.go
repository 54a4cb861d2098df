// Package control 定义 §4.9/§6.3 的 JSON 判别式控制消息
//
// 消息在同一个连接上与二进制节点帧复用；每条文本消息都是一个带 "type"
// 字段的 JSON 对象。未知 type 双方都直接忽略并记一条 debug 日志，版本演进
// 只做加法，不做破坏性变更。
package control
