// Package ws 是 pkg/interfaces.Conn 唯一的生产实现，基于 gorilla/websocket
//
// 一条连接同时承载 §6.3 的 JSON 控制帧与 §4.1 的二进制记录帧；ReadMessage/
// WriteMessage 把 gorilla 的文本/二进制消息类型翻译成 interfaces.FrameKind，
// 会话层与模拟循环都只依赖那个更窄的接口。
package ws
