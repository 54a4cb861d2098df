// Package msgrate 实现出站消息的令牌桶限速器（§4.7、§6.4 messageRateLimit）
//
// 超出预算的消息排队等待令牌，而不是被丢弃；队列本身的容量上限由
// internal/core/session 的有界出站队列负责。
package msgrate
