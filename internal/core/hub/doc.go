// Package hub 实现非阻塞扇出广播枢纽（§4.8）
//
// 枢纽维护 READY 会话集合，把每一份物理快照非阻塞地投递给每个会话；
// 单个会话队列饱和只丢弃那一份快照，不会阻塞枢纽或影响其他会话
// （no head-of-line blocking）。连续丢弃超过阈值的会话被标记为待优雅关闭。
package hub
