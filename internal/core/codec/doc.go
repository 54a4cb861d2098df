// Package codec 实现节点记录的二进制编解码（§4.1）
//
// 记录布局固定为 28 字节、小端序，没有头部、没有计数前缀：帧的节点数由
// 字节长度直接推导。编码是规范的（canonical）：不存在两个不同的字节串
// 解码出同一个节点序列。
package codec
