// Package compress 实现帧的阈值压缩网关（§4.2）
//
// 长度不超过 1024 字节的帧原样发送；更大的帧用 zlib 家族的 deflate 压缩。
// 没有显式的压缩标志位：长度与有效性共同消除歧义——接收方总是先尝试
// 解压再校验，解压失败或校验不过就退回原始字节。
package compress
