// Package identity 实现外部字符串标识与紧凑 Slot 之间的双向映射（§4.3）
//
// 数字型外部 ID（可解析为十进制 u32 的字符串）直接映射到该数值本身，
// 用于客户端回显服务器已经分配过的 Slot；非数字 ID（例如文件名）领取一个
// 新铸造的 Slot。reset() 清空两个方向并把计数器归零，在图代（generation）
// 切换时调用。
package identity
