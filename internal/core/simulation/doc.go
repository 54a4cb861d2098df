// Package simulation 实现固定步长的驱动循环（§4.5）
//
// 循环有三个状态：paused（只吸收 nudge，不推进物理）、running（每个 tick
// 推进内核一次并产出快照）、randomizing（重新撒点后进入一段忽略入站坐标
// 更新的确认窗口，再回到 running）。tick 节奏由可注入的 clock.Clock 驱动，
// 便于测试用假时钟推进而不依赖真实睡眠。
package simulation
