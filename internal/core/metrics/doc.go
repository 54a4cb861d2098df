// Package metrics 收集 §7 错误分类里"计数但不外显"的诊断指标
//
// OutOfRange/QueueSaturated/InvalidSlot 都不作为会话错误传播，只在这里
// 累积计数；tick 耗时直方图用于观察内核是否追得上 update_rate。
package metrics
