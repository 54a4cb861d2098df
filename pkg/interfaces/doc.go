// Package interfaces 收纳跨包共享的小接口
//
// 这些接口按“消费者定义接口”的原则拆分：每个接口只声明调用方实际用到的
// 方法，internal/... 包依赖这里的行为契约，而不是彼此的具体实现类型。
package interfaces
