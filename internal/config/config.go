package config

import (
	"time"

	"github.com/dep2p/graphstream/internal/core/physics"
)

// Config 是 graphstream 服务端的完整配置结构
type Config struct {
	Physics    PhysicsConfig    `yaml:"physics"`
	Session    SessionConfig    `yaml:"session"`
	Simulation SimulationConfig `yaml:"simulation"`
	Transport  TransportConfig  `yaml:"transport"`
}

// NewConfig 创建全部使用默认值的配置
func NewConfig() *Config {
	return &Config{
		Physics:    DefaultPhysicsConfig(),
		Session:    DefaultSessionConfig(),
		Simulation: DefaultSimulationConfig(),
		Transport:  DefaultTransportConfig(),
	}
}

// ============================================================================
//                              物理内核配置
// ============================================================================

// PhysicsConfig 是 §4.4 力导向内核的可调参数，均带取值范围
type PhysicsConfig struct {
	// Attraction 是已连接节点的向心力系数，范围 0.001-0.1
	Attraction float32 `yaml:"attraction"`
	// Repulsion 是成对节点的斥力系数，范围 0.1-0.5
	Repulsion float32 `yaml:"repulsion"`
	// Spring 是边长恢复力系数，范围 0.001-0.15
	Spring float32 `yaml:"spring"`
	// Damping 是每 tick 的速度衰减系数，范围 0.5-0.95
	Damping float32 `yaml:"damping"`
	// MaxVelocity 是积分后速度分量的硬夹值，范围 0.1-5.0
	MaxVelocity float32 `yaml:"max_velocity"`
	// CollisionRadius 是力饱和前的最小成对距离，范围 0.1-1.0
	CollisionRadius float32 `yaml:"collision_radius"`
	// BoundsSize 是软立方体边界，范围 0.1-2.0
	BoundsSize float32 `yaml:"bounds_size"`
	// Iterations 是手动驱动一批次时的 tick 数，范围 1-1000
	Iterations int `yaml:"iterations"`
}

// DefaultPhysicsConfig 返回 §4.4 参数表里的默认值
//
// repulsion 取该字段取值范围 [0.1, 0.5] 的下界：参数表标注的 0.05 落在自身
// 范围之外，会让 Validate(NewConfig()) 这样的零配置直接不合法；下界是离
// 标注值最近的合法取值。
func DefaultPhysicsConfig() PhysicsConfig {
	return PhysicsConfig{
		Attraction:      0.02,
		Repulsion:       0.1,
		Spring:          0.08,
		Damping:         0.85,
		MaxVelocity:     0.2,
		CollisionRadius: 0.1,
		BoundsSize:      0.5,
		Iterations:      100,
	}
}

// ToParams 把校验过的物理配置转换成 internal/core/physics 的运行期参数类型，
// 并做一次防御性 Clamp
func (p PhysicsConfig) ToParams() physics.Params {
	return physics.Params{
		Attraction:      p.Attraction,
		Repulsion:       p.Repulsion,
		Spring:          p.Spring,
		Damping:         p.Damping,
		MaxVelocity:     p.MaxVelocity,
		CollisionRadius: p.CollisionRadius,
		BoundsSize:      p.BoundsSize,
		Iterations:      p.Iterations,
	}.Clamp()
}

// ============================================================================
//                              会话配置
// ============================================================================

// SessionConfig 是 §4.7、§6.4 的会话限速与队列参数
type SessionConfig struct {
	// MessageRateLimit 是每个 MessageTimeWindow 窗口内允许发出的出站消息数
	MessageRateLimit int `yaml:"message_rate_limit"`
	// MessageTimeWindow 是限速窗口长度
	MessageTimeWindow time.Duration `yaml:"message_time_window"`
	// MaxMessageSize 是单条消息大小上限的配置项（字节）；它只参与 Validate，
	// 传输层不读取它，入站消息的大小不受此值限制
	MaxMessageSize int `yaml:"max_message_size"`
	// MaxQueueSize 是出站队列容量
	MaxQueueSize int `yaml:"max_queue_size"`
	// MaxRetries 是重连尝试上限的配置项；它只参与 Validate，客户端重连策略
	// 使用 session 包里固定的 5 次上限，不读取此值
	MaxRetries int `yaml:"max_retries"`
	// RetryDelay 是重连退避基数的配置项；它只参与 Validate，客户端重连策略
	// 使用 session 包里固定的 1s 基数，不读取此值
	RetryDelay time.Duration `yaml:"retry_delay"`
	// CompressionThreshold 是触发压缩的最小字节数（§4.2）
	CompressionThreshold int `yaml:"compression_threshold"`
}

// DefaultSessionConfig 返回 §6.4 列出的默认值
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MessageRateLimit:     60,
		MessageTimeWindow:    time.Second,
		MaxMessageSize:       1 << 20,
		MaxQueueSize:         100,
		MaxRetries:           5,
		RetryDelay:           time.Second,
		CompressionThreshold: 1024,
	}
}

// ============================================================================
//                              模拟循环配置
// ============================================================================

// SimulationConfig 是 §4.5 模拟循环的可调参数
type SimulationConfig struct {
	// UpdateRate 是快照产出的目标频率，范围 1-120 Hz
	UpdateRate float64 `yaml:"update_rate"`
	// AckWindow 是随机布点之后忽略受影响 slot 更新的时长
	AckWindow time.Duration `yaml:"ack_window"`
	// RandomRadius 是随机重新布点的球半径，默认不超过 5
	RandomRadius float32 `yaml:"random_radius"`
}

// DefaultSimulationConfig 返回 §6.4 列出的默认值
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		UpdateRate:   60,
		AckWindow:    5 * time.Second,
		RandomRadius: 5,
	}
}

// ============================================================================
//                              传输层配置
// ============================================================================

// TransportConfig 是 §6.2 WebSocket 监听端的可调参数
type TransportConfig struct {
	// ListenAddr 是 HTTP 升级端点的监听地址，如 ":8080"
	ListenAddr string `yaml:"listen_addr"`
	// Path 是 WebSocket 升级路径，如 "/ws"
	Path string `yaml:"path"`
	// HandshakeTimeout 是升级握手的超时时间
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	// WriteTimeout 是单次写入允许的最长时间
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DefaultTransportConfig 返回传输层默认值
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		ListenAddr:       ":8080",
		Path:             "/ws",
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
	}
}
