package config

import (
	"fmt"
	"strings"
)

// ValidationError 是单个字段的越界或格式错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: field %q: %s", e.Field, e.Message)
}

// ValidationErrors 聚合了一次校验里发现的全部字段错误
//
// §7 ValidationFailed：一次配置更新只要触发任何一条错误就整体拒绝，
// 调用方应当保留更新前的值，而不是逐字段部分应用。
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors 报告是否存在至少一条错误
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

type validator struct {
	errors ValidationErrors
}

func (v *validator) addError(field, message string) {
	v.errors = append(v.errors, ValidationError{Field: field, Message: message})
}

func (v *validator) inRangeFloat32(field string, value, min, max float32) {
	if value < min || value > max {
		v.addError(field, fmt.Sprintf("must be in [%v, %v], got %v", min, max, value))
	}
}

func (v *validator) inRangeInt(field string, value, min, max int) {
	if value < min || value > max {
		v.addError(field, fmt.Sprintf("must be in [%v, %v], got %v", min, max, value))
	}
}

// Validate 校验整份配置，返回聚合的 ValidationErrors（实现 error）
func Validate(c *Config) error {
	v := &validator{}
	v.validatePhysics(&c.Physics)
	v.validateSession(&c.Session)
	v.validateSimulation(&c.Simulation)
	v.validateTransport(&c.Transport)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

// validatePhysics 校验 §4.4 参数表里的每个字段范围
func (v *validator) validatePhysics(cfg *PhysicsConfig) {
	v.inRangeFloat32("physics.attraction", cfg.Attraction, 0.001, 0.1)
	v.inRangeFloat32("physics.repulsion", cfg.Repulsion, 0.1, 0.5)
	v.inRangeFloat32("physics.spring", cfg.Spring, 0.001, 0.15)
	v.inRangeFloat32("physics.damping", cfg.Damping, 0.5, 0.95)
	v.inRangeFloat32("physics.max_velocity", cfg.MaxVelocity, 0.1, 5.0)
	v.inRangeFloat32("physics.collision_radius", cfg.CollisionRadius, 0.1, 1.0)
	v.inRangeFloat32("physics.bounds_size", cfg.BoundsSize, 0.1, 2.0)
	v.inRangeInt("physics.iterations", cfg.Iterations, 1, 1000)
}

func (v *validator) validateSession(cfg *SessionConfig) {
	if cfg.MessageRateLimit < 1 {
		v.addError("session.message_rate_limit", "must be positive")
	}
	if cfg.MessageTimeWindow <= 0 {
		v.addError("session.message_time_window", "must be positive")
	}
	if cfg.MaxMessageSize < 1 {
		v.addError("session.max_message_size", "must be positive")
	}
	if cfg.MaxQueueSize < 0 {
		v.addError("session.max_queue_size", "must not be negative")
	}
	if cfg.MaxRetries < 0 {
		v.addError("session.max_retries", "must not be negative")
	}
	if cfg.RetryDelay < 0 {
		v.addError("session.retry_delay", "must not be negative")
	}
	if cfg.CompressionThreshold < 0 {
		v.addError("session.compression_threshold", "must not be negative")
	}
}

func (v *validator) validateSimulation(cfg *SimulationConfig) {
	v.inRangeFloat32("simulation.update_rate", float32(cfg.UpdateRate), 1, 120)
	if cfg.AckWindow < 0 {
		v.addError("simulation.ack_window", "must not be negative")
	}
	if cfg.RandomRadius <= 0 {
		v.addError("simulation.random_radius", "must be positive")
	}
}

func (v *validator) validateTransport(cfg *TransportConfig) {
	if cfg.ListenAddr == "" {
		v.addError("transport.listen_addr", "must not be empty")
	}
	if !strings.HasPrefix(cfg.Path, "/") {
		v.addError("transport.path", "must start with /")
	}
	if cfg.HandshakeTimeout <= 0 {
		v.addError("transport.handshake_timeout", "must be positive")
	}
	if cfg.WriteTimeout <= 0 {
		v.addError("transport.write_timeout", "must be positive")
	}
}
