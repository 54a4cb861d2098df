package ws

import (
	appconfig "github.com/dep2p/graphstream/internal/config"
	"github.com/dep2p/graphstream/internal/core/control"
	"github.com/dep2p/graphstream/internal/core/msgrate"
	"github.com/dep2p/graphstream/internal/core/session"
)

// settings_update categories (§4.9): which sub-config a setting name belongs to.
const (
	categoryPhysics = "physics"
	categorySession = "session"
)

// handleSettingsUpdate validates and applies a single proposed setting change
// (§4.9, §6.3). A rejected setting counts against ValidationFailedTotal and
// leaves the previous value in place, per §7 ValidationFailed; an accepted
// one is echoed back as an authoritative "settings" message.
func (s *Server) handleSettingsUpdate(sess *session.Session, m control.SettingsMessage) {
	if m.Type != control.TypeSettingsUpdate {
		return
	}

	var ok bool
	switch m.Category {
	case categoryPhysics:
		ok = s.applyPhysicsSetting(m.Setting, m.Value)
	case categorySession:
		ok = s.applyRateLimitSetting(sess, m.Setting, m.Value)
	}

	if !ok {
		s.metrics.ValidationFailedTotal.WithLabelValues(m.Setting).Inc()
		logger.Debug("rejected settings_update", "category", m.Category, "setting", m.Setting)
		return
	}

	sess.EnqueueOutbound(session.Message{
		Kind:    session.KindText,
		Payload: mustMarshalControl(control.NewSettings(m.Category, m.Setting, m.Value)),
	})
}

// applyPhysicsSetting patches a single named field of the live physics
// config, validates the resulting whole config through the provider, and on
// success pushes the new parameters into the running kernel.
func (s *Server) applyPhysicsSetting(setting string, value any) bool {
	current := s.provider.GetPhysics()
	patched, ok := setPhysicsField(current, setting, value)
	if !ok {
		return false
	}
	if err := s.provider.ApplyPhysicsUpdate(patched); err != nil {
		return false
	}
	s.loop.UpdatePhysicsParams(patched.ToParams())
	return true
}

// applyRateLimitSetting adjusts the calling session's own outbound rate
// limit; only "message_rate_limit" is recognised.
func (s *Server) applyRateLimitSetting(sess *session.Session, setting string, value any) bool {
	if setting != "message_rate_limit" {
		return false
	}
	f, ok := value.(float64)
	if !ok || f <= 0 {
		return false
	}
	sess.Limiter.SetConfig(msgrate.Config{
		Limit:  int(f),
		Window: s.sessionCfg.RateLimit.Window,
	})
	return true
}

// setPhysicsField returns cfg with the named field replaced by value,
// reporting false for an unrecognised name or a value of the wrong type.
// JSON numbers decode to float64 regardless of the destination field's Go
// type, so every numeric field is read out that way.
func setPhysicsField(cfg appconfig.PhysicsConfig, setting string, value any) (appconfig.PhysicsConfig, bool) {
	f, ok := value.(float64)
	if !ok {
		return cfg, false
	}

	switch setting {
	case "attraction":
		cfg.Attraction = float32(f)
	case "repulsion":
		cfg.Repulsion = float32(f)
	case "spring":
		cfg.Spring = float32(f)
	case "damping":
		cfg.Damping = float32(f)
	case "max_velocity":
		cfg.MaxVelocity = float32(f)
	case "collision_radius":
		cfg.CollisionRadius = float32(f)
	case "bounds_size":
		cfg.BoundsSize = float32(f)
	case "iterations":
		cfg.Iterations = int(f)
	default:
		return cfg, false
	}
	return cfg, true
}

// mustMarshalControl marshals a control message built by this package's own
// constructors, which never fail to encode; a marshal error here would mean
// a message type was given an unencodable field, a programmer error.
func mustMarshalControl(msg any) []byte {
	data, err := marshalControl(msg)
	if err != nil {
		logger.Error("failed to marshal outgoing control message", "err", err)
		return nil
	}
	return data
}
