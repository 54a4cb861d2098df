package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, Validate(NewConfig()))
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	data := []byte(`
physics:
  attraction: 0.02
  bogus_field: 1
`)
	_, err := Load(data)
	require.Error(t, err)
}

func TestLoadRejectsOutOfRangePhysics(t *testing.T) {
	data := []byte(`
physics:
  attraction: 5.0
  repulsion: 0.05
  spring: 0.08
  damping: 0.85
  max_velocity: 0.2
  collision_radius: 0.1
  bounds_size: 0.5
  iterations: 100
`)
	_, err := Load(data)
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.True(t, verrs.HasErrors())
}

func TestLoadOverridesOnlyGivenSections(t *testing.T) {
	data := []byte(`
session:
  message_rate_limit: 30
`)
	cfg, err := Load(data)
	require.NoError(t, err)
	require.Equal(t, 30, cfg.Session.MessageRateLimit)
	require.Equal(t, DefaultPhysicsConfig(), cfg.Physics)
}

func TestApplyPhysicsUpdateRejectsInvalidPatchAndKeepsPrevious(t *testing.T) {
	p := NewProvider(NewConfig())
	original := p.GetPhysics()

	err := p.ApplyPhysicsUpdate(PhysicsConfig{
		Attraction:      0.02,
		Repulsion:       999, // out of range
		Spring:          0.08,
		Damping:         0.85,
		MaxVelocity:     0.2,
		CollisionRadius: 0.1,
		BoundsSize:      0.5,
		Iterations:      100,
	})
	require.Error(t, err)
	require.Equal(t, original, p.GetPhysics(), "invalid update must not change the retained config")
}

func TestApplyPhysicsUpdateAppliesValidPatch(t *testing.T) {
	p := NewProvider(NewConfig())

	patch := DefaultPhysicsConfig()
	patch.Attraction = 0.05
	require.NoError(t, p.ApplyPhysicsUpdate(patch))
	require.Equal(t, float32(0.05), p.GetPhysics().Attraction)
}
