package ws

import (
	"encoding/json"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
	dto "github.com/prometheus/client_model/go"

	"github.com/dep2p/graphstream/internal/core/control"
	"github.com/dep2p/graphstream/internal/core/session"
)

func TestHandleSettingsUpdateAppliesValidPhysicsSetting(t *testing.T) {
	s := newTestServer(t)
	sess := session.New(session.DefaultConfig(), clock.NewMock(), s.metrics, nil)

	data, err := json.Marshal(control.NewSettingsUpdate(categoryPhysics, "damping", 0.6))
	require.NoError(t, err)

	s.handleControl(sess, data)

	require.Equal(t, float32(0.6), s.provider.GetPhysics().Damping)

	msg, ok := sess.Queue.Dequeue()
	require.True(t, ok)
	require.Equal(t, session.KindText, msg.Kind)

	var reply control.SettingsMessage
	require.NoError(t, json.Unmarshal(msg.Payload, &reply))
	require.Equal(t, control.TypeSettings, reply.Type)
	require.Equal(t, "damping", reply.Setting)
}

func TestHandleSettingsUpdateRejectsOutOfRangePhysicsSettingAndKeepsPrevious(t *testing.T) {
	s := newTestServer(t)
	sess := session.New(session.DefaultConfig(), clock.NewMock(), s.metrics, nil)
	before := s.provider.GetPhysics()

	data, err := json.Marshal(control.NewSettingsUpdate(categoryPhysics, "damping", 99.0))
	require.NoError(t, err)

	s.handleControl(sess, data)

	require.Equal(t, before, s.provider.GetPhysics())

	_, ok := sess.Queue.Dequeue()
	require.False(t, ok, "no reply should be enqueued on rejection")

	var m dto.Metric
	require.NoError(t, s.metrics.ValidationFailedTotal.WithLabelValues("damping").Write(&m))
	require.Equal(t, float64(1), m.GetCounter().GetValue())
}

func TestHandleSettingsUpdateRejectsUnknownSetting(t *testing.T) {
	s := newTestServer(t)
	sess := session.New(session.DefaultConfig(), clock.NewMock(), s.metrics, nil)
	before := s.provider.GetPhysics()

	data, err := json.Marshal(control.NewSettingsUpdate(categoryPhysics, "bogus", 1.0))
	require.NoError(t, err)

	s.handleControl(sess, data)

	require.Equal(t, before, s.provider.GetPhysics())

	var m dto.Metric
	require.NoError(t, s.metrics.ValidationFailedTotal.WithLabelValues("bogus").Write(&m))
	require.Equal(t, float64(1), m.GetCounter().GetValue())
}

func TestHandleSettingsUpdateAppliesValidRateLimit(t *testing.T) {
	s := newTestServer(t)
	sess := session.New(session.DefaultConfig(), clock.NewMock(), s.metrics, nil)

	data, err := json.Marshal(control.NewSettingsUpdate(categorySession, "message_rate_limit", 30.0))
	require.NoError(t, err)

	s.handleControl(sess, data)

	msg, ok := sess.Queue.Dequeue()
	require.True(t, ok)

	var reply control.SettingsMessage
	require.NoError(t, json.Unmarshal(msg.Payload, &reply))
	require.Equal(t, "message_rate_limit", reply.Setting)
}

func TestHandleApplyForcesRequestsAnExtraTickWithoutResuming(t *testing.T) {
	s := newTestServer(t)
	sess := session.New(session.DefaultConfig(), clock.NewMock(), s.metrics, nil)

	require.Equal(t, "paused", s.loop.State().String(), "loop starts paused until Run/Resume are called")

	data, err := json.Marshal(control.NewApplyForces(clock.NewMock().Now()))
	require.NoError(t, err)

	s.handleControl(sess, data)

	// ApplyForces schedules an extra tick (§6.3); it must not resume the
	// loop the way PauseSimulation{Enabled:false} does.
	require.Equal(t, "paused", s.loop.State().String())
}
