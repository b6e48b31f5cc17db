package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"headerzoom/internal/config"
	"headerzoom/internal/schedule"
	"headerzoom/internal/telemetry"
)

var timeFixture = filepath.Join("..", "..", "testdata", "hierarchies", "time.yaml")

func testConfig(t *testing.T, backend string) config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Persistence.Backend = backend
	cfg.Persistence.DataDir = t.TempDir()
	cfg.UI.MotionLevel = "off"
	return cfg
}

func newTestApp(t *testing.T, cfg config.Config, buf *bytes.Buffer, clock schedule.Scheduler) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, Options{
		Path:      timeFixture,
		Columns:   100,
		ASCII:     true,
		Logger:    telemetry.NewWriter(buf, "debug"),
		Scheduler: clock,
	})
	require.NoError(t, err)
	return a
}

func TestNewOpensFixtureOnFirstGroup(t *testing.T) {
	var buf bytes.Buffer
	a := newTestApp(t, testConfig(t, "memory"), &buf, schedule.NewManual(time.Unix(0, 0)))
	defer a.Close()

	st := a.Engine().ProgressiveState()
	assert.Equal(t, []int{0, 1, 2}, st.VisibleLevels)
	assert.True(t, a.Engine().DisclosureActive())
	_, err := uuid.Parse(a.SessionID())
	assert.NoError(t, err)
	assert.Contains(t, a.view.View(), "Time 1")
}

func TestSessionStateSurvivesRestart(t *testing.T) {
	cfg := testConfig(t, "sqlite")
	var buf bytes.Buffer

	first := newTestApp(t, cfg, &buf, schedule.NewManual(time.Unix(0, 0)))
	require.True(t, first.Engine().StepDown())
	first.Close()

	second := newTestApp(t, cfg, &buf, schedule.NewManual(time.Unix(0, 0)))
	defer second.Close()
	assert.Equal(t, []int{1, 2, 3}, second.Engine().ProgressiveState().VisibleLevels)
	assert.Contains(t, buf.String(), "state.restored")
}

func TestLazyLevelsAreMaterialized(t *testing.T) {
	var buf bytes.Buffer
	clock := schedule.NewManual(time.Unix(0, 0))
	a := newTestApp(t, testConfig(t, "memory"), &buf, clock)
	defer a.Close()

	clock.Advance(time.Second)
	assert.True(t, a.Engine().ProgressiveState().IsLoaded(3))
	assert.Contains(t, buf.String(), "lazy.materialized")
}

func TestSortClickUpdatesStatus(t *testing.T) {
	var buf bytes.Buffer
	a := newTestApp(t, testConfig(t, "memory"), &buf, schedule.NewManual(time.Unix(0, 0)))
	defer a.Close()

	_, ok := a.Engine().ClickHeader("q-1-1")
	require.True(t, ok)
	assert.Contains(t, a.view.View(), "sort quarter")
	assert.Contains(t, buf.String(), "sort.changed")
}

func TestNewRejectsBadInput(t *testing.T) {
	var buf bytes.Buffer
	_, err := New(context.Background(), testConfig(t, "memory"), Options{
		Path:   filepath.Join(t.TempDir(), "missing.yaml"),
		Logger: telemetry.NewWriter(&buf, "debug"),
	})
	assert.Error(t, err)

	cfg := testConfig(t, "memory")
	cfg.Persistence.Backend = "etcd"
	_, err = New(context.Background(), cfg, Options{Path: timeFixture, Logger: telemetry.NewWriter(&buf, "debug")})
	assert.Error(t, err)
}
