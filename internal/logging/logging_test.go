package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, LevelInfo, cfg.Level)
	assert.NotNil(t, cfg.Output)
	assert.False(t, cfg.JSON)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf})

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown", "mtu", 1500)
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "mtu=1500")
}

func TestJSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf, JSON: true}).
		WithComponent("sockio").
		WithError(errors.New("boom"))

	l.Debug("ioctl", "op", "get-mtu")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "ioctl", rec["msg"])
	assert.Equal(t, "sockio", rec["component"])
	assert.Equal(t, "boom", rec["error"])
	assert.Equal(t, "get-mtu", rec["op"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		err  bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{" warning ", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, v := range tests {
		got, err := ParseLevel(v.in)
		if v.err {
			assert.Error(t, err, v.in)
			continue
		}
		assert.NoError(t, err, v.in)
		assert.Equal(t, v.want, got, v.in)
	}
}

func TestSetDefault(t *testing.T) {
	orig := Default()
	t.Cleanup(func() { SetDefault(orig) })

	var buf bytes.Buffer
	SetDefault(New(Config{Level: LevelDebug, Output: &buf}))

	WithComponent("cli").Info("hello")
	Default().Debug("there")
	assert.Contains(t, buf.String(), "component=cli")
	assert.Contains(t, buf.String(), "msg=there")
}
