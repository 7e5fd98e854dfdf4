package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.viam.com/test"

	"go.viam.com/armtraj/logging"
	"go.viam.com/armtraj/services/trajectory"
)

const sampleConfig = `{
	"arm": {
		"dof": 3,
		"limits": {
			"min_position": [-1, -2, -3],
			"max_position": [1, 2, 3],
			"max_velocity": [0.5, 0.5, 0.5]
		},
		"default_duration_sec": 2,
		"simulate_time": true,
		"tick_interval": "5ms"
	},
	"network": {
		"bind_address": "${ARMTRAJ_TEST_ADDR}"
	},
	"log_level": "debug",
	"log_file": "/var/log/armtraj.log"
}`

func TestRead(t *testing.T) {
	logger := logging.NewTestLogger(t)
	t.Setenv("ARMTRAJ_TEST_ADDR", "127.0.0.1:9999")

	path := filepath.Join(t.TempDir(), "arm.json")
	test.That(t, os.WriteFile(path, []byte(sampleConfig), 0o600), test.ShouldBeNil)

	cfg, err := Read(context.Background(), path, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, path)
	test.That(t, cfg.Network.BindAddress, test.ShouldEqual, "127.0.0.1:9999")
	test.That(t, cfg.Arm.DoF, test.ShouldEqual, 3)
	test.That(t, cfg.Arm.Limits.MaxPosition, test.ShouldResemble, []float64{1, 2, 3})
	test.That(t, cfg.Arm.DefaultDurationSec, test.ShouldEqual, 2.0)
	test.That(t, cfg.Arm.DefaultSampleIntervalSec, test.ShouldEqual, trajectory.DefaultSampleInterval)
	test.That(t, cfg.Arm.SimulateTime, test.ShouldBeTrue)
	test.That(t, cfg.Arm.TickInterval, test.ShouldEqual, 5*time.Millisecond)
	test.That(t, cfg.Level(), test.ShouldEqual, logging.DEBUG)
	test.That(t, cfg.LogFile, test.ShouldEqual, "/var/log/armtraj.log")

	_, err = Read(context.Background(), filepath.Join(t.TempDir(), "missing.json"), logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFromReaderErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)
	for _, tc := range []struct {
		name, body, err string
	}{
		{"bad json", `{"arm": `, "failed to decode"},
		{"unknown key", `{"arm": {"dof": 6, "speed": 2}}`, "speed"},
		{"bad limits", `{"arm": {"dof": 2, "limits": {"min_position": [0], "max_position": [1, 1], "max_velocity": [1, 1]}}}`, "arm.limits"},
		{"bad level", `{"log_level": "loud"}`, "log_level"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromReader(context.Background(), "", strings.NewReader(tc.body), logger)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.err)
		})
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := FromReader(context.Background(), "", strings.NewReader(`{}`), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Arm.DoF, test.ShouldEqual, trajectory.DefaultDoF)
	test.That(t, cfg.Network.BindAddress, test.ShouldEqual, DefaultBindAddress)
	test.That(t, cfg.Level(), test.ShouldEqual, logging.INFO)

	test.That(t, NewDefaultConfig(), test.ShouldResemble, cfg)
}
