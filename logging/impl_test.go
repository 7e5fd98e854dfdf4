package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

func TestLevelsAndSublogger(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)

	logger.Debugw("debug", "k", 1)
	logger.Info("info")
	test.That(t, observed.Len(), test.ShouldEqual, 2)

	logger.SetLevel(WARN)
	logger.Infof("dropped %d", 1)
	logger.Warnf("kept %d", 2)
	test.That(t, observed.Len(), test.ShouldEqual, 3)
	test.That(t, observed.All()[2].Message, test.ShouldEqual, "kept 2")
	test.That(t, observed.All()[2].Level, test.ShouldEqual, zapcore.WarnLevel)

	sub := logger.Sublogger("planner")
	sub.SetLevel(DEBUG)
	sub.Debug("from sub")
	test.That(t, observed.Len(), test.ShouldEqual, 4)
	test.That(t, observed.All()[3].LoggerName, test.ShouldEqual, "planner")
	test.That(t, logger.GetLevel(), test.ShouldEqual, WARN)
}

func TestDebugMode(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	logger.SetLevel(INFO)

	logger.CDebugf(context.Background(), "dropped")
	test.That(t, observed.Len(), test.ShouldEqual, 0)

	ctx := EnableDebugMode(context.Background(), "")
	test.That(t, IsDebugMode(ctx), test.ShouldBeTrue)
	logger.CDebugw(ctx, "kept", "key", "value")
	test.That(t, observed.Len(), test.ShouldEqual, 1)
	test.That(t, observed.All()[0].ContextMap()["key"], test.ShouldEqual, "value")
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		in  string
		out Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"warning", WARN},
		{"Error", ERROR},
	} {
		level, err := LevelFromString(tc.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.out)
	}

	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "armtraj.log")
	appender := NewFileAppender(path)
	defer func() {
		test.That(t, appender.Close(), test.ShouldBeNil)
	}()

	logger := NewBlankLogger("file")
	logger.AddAppender(appender)
	logger.Infow("planned", "samples", 51)
	test.That(t, logger.Sync(), test.ShouldBeNil)

	contents, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(contents), test.ShouldContainSubstring, `"msg":"planned"`)
	test.That(t, string(contents), test.ShouldContainSubstring, `"samples":51`)
	test.That(t, string(contents), test.ShouldContainSubstring, `"logger":"file"`)
}

func TestConsoleAppenderSyncOnPipe(t *testing.T) {
	r, w, err := os.Pipe()
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, r.Close(), test.ShouldBeNil)
		test.That(t, w.Close(), test.ShouldBeNil)
	}()

	logger := NewBlankLogger("pipe")
	logger.AddAppender(ConsoleAppender{w})
	logger.Info("to a pipe")
	test.That(t, logger.Sync(), test.ShouldBeNil)

	buf := make([]byte, 256)
	n, err := r.Read(buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(buf[:n]), test.ShouldContainSubstring, "to a pipe")
}

func TestStderrLoggerSync(t *testing.T) {
	logger := NewLogger("stderr")
	logger.Info("synced")
	test.That(t, logger.Sync(), test.ShouldBeNil)
}
