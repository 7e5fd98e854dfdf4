package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := NewApp(&out, &errOut)
	err := app.RunContext(context.Background(), append([]string{"armtraj"}, args...))
	return out.String(), err
}

func csvLines(out string) []string {
	return strings.Split(strings.TrimSpace(out), "\n")
}

func TestPlanCSV(t *testing.T) {
	out, err := runApp(t, "plan", "--dof", "3", "--target", "1,1,1", "--format", "csv")
	test.That(t, err, test.ShouldBeNil)

	lines := csvLines(out)
	test.That(t, lines, test.ShouldHaveLength, 52)
	test.That(t, lines[0], test.ShouldEqual, "t,q1,q2,q3")
	test.That(t, lines[1], test.ShouldEqual, "0.0000,0.000000,0.000000,0.000000")
	test.That(t, lines[51], test.ShouldEqual, "1.0000,1.000000,1.000000,1.000000")
}

func TestPlanStartAndDiagnostics(t *testing.T) {
	out, err := runApp(t, "plan", "--dof", "2",
		"--start", "0.5,-0.5", "--target", "0.5,-0.5",
		"--duration", "0.5", "--dt", "0.1", "--format", "csv", "--diagnostics")
	test.That(t, err, test.ShouldBeNil)

	lines := csvLines(out)
	test.That(t, lines, test.ShouldHaveLength, 7)
	header := strings.Split(lines[0], ",")
	test.That(t, header, test.ShouldHaveLength, 1+7*2+1)
	test.That(t, header[len(header)-1], test.ShouldEqual, "J_acc")
	test.That(t, lines[1], test.ShouldStartWith, "0.0000,0.500000,-0.500000,")
}

func TestPlanTable(t *testing.T) {
	out, err := runApp(t, "plan", "--dof", "1", "--target", "0.25", "--duration", "0.1", "--dt", "0.05")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "Q1")
	test.That(t, out, test.ShouldContainSubstring, "0.250000")
}

func TestPlanErrors(t *testing.T) {
	_, err := runApp(t, "plan", "--dof", "3", "--target", "1,1")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot plan trajectory")

	_, err = runApp(t, "plan", "--dof", "1", "--target", "1", "--format", "xml")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown format")

	_, err = runApp(t, "plan", "--dof", "2", "--start", "1", "--target", "1,1")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid start")

	_, err = runApp(t, "plan", "--dof", "1", "--target", "1", "--duration", "1e-10")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPlanFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arm.json")
	conf := `{"arm": {"dof": 2, "default_duration_sec": 0.2, "default_sample_interval_sec": 0.1}}`
	test.That(t, os.WriteFile(path, []byte(conf), 0o600), test.ShouldBeNil)

	out, err := runApp(t, "--config", path, "plan", "--target", "0.1,0.2", "--format", "csv")
	test.That(t, err, test.ShouldBeNil)
	lines := csvLines(out)
	test.That(t, lines, test.ShouldHaveLength, 4)
	test.That(t, lines[0], test.ShouldEqual, "t,q1,q2")
	test.That(t, lines[3], test.ShouldEqual, "0.2000,0.100000,0.200000")

	_, err = runApp(t, "--config", filepath.Join(t.TempDir(), "missing.json"), "plan", "--target", "1")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestServeStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "armtraj.log")
	path := filepath.Join(dir, "arm.json")
	conf := `{"arm": {"dof": 2}, "log_file": "` + logFile + `"}`
	test.That(t, os.WriteFile(path, []byte(conf), 0o600), test.ShouldBeNil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out, errOut bytes.Buffer
	app := NewApp(&out, &errOut)
	err := app.RunContext(ctx, []string{"armtraj", "--config", path, "serve", "--address", "127.0.0.1:0"})
	test.That(t, err, test.ShouldBeNil)

	contents, err := os.ReadFile(logFile)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(contents), test.ShouldContainSubstring, "arm session started")
}

func TestPlanPlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.png")
	_, err := runApp(t, "plan", "--dof", "2", "--target", "1,-1", "--format", "csv", "--plot", path)
	test.That(t, err, test.ShouldBeNil)

	info, err := os.Stat(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)

	_, err = runApp(t, "plan", "--dof", "1", "--target", "1", "--plot", filepath.Join(t.TempDir(), "plan.unknown"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot save plot")
}
