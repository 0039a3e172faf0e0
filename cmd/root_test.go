package cmd

import (
	"bytes"
	"os/exec"
	"runtime"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wangdayong228/envr/internal/infra/oscmdexec"
	"github.com/wangdayong228/envr/internal/launcher"
)

type exitProcess int

func (p exitProcess) Wait() (int, error) { return int(p), nil }

type recorder struct {
	calls []oscmdexec.Spec
	code  int
}

func (r *recorder) factory(logger *logrus.Logger) *launcher.Launcher {
	return launcher.NewLauncher(func(spec oscmdexec.Spec) (oscmdexec.Process, error) {
		r.calls = append(r.calls, spec)
		return exitProcess(r.code), nil
	}, func() []string { return []string{"PATH=/usr/bin"} }, logger)
}

func run(t *testing.T, r *recorder, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = Run(args, &out, &errOut, r.factory)
	return code, out.String(), errOut.String()
}

func TestRun_NoCommand(t *testing.T) {
	r := &recorder{}
	code, _, stderr := run(t, r)

	assert.Equal(t, 101, code)
	assert.Contains(t, stderr, "command not specified")
	assert.Contains(t, stderr, "fatal:")
	assert.Empty(t, r.calls)
}

func TestRun_BadTokenIsUsageError(t *testing.T) {
	r := &recorder{}
	code, _, stderr := run(t, r, "BADTOKEN", "--", "true")

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `"BADTOKEN" is not an equals-sign-separated key-value pair`)
	assert.Contains(t, stderr, "Usage:")
	assert.Empty(t, r.calls, "用法错误时不应调用 spawner")
}

func TestRun_UnknownFlag(t *testing.T) {
	r := &recorder{}
	code, _, stderr := run(t, r, "--bogus", "--", "true")

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "bogus")
	assert.Empty(t, r.calls)
}

func TestRun_MirrorsExitCode(t *testing.T) {
	r := &recorder{code: 3}
	code, stdout, stderr := run(t, r, "FOO=bar", "--", "printenv", "FOO")

	assert.Equal(t, 3, code)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
	require.Len(t, r.calls, 1)
	assert.Equal(t, "printenv", r.calls[0].Name)
	assert.Contains(t, r.calls[0].Env, "FOO=bar")
	assert.Contains(t, r.calls[0].Env, "PATH=/usr/bin")
}

func TestRun_Help(t *testing.T) {
	r := &recorder{}
	code, stdout, _ := run(t, r, "--help")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "--ignore-environment")
	assert.Empty(t, r.calls)
}

func TestRun_Version(t *testing.T) {
	r := &recorder{}
	code, stdout, _ := run(t, r, "-V")

	assert.Equal(t, 0, code)
	assert.Equal(t, "envr "+Version+"\n", stdout)
	assert.Empty(t, r.calls)
}

func TestRun_Verbose(t *testing.T) {
	r := &recorder{}
	code, _, stderr := run(t, r, "-v", "SECRET=hunter2", "--", "true")

	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "parsed invocation")
	assert.Contains(t, stderr, "spawning child process")
	assert.NotContains(t, stderr, "hunter2")
}

func TestRun_SpawnFailure(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run([]string{"--", "envr-definitely-not-a-real-binary"}, &out, &errOut, launcher.DefaultLauncher)

	assert.Equal(t, 102, code)
	assert.Contains(t, errOut.String(), "envr-definitely-not-a-real-binary")
	assert.Contains(t, errOut.String(), "failed to spawn")
}

func requirePrintenv(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("跳过：需要 POSIX 环境")
	}
	if _, err := exec.LookPath("printenv"); err != nil {
		t.Skip("跳过：PATH 中没有 printenv")
	}
}

func TestRun_EndToEnd_Overlay(t *testing.T) {
	requirePrintenv(t)

	var out, errOut bytes.Buffer
	code := Run([]string{"FOO=bar", "--", "sh", "-c", `[ "$(printenv FOO)" = bar ]`}, &out, &errOut, launcher.DefaultLauncher)

	assert.Equal(t, 0, code, errOut.String())
}

func TestRun_EndToEnd_IgnoreEnvironment(t *testing.T) {
	requirePrintenv(t)
	t.Setenv("PATH", "/usr/bin:/bin")

	var out, errOut bytes.Buffer
	code := Run([]string{"--ignore-environment", "--", "printenv", "PATH"}, &out, &errOut, launcher.DefaultLauncher)

	assert.NotEqual(t, 0, code)
	assert.Less(t, code, 101)
}

func TestRun_CompletionTokensArePassedThrough(t *testing.T) {
	for _, first := range []string{cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd} {
		r := &recorder{code: 5}
		code, stdout, stderr := run(t, r, first, "x")

		assert.Equal(t, 5, code)
		assert.Empty(t, stdout)
		assert.Empty(t, stderr)
		require.Len(t, r.calls, 1)
		assert.Equal(t, first, r.calls[0].Name)
		assert.Equal(t, []string{"x"}, r.calls[0].Args)
	}
}

func TestReport_UnhandledOutcomeIsNotSuccess(t *testing.T) {
	var errOut bytes.Buffer
	code := report(newRootCmd(func(*cobra.Command, []string) {}), launcher.Outcome{}, &errOut)

	assert.NotEqual(t, 0, code)
	assert.Equal(t, launcher.ExitUsage, code)
	assert.Contains(t, errOut.String(), "invocation was not handled")
	assert.NotContains(t, errOut.String(), "fatal: \n")
}
