// Package launcher 根据解析后的参数启动子进程、等待其结束，并把结果归约为 Outcome。
//
// 本包从不调用 os.Exit；退出码由调用方根据 Outcome.Code 统一处理。
package launcher

import (
	"fmt"
	"io"
	"os"

	"github.com/kballard/go-shellquote"
	"github.com/sirupsen/logrus"
	"github.com/wangdayong228/envr/internal/constants/enums"
	"github.com/wangdayong228/envr/internal/envargs"
	"github.com/wangdayong228/envr/internal/environ"
	"github.com/wangdayong228/envr/internal/infra/oscmdexec"
)

// 固定退出码，需保持兼容。
const (
	ExitSuccess        = 0
	ExitUsage          = 2
	ExitMissingCommand = 101
	ExitSpawnFailure   = 102
	ExitWaitFailure    = 103
)

// Outcome 是一次调用的最终结果。Message 仅在 Kind 为失败类时非空。
type Outcome struct {
	Kind    enums.OutcomeKind
	Code    int
	Message string
}

// Usage 把参数解析错误转为 Outcome。
func Usage(err error) Outcome {
	return Outcome{Kind: enums.OutcomeKindUsageError, Code: ExitUsage, Message: err.Error()}
}

// Launcher 通过注入 Spawner 与 Environ，便于在测试中 mock 进程创建与父进程环境。
type Launcher struct {
	Spawner oscmdexec.Spawner
	// Environ 返回父进程环境快照，默认 os.Environ。
	Environ func() []string
	Logger  *logrus.Logger
}

func NewLauncher(spawner oscmdexec.Spawner, env func() []string, logger *logrus.Logger) *Launcher {
	return &Launcher{Spawner: spawner, Environ: env, Logger: logger}
}

func DefaultLauncher(logger *logrus.Logger) *Launcher {
	return NewLauncher(oscmdexec.DefaultSpawner, os.Environ, logger)
}

// Spec 由解析结果派生子进程规范；CommandAndArgs 为空时返回 false。
func (l *Launcher) Spec(a *envargs.Args) (oscmdexec.Spec, bool) {
	if len(a.CommandAndArgs) == 0 {
		return oscmdexec.Spec{}, false
	}

	var parent []string
	if !a.IgnoreEnvironment {
		parent = l.environ()
	}
	return oscmdexec.Spec{
		Name: a.CommandAndArgs[0],
		Args: a.CommandAndArgs[1:],
		Env:  environ.Build(parent, a.IgnoreEnvironment, a.Variables),
	}, true
}

// Launch 启动子进程并同步等待其结束。没有超时、没有取消、没有重试。
func (l *Launcher) Launch(a *envargs.Args) Outcome {
	log := l.logger()

	spec, ok := l.Spec(a)
	if !ok {
		return Outcome{
			Kind:    enums.OutcomeKindMissingCommand,
			Code:    ExitMissingCommand,
			Message: "command not specified",
		}
	}

	log.WithFields(logrus.Fields{
		"command":            spec.Name,
		"args":               len(spec.Args),
		"ignore_environment": a.IgnoreEnvironment,
		"overlay_keys":       environ.Keys(a.Variables),
		"env_size":           len(spec.Env),
	}).Debug("spawning child process")

	spawner := l.Spawner
	if spawner == nil {
		spawner = oscmdexec.DefaultSpawner
	}

	proc, err := spawner(spec)
	if err != nil {
		return Outcome{
			Kind:    enums.OutcomeKindSpawnFailure,
			Code:    ExitSpawnFailure,
			Message: fmt.Sprintf("command %q failed to spawn: %v", shellquote.Join(a.CommandAndArgs...), err),
		}
	}

	code, err := proc.Wait()
	if err != nil {
		return Outcome{
			Kind:    enums.OutcomeKindWaitFailure,
			Code:    ExitWaitFailure,
			Message: fmt.Sprintf("unable to wait for command to complete: %v", err),
		}
	}

	log.WithField("exit_code", code).Debug("child process exited")
	return Outcome{Kind: enums.OutcomeKindSuccess, Code: code}
}

func (l *Launcher) environ() []string {
	if l.Environ == nil {
		return os.Environ()
	}
	return l.Environ()
}

func (l *Launcher) logger() *logrus.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	return discard
}
