package oscmdexec

import (
	"os"
	"os/exec"

	"github.com/pkg/errors"
)

// Spec 描述一次基于 os/exec 的进程执行规范。
type Spec struct {
	// Name 为可执行文件名或路径（例如 "printenv" / "/bin/sh"）。
	Name string
	// Args 为参数列表（不包含 Name）。
	Args []string
	// Env 为子进程的完整环境变量列表，必须非 nil；空切片表示空环境。
	Env []string
}

// Process 是已启动的子进程，只能被 Wait 一次。
type Process interface {
	// Wait 阻塞直到子进程结束，返回其退出码。
	// 子进程非零退出不是错误；error 仅表示无法观察到子进程的结束。
	Wait() (int, error)
}

// Spawner 启动一个 Spec 对应的进程。
// 设计为可注入，便于测试中 mock。
type Spawner func(spec Spec) (Process, error)

// DefaultSpawner 使用 os/exec 启动子进程，stdin/stdout/stderr 直连到当前进程。
func DefaultSpawner(spec Spec) (Process, error) {
	if spec.Env == nil {
		spec.Env = []string{}
	}

	cmd := exec.Command(spec.Name, spec.Args...)
	cmd.Env = spec.Env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, "start process")
	}
	return &process{cmd: cmd}, nil
}

type process struct {
	cmd *exec.Cmd
}

func (p *process) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitCode(exitErr.ProcessState), nil
	}
	return 0, errors.Wrap(err, "wait process")
}
