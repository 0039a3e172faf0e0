//go:build unix

package oscmdexec

import (
	"os"
	"syscall"
)

// signalExitBase 与 shell 约定一致：被信号 N 终止的进程按 128+N 报告。
const signalExitBase = 128

func exitCode(state *os.ProcessState) int {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return signalExitBase + int(ws.Signal())
	}
	return state.ExitCode()
}
