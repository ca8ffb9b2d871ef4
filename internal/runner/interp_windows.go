//go:build windows

package runner

import (
	"os/exec"
	"syscall"
)

var scriptInterpreters = map[string][]string{
	".ps1": {"powershell", "-ExecutionPolicy", "Bypass", "-File"},
	".py":  {"python"},
}

var batchExtensions = map[string]bool{
	".bat": true,
	".cmd": true,
}

var shellCommand = []string{"cmd.exe", "/c"}

// hideWindow keeps directly spawned programs from flashing a console window.
func hideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}
