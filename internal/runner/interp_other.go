//go:build !windows

package runner

import "os/exec"

var scriptInterpreters = map[string][]string{
	".sh": {"sh"},
	".py": {"python3"},
}

var batchExtensions = map[string]bool{
	".bat": true,
	".cmd": true,
}

var shellCommand = []string{"sh", "-c"}

func hideWindow(cmd *exec.Cmd) {}
