//go:build windows

package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// batPath locates the launcher batch file in the user's Startup folder.
func batPath(appName string) (string, error) {
	appData := os.Getenv("APPDATA")
	if appData == "" {
		return "", fmt.Errorf("APPDATA is not set")
	}
	dir := filepath.Join(appData, "Microsoft", "Windows", "Start Menu", "Programs", "Startup")
	return filepath.Join(dir, appName+".bat"), nil
}

// Install writes a Startup-folder batch file that launches the current
// binary at login, detached from any console window.
func Install(appName string) (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	path, err := batPath(appName)
	if err != nil {
		return "", err
	}

	content := strings.Join([]string{
		"@echo off",
		fmt.Sprintf(`cd /d "%s"`, filepath.Dir(exe)),
		fmt.Sprintf(`start "" "%s"`, exe),
		"",
	}, "\r\n")

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write startup script: %w", err)
	}
	return path, nil
}

// Uninstall removes the Startup-folder batch file if present.
func Uninstall(appName string) (string, error) {
	path, err := batPath(appName)
	if err != nil {
		return "", err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return path, nil
		}
		return "", fmt.Errorf("remove startup script: %w", err)
	}
	return path, nil
}
