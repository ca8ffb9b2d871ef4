//go:build !windows

// Package startup registers the runner for launch at login. Only Windows is
// supported; elsewhere the operator wires it into their init system.
package startup

import "errors"

var ErrUnsupported = errors.New("startup registration is only supported on Windows")

func Install(appName string) (string, error) { return "", ErrUnsupported }

func Uninstall(appName string) (string, error) { return "", ErrUnsupported }
