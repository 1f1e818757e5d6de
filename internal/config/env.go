package config

import (
	"os"
	"runtime"
	"strings"

	"github.com/terassyi/vx/internal/platform"
)

// Env captures ambient facts about the running process that influence
// config resolution and environment-manager behaviour: the canonical
// platform and whether this looks like a headless/CI session.
type Env struct {
	Platform platform.Platform
	Headless bool
}

// DetectEnv detects the current environment.
func DetectEnv() *Env {
	return &Env{
		Platform: platform.Current(),
		Headless: detectHeadless(),
	}
}

func detectHeadless() bool {
	if isContainer() {
		return true
	}
	if runtime.GOOS == "linux" {
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			return true
		}
	}
	if os.Getenv("SSH_CLIENT") != "" || os.Getenv("SSH_TTY") != "" {
		return true
	}
	if os.Getenv("CI") != "" {
		return true
	}
	return false
}

func isContainer() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	if os.Getenv("container") != "" {
		return true
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true
	}
	if data, err := os.ReadFile("/proc/1/cgroup"); err == nil {
		content := string(data)
		if strings.Contains(content, "docker") ||
			strings.Contains(content, "lxc") ||
			strings.Contains(content, "kubepods") ||
			strings.Contains(content, "containerd") {
			return true
		}
	}
	return false
}
