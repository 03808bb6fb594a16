package config

import (
	"os"
	"path/filepath"
	"sync"
)

// EnvHome names the variable that pins the workspace home.
const EnvHome = "PAGEKIT_HOME"

var (
	homeOnce sync.Once
	homeDir  string
)

// homeResolvers are tried in order; the first non-empty answer wins.
var homeResolvers = []func() string{
	homeFromEnv,
	homeFromBinary,
	homeFromWorkdir,
}

// GetHome returns the workspace home: where config.yaml is looked up when
// no --config is given and where backend drivers are installed. The
// answer is computed once per process.
func GetHome() string {
	homeOnce.Do(func() {
		homeDir = "."
		for _, resolve := range homeResolvers {
			if dir := resolve(); dir != "" {
				homeDir = dir
				break
			}
		}
	})
	return homeDir
}

// GetDriversDir returns the install directory of a backend driver, such
// as "playwright".
func GetDriversDir(name string) string {
	return filepath.Join(GetHome(), "drivers", name)
}

func homeFromEnv() string {
	return os.Getenv(EnvHome)
}

// homeFromBinary returns <home> for a binary installed as <home>/bin/pagekit.
func homeFromBinary() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if real, err := filepath.EvalSymlinks(exe); err == nil {
		exe = real
	}
	bin := filepath.Dir(exe)
	if filepath.Base(bin) != "bin" {
		return ""
	}
	return filepath.Dir(bin)
}

func homeFromWorkdir() string {
	cwd, _ := os.Getwd()
	return cwd
}

// ResetHome forgets the computed home. Tests use it after changing the
// environment.
func ResetHome() {
	homeOnce = sync.Once{}
	homeDir = ""
}
