//go:build stave

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
)

// Default target when running `stave` with no arguments.
var Default = Build

// Aliases for common targets.
var Aliases = map[string]interface{}{
	"b": Build,
	"t": Test,
	"l": Lint,
	"s": Smoke,
	"c": Clean,
}

const (
	binaryName = "mlcc"
	mainPkg    = "./cmd/mlcc"
	binDir     = "bin"
)

// frameworks are generated by the Smoke target.
var frameworks = []string{"sklearn", "xgboost", "tensorflow", "transformers"}

// All runs lint, tests, the build and the smoke run.
func All() error {
	st.Deps(Lint, Test)
	st.Deps(Build)
	st.Deps(Smoke)
	return nil
}

// Build compiles the mlcc binary.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating bin directory: %w", err)
	}
	return sh.RunV("go", "build", "-ldflags", buildLdflags(), "-o", binaryPath(), mainPkg)
}

// Install installs mlcc into GOBIN.
func Install() error {
	return sh.RunV("go", "install", "-ldflags", buildLdflags(), mainPkg)
}

// Test runs all tests with race detection and coverage.
func Test() error {
	return sh.RunV("go", "test", "-race", "-cover", "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Smoke generates a project for every framework with the built binary,
// non-interactively, into a scratch directory.
func Smoke() error {
	st.Deps(Build)

	scratch, err := os.MkdirTemp("", "mlcc-smoke-")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	bin, err := filepath.Abs(binaryPath())
	if err != nil {
		return err
	}
	// keep the smoke run away from the real global config and history
	for k, v := range map[string]string{
		"HOME":            scratch,
		"XDG_CONFIG_HOME": filepath.Join(scratch, "config"),
		"XDG_STATE_HOME":  filepath.Join(scratch, "state"),
		"XDG_DATA_HOME":   filepath.Join(scratch, "data"),
	} {
		if err := os.Setenv(k, v); err != nil {
			return err
		}
	}
	for _, fw := range frameworks {
		dest := filepath.Join(scratch, fw)
		if st.Verbose() {
			fmt.Printf("Generating %s into %s\n", fw, dest)
		}
		if err := sh.Run(bin, "--no-interactive", "--quiet",
			"--framework", fw, "--project-name", "smoke-"+fw, "--destination", dest); err != nil {
			return fmt.Errorf("generating %s: %w", fw, err)
		}
		if _, err := os.Stat(filepath.Join(dest, "Dockerfile")); err != nil {
			return fmt.Errorf("generating %s: %w", fw, err)
		}
	}
	return nil
}

// Clean removes build artifacts.
func Clean() error {
	if st.Verbose() {
		fmt.Printf("Removing %s/\n", binDir)
	}
	return sh.Rm(binDir + "/")
}

// Fmt formats all Go code.
func Fmt() error {
	if err := sh.Run("gofmt", "-w", "."); err != nil {
		return fmt.Errorf("running gofmt: %w", err)
	}
	return sh.Run("goimports", "-w", ".")
}

// Tidy runs go mod tidy.
func Tidy() error {
	return sh.RunV("go", "mod", "tidy")
}

func binaryPath() string {
	p := filepath.Join(binDir, binaryName)
	if runtime.GOOS == "windows" {
		p += ".exe"
	}
	return p
}

// buildLdflags returns ldflags for version injection.
func buildLdflags() string {
	version := "dev"
	commit := "unknown"
	date := time.Now().Format(time.RFC3339)

	if v, err := sh.Output("git", "describe", "--tags", "--always"); err == nil && v != "" {
		version = strings.TrimSpace(v)
	}
	if c, err := sh.Output("git", "rev-parse", "--short", "HEAD"); err == nil && c != "" {
		commit = strings.TrimSpace(c)
	}
	return fmt.Sprintf("-X main.version=%s -X main.commit=%s -X main.date=%s", version, commit, date)
}
