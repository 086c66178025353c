//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName  = "portkiller"
	binDir      = "bin"
	coverageDir = "coverage"
	versionVar  = "github.com/productdevbook/portkiller/cmd.version"
)

// Default target runs all checks and builds.
var Default = All

// All runs fmt, lint and test, then builds.
func All() error {
	mg.Deps(Fmt, Lint, Test)
	return Build()
}

// Build compiles the binary for the current platform.
func Build() error {
	out := filepath.Join(binDir, binaryName)
	if runtime.GOOS == "windows" {
		out += ".exe"
	}

	ldflags := "-s -w"
	if v := os.Getenv("VERSION"); v != "" {
		ldflags += fmt.Sprintf(" -X %s=%s", versionVar, v)
	}

	fmt.Println("Building", out+"...")
	return sh.RunWithV(map[string]string{"CGO_ENABLED": "0"}, "go", "build", "-ldflags", ldflags, "-o", out, ".")
}

// Test runs unit tests.
func Test() error {
	return sh.RunV("go", "test", "-short", "./...")
}

// TestRace runs unit tests with the race detector.
func TestRace() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Coverage writes an HTML coverage report.
func Coverage() error {
	if err := os.MkdirAll(coverageDir, 0o755); err != nil {
		return err
	}
	profile := filepath.Join(coverageDir, "coverage.out")
	if err := sh.RunV("go", "test", "-coverprofile="+profile, "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-html="+profile, "-o", filepath.Join(coverageDir, "coverage.html"))
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Fmt formats all Go files.
func Fmt() error {
	return sh.RunV("gofmt", "-w", "-s", ".")
}

// Clean removes build output.
func Clean() error {
	for _, dir := range []string{binDir, coverageDir} {
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
	}
	return nil
}
