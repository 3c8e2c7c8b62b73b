// Package trash moves an existing destination out of the way before it is
// regenerated. It uses the system trash where available and otherwise
// renames the path to a timestamped backup next to it. Nothing is ever
// deleted permanently.
package trash

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jamesainslie/mlcc/pkg/mlcc/logging"
)

var logger = logging.Get("trash")

// commandTimeout is the maximum time to wait for trash commands.
const commandTimeout = 30 * time.Second

// backupLayout is the timestamp suffix of backup paths.
const backupLayout = "20060102-150405"

// Method says how a path was moved.
type Method string

// Move methods.
const (
	MethodSystem Method = "trash"
	MethodBackup Method = "backup"
)

// Result describes a completed move.
type Result struct {
	Method Method

	// Backup is the new location when Method is MethodBackup.
	Backup string
}

// MoveToTrash moves a file or directory to the system trash.
// On macOS it uses Finder via AppleScript, on Linux gio or trash-cli.
// When neither works the path is renamed to <path>.bak-<timestamp>.
func MoveToTrash(path string) (Result, error) {
	if _, err := os.Stat(path); err != nil {
		return Result{}, fmt.Errorf("cannot trash %q: %w", path, err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Result{}, fmt.Errorf("cannot resolve absolute path for %q: %w", path, err)
	}

	var moved bool
	switch runtime.GOOS {
	case "darwin":
		moved = trashMacOS(absPath)
	case "linux":
		moved = trashLinux(absPath)
	}
	if moved {
		logger.Info("moved to trash", "path", absPath)
		return Result{Method: MethodSystem}, nil
	}
	return backup(absPath, time.Now())
}

func trashMacOS(path string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	script := fmt.Sprintf(`tell application "Finder" to delete POSIX file %q`, path)
	return run(ctx, "osascript", "-e", script)
}

func trashLinux(path string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	// gio covers GNOME/GTK desktops; trash-put is the XDG trash-cli.
	if run(ctx, "gio", "trash", path) {
		return true
	}
	return run(ctx, "trash-put", path)
}

func run(ctx context.Context, name string, args ...string) bool {
	bin, err := exec.LookPath(name)
	if err != nil {
		return false
	}
	if err := exec.CommandContext(ctx, bin, args...).Run(); err != nil {
		logger.Debug("trash command failed", "command", name, "error", err)
		return false
	}
	return true
}

// backup renames path to a free timestamped sibling.
func backup(path string, now time.Time) (Result, error) {
	base := path + ".bak-" + now.Format(backupLayout)
	target := base
	for i := 1; ; i++ {
		if _, err := os.Lstat(target); os.IsNotExist(err) {
			break
		}
		target = fmt.Sprintf("%s-%d", base, i)
	}
	if err := os.Rename(path, target); err != nil {
		return Result{}, fmt.Errorf("failed to move %q aside: %w", path, err)
	}
	logger.Info("moved to backup", "path", path, "backup", target)
	return Result{Method: MethodBackup, Backup: target}, nil
}
