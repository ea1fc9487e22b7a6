package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nodewee/doc-pipeline/pkg/constants"
)

// NormalizePath cleans a path for the current platform
func NormalizePath(path string) string {
	return filepath.Clean(path)
}

// GetAbsolutePath returns the cleaned absolute form of path
func GetAbsolutePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return NormalizePath(absPath), nil
}

// EnsureDir creates directory if it doesn't exist
func EnsureDir(dirPath string) error {
	if dirPath == "" {
		return fmt.Errorf("directory path cannot be empty")
	}
	return os.MkdirAll(dirPath, constants.DefaultDirPermission)
}

// Exists reports whether path exists. A dangling symlink counts as existing.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// IsDir reports whether path is an existing directory
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsExecutable checks if a file is executable
func IsExecutable(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0111 != 0
}

// ReplaceSymlink points link at target, removing whatever was at link before.
// The target is made absolute so the link survives being read from another
// working directory.
func ReplaceSymlink(target, link string) error {
	absTarget, err := GetAbsolutePath(target)
	if err != nil {
		return err
	}
	if err := os.Remove(link); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove existing %s: %w", link, err)
	}
	if err := os.Symlink(absTarget, link); err != nil {
		return fmt.Errorf("failed to link %s -> %s: %w", link, absTarget, err)
	}
	return nil
}

// ExpandPath expands environment variables and a leading ~ in path
func ExpandPath(path string) (string, error) {
	expanded := os.ExpandEnv(path)

	if strings.HasPrefix(expanded, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}

		if expanded == "~" {
			expanded = homeDir
		} else if strings.HasPrefix(expanded, "~/") {
			expanded = filepath.Join(homeDir, expanded[2:])
		}
	}

	return NormalizePath(expanded), nil
}
