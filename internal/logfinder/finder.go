// Package logfinder locates VRChat log directories and output_log files.
package logfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
)

// EnvLogDir overrides log directory detection.
const EnvLogDir = "YAIBA_LOGDIR"

// LogFilePattern matches the files the VRChat client writes per session.
const LogFilePattern = "output_log_*.txt"

// vrchatAppID is the Steam app id of VRChat, used for the Proton prefix.
const vrchatAppID = "438100"

// Sentinel errors.
var (
	ErrLogDirNotFound = errors.New("log directory not found")
	ErrNoLogFiles     = errors.New("no log files found")
)

// DefaultLogDirs returns candidate VRChat log directories in priority order:
// LocalLow on Windows, the Steam Proton prefix elsewhere.
func DefaultLogDirs() []string {
	if runtime.GOOS == "windows" {
		return windowsLogDirs()
	}
	return protonLogDirs()
}

func windowsLogDirs() []string {
	localAppData := os.Getenv("LOCALAPPDATA")
	if localAppData == "" {
		if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
			localAppData = filepath.Join(userProfile, "AppData", "Local")
		}
	}
	if localAppData == "" {
		return nil
	}

	localLow := filepath.Join(filepath.Dir(localAppData), "LocalLow")
	return []string{
		filepath.Join(localLow, "VRChat", "VRChat"),
		filepath.Join(localLow, "VRChat", "vrchat"),
	}
}

func protonLogDirs() []string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return nil
	}
	var dirs []string
	for _, steam := range []string{
		filepath.Join(home, ".steam", "steam"),
		filepath.Join(home, ".local", "share", "Steam"),
	} {
		dirs = append(dirs, filepath.Join(steam, "steamapps", "compatdata", vrchatAppID,
			"pfx", "drive_c", "users", "steamuser", "AppData", "LocalLow", "VRChat", "VRChat"))
	}
	return dirs
}

// FindLogDir returns the VRChat log directory.
//
// Priority:
//  1. explicit (if non-empty)
//  2. YAIBA_LOGDIR environment variable
//  3. Auto-detect from DefaultLogDirs()
//
// Returns ErrLogDirNotFound if no valid directory is found.
// The returned path has symlinks resolved.
func FindLogDir(explicit string) (string, error) {
	if explicit != "" {
		if resolved := resolveAndValidateLogDir(explicit); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s is invalid or contains no log files", ErrLogDirNotFound, explicit)
	}

	if envDir := os.Getenv(EnvLogDir); envDir != "" {
		if resolved := resolveAndValidateLogDir(envDir); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s environment variable points to invalid directory", ErrLogDirNotFound, EnvLogDir)
	}

	for _, dir := range DefaultLogDirs() {
		if resolved := resolveAndValidateLogDir(dir); resolved != "" {
			return resolved, nil
		}
	}

	return "", ErrLogDirNotFound
}

// ListLogFiles returns the log files in dir, oldest first by modification
// time. Files that cannot be stat'ed are skipped.
func ListLogFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, LogFilePattern))
	if err != nil {
		return nil, fmt.Errorf("globbing log files: %w", err)
	}

	type fileInfo struct {
		path    string
		modTime int64
	}
	files := make([]fileInfo, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		files = append(files, fileInfo{path: path, modTime: info.ModTime().UnixNano()})
	}
	if len(files) == 0 {
		return nil, ErrNoLogFiles
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].modTime < files[j].modTime
	})

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

// FindLatestLogFile returns the most recently modified log file in dir.
//
// Returns ErrNoLogFiles if no log files are found.
func FindLatestLogFile(dir string) (string, error) {
	files, err := ListLogFiles(dir)
	if err != nil {
		return "", err
	}
	return files[len(files)-1], nil
}

// resolveAndValidateLogDir resolves symlinks and checks that dir holds at
// least one log file. Returns "" if not.
func resolveAndValidateLogDir(dir string) string {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ""
	}

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		resolved = dir
	}

	matches, err := filepath.Glob(filepath.Join(resolved, LogFilePattern))
	if err != nil || len(matches) == 0 {
		return ""
	}
	return resolved
}
