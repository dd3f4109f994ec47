package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/wagiedev/procplayer/internal/errors"
)

// Config holds configuration for program discovery.
type Config struct {
	// Program is the configured program name or path.
	Program string

	// Cwd is the directory relative paths are resolved against.
	// If empty, the process working directory is used.
	Cwd string

	// Logger is an optional logger for discovery operations.
	// If nil, a default no-op logger is used.
	Logger *slog.Logger
}

// Discoverer locates the player program.
type Discoverer interface {
	// Discover locates the player program.
	// Returns the absolute path to the program or an error.
	Discover(ctx context.Context) (string, error)
}

// discoverer implements the Discoverer interface.
type discoverer struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new program discoverer with the given configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}

	return &discoverer{
		cfg: cfg,
		log: log,
	}
}

// Discover locates the player program.
func (d *discoverer) Discover(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	program := strings.TrimSpace(d.cfg.Program)
	if program == "" {
		return "", &errors.ProgramNotFoundError{}
	}

	d.log.Debug("Discovering player program", "program", program)

	baseDir, err := d.baseDir()
	if err != nil {
		return "", err
	}

	// Explicit paths are used as given and only as given
	if strings.ContainsRune(program, os.PathSeparator) {
		path := program
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}

		if isExecutableFile(path) {
			d.log.Debug("Using explicit program path", "path", path)

			return path, nil
		}

		return "", &errors.ProgramNotFoundError{Program: program, SearchedPaths: []string{path}}
	}

	searchedPaths := make([]string, 0, 2)

	local := filepath.Join(baseDir, program)
	searchedPaths = append(searchedPaths, local)

	if isExecutableFile(local) {
		d.log.Debug("Found program in working directory", "path", local)

		return local, nil
	}

	searchedPaths = append(searchedPaths, "$PATH")

	if path, err := exec.LookPath(program); err == nil {
		abs, absErr := filepath.Abs(path)
		if absErr == nil {
			path = abs
		}

		d.log.Debug("Found program in PATH", "path", path)

		return path, nil
	}

	d.log.Warn("Player program not found", "program", program, "searched_paths", searchedPaths)

	return "", &errors.ProgramNotFoundError{Program: program, SearchedPaths: searchedPaths}
}

func (d *discoverer) baseDir() (string, error) {
	if d.cfg.Cwd != "" {
		return d.cfg.Cwd, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	return wd, nil
}

// isExecutableFile reports whether path is a regular file with an execute bit.
func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	return info.Mode().Perm()&0o111 != 0
}
