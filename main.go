package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/lepinkainen/vfind/query"
	"github.com/lepinkainen/vfind/scan"
	"github.com/lepinkainen/vfind/ui"
	"github.com/lepinkainen/vfind/utils"
	"github.com/lepinkainen/vfind/video"
)

var Version = "dev"

const (
	defaultFilelistName = "video-filelist.txt"
	defaultFilelistDir  = "/tmp"
)

// errFilesSkipped marks a scan that completed but skipped one or more
// files; main translates it to exit code 2.
var errFilesSkipped = errors.New("one or more files were skipped")

type CLI struct {
	Directory string   `arg:"" help:"Directory to search for video files"`
	Filters   []string `arg:"" optional:"" passthrough:"" help:"Filter expressions joined by -a/-o, e.g. -duration '>=90:min' -a -container =mp4"`

	Workers  int           `help:"Number of parallel probe workers (0 = all CPUs)" default:"0" env:"VFIND_WORKERS"`
	Timeout  time.Duration `help:"Per-file probe timeout" default:"30s" env:"VFIND_TIMEOUT"`
	Filelist string        `help:"Write matching paths to this file; a directory value gets ${default_filelist} appended" type:"path"`
	Quiet    bool          `help:"Suppress the progress bar"`
	Debug    bool          `help:"Enable debug logging"`
	Version  kong.VersionFlag
}

func (cli *CLI) Run(log *zap.Logger) error {
	q, err := query.Parse(cli.Filters)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}

	if err := utils.ValidateProbeDependencies(); err != nil {
		return err
	}

	var classifier video.Classifier = video.XDGMime{}
	if !utils.HasXDGMime() {
		log.Debug("xdg-mime not found in PATH, classifying by extension")
		classifier = video.Extension{}
	}

	fmt.Println(ui.HeaderStyle.Render(fmt.Sprintf("vfind %s", Version)))
	if !q.Empty() {
		log.Debug("parsed query", zap.Int("filters", q.Len()))
	}

	scanner := &scan.Scanner{
		Prober:     video.FFProbe{},
		Classifier: classifier,
		Log:        log,
		Workers:    cli.Workers,
		Timeout:    cli.Timeout,
		Progress:   !cli.Quiet,
	}

	result, err := scanner.Run(context.Background(), cli.Directory, q)
	if err != nil {
		return err
	}

	for _, match := range result.Matches {
		fmt.Printf("File: \"%s\"\n", sanitizePath(match))
	}

	fmt.Println(ui.SuccessStyle.Render(fmt.Sprintf("✅ %d matches in %d videos (%d files scanned)",
		len(result.Matches), result.Videos, result.Files)))
	if result.Skipped > 0 {
		fmt.Println(ui.ErrorStyle.Render(fmt.Sprintf("⚠️  %d files skipped due to errors", result.Skipped)))
	}

	if cli.Filelist != "" {
		path, err := writeFilelist(cli.Filelist, result.Matches)
		if err != nil {
			return fmt.Errorf("failed to write filelist: %w", err)
		}
		fmt.Fprintln(os.Stderr, ui.InfoStyle.Render(fmt.Sprintf("Output to filelist: %s", path)))
	}

	if result.Skipped > 0 {
		return errFilesSkipped
	}
	return nil
}

// sanitizePath strips newlines so every match stays on one output line.
func sanitizePath(path string) string {
	return strings.TrimSpace(strings.ReplaceAll(path, "\n", ""))
}

// resolveFilelistPath expands a --filelist value: a directory (existing, or
// written with a trailing separator) gets the default filename appended.
func resolveFilelistPath(value string) string {
	if value == "" {
		return filepath.Join(defaultFilelistDir, defaultFilelistName)
	}
	if strings.HasSuffix(value, string(os.PathSeparator)) {
		return filepath.Join(value, defaultFilelistName)
	}
	if info, err := os.Stat(value); err == nil && info.IsDir() {
		return filepath.Join(value, defaultFilelistName)
	}
	return value
}

// writeFilelist writes the matched paths, one quoted path per line.
func writeFilelist(value string, matches []string) (string, error) {
	path := resolveFilelistPath(value)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}

	var sb strings.Builder
	for _, match := range matches {
		fmt.Fprintf(&sb, "\"%s\"\n", sanitizePath(match))
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("vfind"),
		kong.Description("Recursively find video files matching metadata filters."),
		kong.Vars{
			"version":          Version,
			"default_filelist": defaultFilelistName,
		},
	)

	log, err := newLogger(cli.Debug)
	ctx.FatalIfErrorf(err)
	defer func() { _ = log.Sync() }()

	err = ctx.Run(log)
	if errors.Is(err, errFilesSkipped) {
		os.Exit(2)
	}
	ctx.FatalIfErrorf(err)
}

// newLogger builds a console logger on stderr: warnings and up by default,
// everything with --debug.
func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}
