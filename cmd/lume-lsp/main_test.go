package main

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_VersionFlag(t *testing.T) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := run([]string{"--version"})

	_ = w.Close()
	os.Stdout = old

	if err != nil {
		t.Errorf("run(--version) returned error: %v", err)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	output := buf.String()

	if !strings.Contains(output, "lume-lsp") {
		t.Errorf("version output missing 'lume-lsp': %q", output)
	}
}

func TestRun_HelpFlag(t *testing.T) {
	err := run([]string{"-help"})
	if err != nil {
		t.Errorf("run(-help) returned error: %v", err)
	}
}

func TestRun_InvalidFlag(t *testing.T) {
	err := run([]string{"--invalid-flag-xyz"})
	if err == nil {
		t.Error("run(--invalid-flag-xyz) should return an error")
	}
}

func TestSetupLogger_VerbosityLevels(t *testing.T) {
	for v := 0; v <= 3; v++ {
		logger, cleanup, err := setupLogger(v, "")
		if err != nil {
			t.Errorf("setupLogger(%d, \"\") returned error: %v", v, err)
			continue
		}
		if logger == nil {
			t.Errorf("setupLogger(%d, \"\") returned nil logger", v)
		}
		if cleanup == nil {
			t.Errorf("setupLogger(%d, \"\") returned nil cleanup", v)
		} else {
			cleanup()
		}
	}
}

func TestSetupLogger_FileCreation(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "test.log")

	logger, cleanup, err := setupLogger(1, logPath)
	if err != nil {
		t.Fatalf("setupLogger failed: %v", err)
	}

	if logger == nil {
		cleanup()
		t.Fatal("logger is nil")
	}

	logger.Info("test message")
	cleanup()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty")
	}
	if !strings.Contains(string(data), "test message") {
		t.Errorf("log file doesn't contain test message: %s", data)
	}
}

func TestSetupLogger_FileAppends(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "test.log")

	if err := os.WriteFile(logPath, []byte("existing\n"), 0o600); err != nil {
		t.Fatalf("failed to create initial log file: %v", err)
	}

	logger, cleanup, err := setupLogger(1, logPath)
	if err != nil {
		t.Fatalf("setupLogger failed: %v", err)
	}

	logger.Info("appended message")
	cleanup()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "existing") {
		t.Error("log file should preserve existing content")
	}
	if !strings.Contains(content, "appended message") {
		t.Error("log file should contain appended message")
	}
}

func TestFlagParsing_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	logFile := fs.String("log-file", "", "")
	root := fs.String("root", "", "")
	showVer := fs.Bool("version", false, "")

	if err := fs.Parse([]string{}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if *logFile != "" {
		t.Errorf("default log-file: got %q, want %q", *logFile, "")
	}
	if *root != "" {
		t.Errorf("default root: got %q, want %q", *root, "")
	}
	if *showVer {
		t.Error("default version: got true, want false")
	}
}

func TestFlagParsing_VerboseRepeatable(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var verbose int
	fs.BoolFunc("v", "", func(string) error {
		verbose++
		return nil
	})

	if err := fs.Parse([]string{"-v", "-v", "-v"}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if verbose != 3 {
		t.Errorf("verbose count = %d, want 3", verbose)
	}
}

func TestFlagParsing_AllOptions(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	logFile := fs.String("log-file", "", "")
	root := fs.String("root", "", "")
	showVer := fs.Bool("version", false, "")

	err := fs.Parse([]string{
		"--log-file", "/tmp/test.log",
		"--root", "/path/to/root",
		"--version",
	})
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("parse failed: %v", err)
	}

	if *logFile != "/tmp/test.log" {
		t.Errorf("log-file: got %q, want %q", *logFile, "/tmp/test.log")
	}
	if *root != "/path/to/root" {
		t.Errorf("root: got %q, want %q", *root, "/path/to/root")
	}
	if !*showVer {
		t.Error("version: got false, want true")
	}
}

func TestIsCleanShutdown(t *testing.T) {
	if !isCleanShutdown(errors.New("write: broken pipe")) {
		t.Error("expected broken pipe error to be a clean shutdown")
	}
	if isCleanShutdown(errors.New("some other failure")) {
		t.Error("did not expect an unrelated error to be a clean shutdown")
	}
}
