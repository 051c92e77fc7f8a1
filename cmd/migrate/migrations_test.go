package main

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
)

func repoMigrationsDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// this file lives in cmd/migrate/, so repo root is ../..
	repoRoot := filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", ".."))
	return filepath.Join(repoRoot, "db", "migrations")
}

func TestCollectMigrations_ParsesMigrationsDir(t *testing.T) {
	migrations, err := goose.CollectMigrations(repoMigrationsDir(t), 0, goose.MaxVersion)
	if err != nil {
		t.Fatalf("expected migrations to parse, got error: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one migration")
	}
}

func TestSQLMigrations_HaveGooseDirectives(t *testing.T) {
	dir := repoMigrationsDir(t)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%s): %v", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", e.Name(), err)
		}
		s := string(b)
		for _, directive := range []string{"-- +goose Up", "-- +goose Down"} {
			if !strings.Contains(s, directive) {
				t.Fatalf("%s missing %q", e.Name(), directive)
			}
		}
	}
}

func TestBooksMigration_IndexesOwner(t *testing.T) {
	b, err := os.ReadFile(filepath.Join(repoMigrationsDir(t), "00001_create_books.sql"))
	if err != nil {
		t.Fatalf("read books migration: %v", err)
	}
	s := string(b)
	for _, want := range []string{"owner_id", "ON books (owner_id)", "DEFAULT 'to-read'", "date_added"} {
		if !strings.Contains(s, want) {
			t.Fatalf("books migration missing %q", want)
		}
	}
}

func TestRunCommand_RejectsUnknownCommand(t *testing.T) {
	err := runCommand(nil, t.TempDir(), "sideways", "")
	if !errors.Is(err, errUnknownCommand) {
		t.Fatalf("expected errUnknownCommand, got %v", err)
	}
}

func TestRunCommand_CreateRequiresName(t *testing.T) {
	if err := runCommand(nil, t.TempDir(), "create", ""); err == nil {
		t.Fatal("expected an error without a name")
	}
}

func TestRunCommand_CreateWritesFile(t *testing.T) {
	dir := t.TempDir()
	if err := runCommand(nil, dir, "create", "add_tags"); err != nil {
		t.Fatalf("create: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), "_add_tags.sql") {
		t.Fatalf("unexpected files: %v", entries)
	}
}
