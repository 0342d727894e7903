package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTargets(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write targets: %v", err)
	}
	return path
}

func TestResolveTargetAddrOverrideWins(t *testing.T) {
	target, err := resolveTarget("does-not-exist.toml", "", "127.0.0.1:7070", "tok")
	if err != nil {
		t.Fatalf("resolve with override: %v", err)
	}
	if target.Addr != "127.0.0.1:7070" || target.Token != "tok" {
		t.Fatalf("unexpected target: %+v", target)
	}
}

func TestResolveTargetSingleEntry(t *testing.T) {
	path := writeTargets(t, `
[[targets]]
name = "local"
addr = " 127.0.0.1:7070 "
token = "s3cret"
`)

	target, err := resolveTarget(path, "", "", "")
	if err != nil {
		t.Fatalf("resolve single: %v", err)
	}
	if target.Name != "local" || target.Addr != "127.0.0.1:7070" || target.Token != "s3cret" {
		t.Fatalf("unexpected target: %+v", target)
	}
}

func TestResolveTargetNamedAndTokenOverride(t *testing.T) {
	path := writeTargets(t, `
[[targets]]
name = "alpha"
addr = "10.0.0.1:7070"
token = "a"

[[targets]]
name = "beta"
addr = "10.0.0.2:7070"
token = "b"
`)

	target, err := resolveTarget(path, "beta", "", "override")
	if err != nil {
		t.Fatalf("resolve named: %v", err)
	}
	if target.Addr != "10.0.0.2:7070" || target.Token != "override" {
		t.Fatalf("unexpected target: %+v", target)
	}

	if _, err := resolveTarget(path, "", "", ""); !errors.Is(err, ErrNoTarget) {
		t.Fatalf("ambiguous pick: got=%v want=%v", err, ErrNoTarget)
	}
	if _, err := resolveTarget(path, "gamma", "", ""); !errors.Is(err, ErrNoTarget) {
		t.Fatalf("unknown name: got=%v want=%v", err, ErrNoTarget)
	}
}

func TestResolveTargetMissingFileWithoutAddr(t *testing.T) {
	if _, err := resolveTarget(filepath.Join(t.TempDir(), "none.toml"), "", "", ""); !errors.Is(err, ErrNoTarget) {
		t.Fatalf("missing file: got=%v want=%v", err, ErrNoTarget)
	}
}
