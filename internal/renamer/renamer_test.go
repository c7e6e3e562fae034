package renamer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestApplyRenamesFile(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "MyPlane.DAT")
	if err := os.WriteFile(source, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	renamed, err := New(false).Apply(source, "MyPlane.DAT", "myplane.dat")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !renamed {
		t.Fatal("expected a rename")
	}

	if _, err := os.Lstat(filepath.Join(dir, "myplane.dat")); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
}

func TestApplySkipsNormalizedName(t *testing.T) {
	renamed, err := New(false).Apply(filepath.Join(t.TempDir(), "myplane.dat"), "myplane.dat", "myplane.dat")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if renamed {
		t.Error("already-normalized name must be a no-op")
	}
}

func TestApplyRefusesToClobber(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "MyPlane.dat")
	occupant := filepath.Join(dir, "myplane.dat")
	if err := os.WriteFile(source, []byte("source"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(occupant, []byte("occupant"), 0644); err != nil {
		// Case-insensitive filesystem: both names are one file, nothing to test.
		t.Skip("filesystem is case-insensitive")
	}
	if data, _ := os.ReadFile(occupant); string(data) != "occupant" {
		t.Skip("filesystem is case-insensitive")
	}

	_, err := New(false).Apply(source, "MyPlane.dat", "myplane.dat")
	var renameErr *RenameError
	if !errors.As(err, &renameErr) || renameErr.Type != TargetExists {
		t.Fatalf("expected TargetExists, got %v", err)
	}

	// Neither file may be harmed.
	if data, _ := os.ReadFile(occupant); string(data) != "occupant" {
		t.Error("occupant was clobbered")
	}
	if data, _ := os.ReadFile(source); string(data) != "source" {
		t.Error("source was lost")
	}
}

func TestApplyMissingSource(t *testing.T) {
	_, err := New(false).Apply(filepath.Join(t.TempDir(), "Gone.dat"), "Gone.dat", "gone.dat")
	var renameErr *RenameError
	if !errors.As(err, &renameErr) || renameErr.Type != SourceNotFound {
		t.Fatalf("expected SourceNotFound, got %v", err)
	}
}

func TestApplyDryRun(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "MyPlane.DAT")
	if err := os.WriteFile(source, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	renamed, err := New(true).Apply(source, "MyPlane.DAT", "myplane.dat")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !renamed {
		t.Error("dry run should report the pending rename")
	}
	if _, err := os.Lstat(source); err != nil {
		t.Error("dry run renamed the file")
	}
}
