package fsx

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPrepareWrite(t *testing.T) {
	t.Run("creates_missing_parents", func(t *testing.T) {
		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, "a", "b", "purs")

		if err := PrepareWrite(path); err != nil {
			t.Fatalf("PrepareWrite: %v", err)
		}

		info, err := os.Stat(filepath.Dir(path))
		if err != nil {
			t.Fatalf("parent not created: %v", err)
		}
		if !info.IsDir() {
			t.Error("parent is not a directory")
		}
	})

	t.Run("rejects_existing_directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		dir := filepath.Join(tmpDir, "purs")
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatal(err)
		}

		if err := PrepareWrite(dir); err == nil {
			t.Error("expected error for existing directory")
		}
	})

	t.Run("accepts_existing_file", func(t *testing.T) {
		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, "purs")
		if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
			t.Fatal(err)
		}

		if err := PrepareWrite(path); err != nil {
			t.Errorf("PrepareWrite over existing file: %v", err)
		}
	})

	t.Run("rejects_empty_path", func(t *testing.T) {
		if err := PrepareWrite(""); err == nil {
			t.Error("expected error for empty path")
		}
	})
}

func TestMoveFile(t *testing.T) {
	t.Run("renames", func(t *testing.T) {
		tmpDir := t.TempDir()
		src := filepath.Join(tmpDir, "purs")
		dst := filepath.Join(tmpDir, "purs-0.15")

		if err := os.WriteFile(src, []byte("binary"), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := MoveFile(src, dst); err != nil {
			t.Fatalf("MoveFile: %v", err)
		}

		if _, err := os.Stat(src); !os.IsNotExist(err) {
			t.Error("source still exists after move")
		}
		data, err := os.ReadFile(dst)
		if err != nil {
			t.Fatalf("read destination: %v", err)
		}
		if string(data) != "binary" {
			t.Errorf("destination content = %q, want %q", data, "binary")
		}
	})

	t.Run("same_path_is_noop", func(t *testing.T) {
		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, "purs")
		if err := os.WriteFile(path, []byte("binary"), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := MoveFile(path, path); err != nil {
			t.Fatalf("MoveFile same path: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("file missing after no-op move: %v", err)
		}
	})

	t.Run("replaces_existing_destination", func(t *testing.T) {
		tmpDir := t.TempDir()
		src := filepath.Join(tmpDir, "new")
		dst := filepath.Join(tmpDir, "old")
		if err := os.WriteFile(src, []byte("new"), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(dst, []byte("old"), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := MoveFile(src, dst); err != nil {
			t.Fatalf("MoveFile: %v", err)
		}
		data, _ := os.ReadFile(dst)
		if string(data) != "new" {
			t.Errorf("destination content = %q, want %q", data, "new")
		}
	})
}

func TestSetExecutable(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "purs")
	if err := os.WriteFile(path, []byte("binary"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := SetExecutable(path); err != nil {
		t.Fatalf("SetExecutable: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o111 == 0 {
		t.Error("file is not executable")
	}
}
