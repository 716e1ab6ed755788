package filetest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSourceFilesFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.c", "b.c", "a.c.want", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	fis := SourceFiles(t, dir, "c")
	if len(fis) != 2 {
		t.Fatalf("got %d fixtures, want 2: %v", len(fis), fis)
	}
	names := map[string]bool{}
	for _, fi := range fis {
		names[fi.Name()] = true
	}
	if !names["a.c"] || !names["b.c"] {
		t.Fatalf("unexpected fixture set: %v", names)
	}
}

func TestDiffOutputPassesOnMatchingGolden(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "a.c")
	if err := os.WriteFile(srcPath, []byte("int main() {}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(srcPath+".want", []byte("output text\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	fis := SourceFiles(t, dir, "c")
	if len(fis) != 1 {
		t.Fatalf("got %d fixtures, want 1", len(fis))
	}
	DiffOutput(t, fis[0], "output text\n", dir, nil)
}

func TestDiffCustomWritesGoldenWhenUpdateFlagSet(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "a.c")
	if err := os.WriteFile(srcPath, []byte("int main() {}"), 0o600); err != nil {
		t.Fatal(err)
	}

	fis := SourceFiles(t, dir, "c")
	if len(fis) != 1 {
		t.Fatalf("got %d fixtures, want 1", len(fis))
	}

	update := true
	DiffCustom(t, fis[0], "asm", ".asm.want", "fresh output\n", dir, &update)

	got, err := os.ReadFile(srcPath + ".asm.want")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "fresh output\n" {
		t.Fatalf("golden not written correctly: %q", got)
	}
}
