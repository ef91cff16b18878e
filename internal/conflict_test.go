package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("existing"), 0644); err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
}

func TestParseConflictPolicy(t *testing.T) {
	for _, valid := range []string{"prompt", "Replace", " rename ", "ABORT"} {
		if _, err := ParseConflictPolicy(valid); err != nil {
			t.Errorf("ParseConflictPolicy(%q) failed: %v", valid, err)
		}
	}
	if _, err := ParseConflictPolicy("overwrite"); err == nil {
		t.Error("expected error for unsupported policy")
	}
}

func TestResolveNonExistentPath(t *testing.T) {
	resolver := NewConflictResolver(func(string) (string, error) {
		t.Fatal("prompter should not be called when file does not exist")
		return "", nil
	})

	path := filepath.Join(t.TempDir(), "new.txt")
	for _, policy := range []ConflictPolicy{ConflictPrompt, ConflictReplace, ConflictRename, ConflictAbort} {
		got, err := resolver.Resolve(path, policy)
		if err != nil {
			t.Errorf("policy %s: unexpected error: %v", policy, err)
		}
		if got != path {
			t.Errorf("policy %s: path = %q, want %q", policy, got, path)
		}
	}
}

func TestResolveReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video.txt")
	touch(t, path)

	got, err := NewConflictResolver(nil).Resolve(path, ConflictReplace)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != path {
		t.Errorf("replace returned %q, want %q", got, path)
	}
}

func TestResolveAbort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video.txt")
	touch(t, path)

	_, err := NewConflictResolver(nil).Resolve(path, ConflictAbort)
	if !errors.Is(err, ErrAborted) {
		t.Errorf("abort returned %v, want ErrAborted", err)
	}
}

func TestResolveRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Video.txt")
	touch(t, path)

	got, err := NewConflictResolver(nil).Resolve(path, ConflictRename)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != filepath.Join(dir, "Video(1).txt") {
		t.Errorf("rename returned %q, want Video(1).txt", got)
	}
}

func TestResolveRenameSkipsTakenSuffixes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Video.txt")
	touch(t, path)
	touch(t, filepath.Join(dir, "Video(1).txt"))

	got, err := NewConflictResolver(nil).Resolve(path, ConflictRename)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != filepath.Join(dir, "Video(2).txt") {
		t.Errorf("rename returned %q, want Video(2).txt", got)
	}
}

func TestUniquePathWithoutExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes")
	touch(t, path)

	got := UniquePath(path)
	if got != filepath.Join(dir, "notes(1)") {
		t.Errorf("UniquePath = %q, want notes(1)", got)
	}
}

func TestResolvePromptChoices(t *testing.T) {
	tests := []struct {
		answer   string
		wantBase string
		wantErr  error
	}{
		{"R", "video.txt", nil},
		{"replace", "video.txt", nil},
		{"c", "video(1).txt", nil},
		{"Create", "video(1).txt", nil},
		{"A", "", ErrAborted},
		{"abort", "", ErrAborted},
	}

	for _, tt := range tests {
		dir := t.TempDir()
		path := filepath.Join(dir, "video.txt")
		touch(t, path)

		resolver := NewConflictResolver(func(string) (string, error) {
			return tt.answer, nil
		})

		got, err := resolver.Resolve(path, ConflictPrompt)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("answer %q: err = %v, want %v", tt.answer, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("answer %q: unexpected error: %v", tt.answer, err)
			continue
		}
		if filepath.Base(got) != tt.wantBase {
			t.Errorf("answer %q: path = %q, want base %q", tt.answer, got, tt.wantBase)
		}
	}
}

func TestResolvePromptRetriesInvalidInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "video.txt")
	touch(t, path)

	answers := []string{"x", "yes", "R"}
	calls := 0
	resolver := NewConflictResolver(func(string) (string, error) {
		answer := answers[calls]
		calls++
		return answer, nil
	})

	got, err := resolver.Resolve(path, ConflictPrompt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != path {
		t.Errorf("path = %q, want %q", got, path)
	}
	if calls != 3 {
		t.Errorf("prompter called %d times, want 3", calls)
	}
}

func TestResolvePromptPropagatesPrompterError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "video.txt")
	touch(t, path)

	wantErr := errors.New("stdin closed")
	resolver := NewConflictResolver(func(string) (string, error) {
		return "", wantErr
	})

	if _, err := resolver.Resolve(path, ConflictPrompt); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
