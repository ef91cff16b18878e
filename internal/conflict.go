package internal

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
)

// ConflictPolicy is the strategy for resolving an output path that
// already exists.
type ConflictPolicy string

const (
	ConflictPrompt  ConflictPolicy = "prompt"
	ConflictReplace ConflictPolicy = "replace"
	ConflictRename  ConflictPolicy = "rename"
	ConflictAbort   ConflictPolicy = "abort"
)

// ErrAborted signals that the user or policy chose not to write.
// It is not a failure; callers exit cleanly after printing a notice.
var ErrAborted = errors.New("operation aborted")

// ParseConflictPolicy validates a conflict flag value.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case ConflictPrompt:
		return ConflictPrompt, nil
	case ConflictReplace:
		return ConflictReplace, nil
	case ConflictRename:
		return ConflictRename, nil
	case ConflictAbort:
		return ConflictAbort, nil
	}
	return "", fmt.Errorf("invalid conflict policy %q (supported: prompt, replace, rename, abort)", s)
}

// Prompter asks the user a question and returns the raw answer.
// Injectable so the prompt loop can be driven in tests.
type Prompter func(prompt string) (string, error)

// StdinPrompter reads answers from stdin. It refuses to prompt when
// stdin is not a terminal, since the loop would block forever.
func StdinPrompter(prompt string) (string, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return "", fmt.Errorf("cannot prompt for conflict resolution: stdin is not a terminal (use --conflict)")
	}
	fmt.Print(prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return "", fmt.Errorf("no input")
}

// ConflictResolver decides the actual path to write to when the
// desired path may already exist. It never touches the filesystem
// beyond existence checks.
type ConflictResolver struct {
	prompter Prompter
}

// NewConflictResolver creates a resolver; a nil prompter falls back
// to StdinPrompter.
func NewConflictResolver(prompter Prompter) *ConflictResolver {
	if prompter == nil {
		prompter = StdinPrompter
	}
	return &ConflictResolver{prompter: prompter}
}

// Resolve returns the path to write to, or ErrAborted.
func (r *ConflictResolver) Resolve(path string, policy ConflictPolicy) (string, error) {
	if !FileExists(path) {
		return path, nil
	}

	switch policy {
	case ConflictReplace:
		return path, nil
	case ConflictAbort:
		return "", ErrAborted
	case ConflictRename:
		return UniquePath(path), nil
	case ConflictPrompt:
		return r.promptChoice(path)
	}
	return "", fmt.Errorf("unknown conflict policy: %s", policy)
}

// promptChoice loops until the user picks Replace, Create-new or Abort.
func (r *ConflictResolver) promptChoice(path string) (string, error) {
	question := fmt.Sprintf("File %q already exists. [R]eplace, [C]reate new, [A]bort: ", filepath.Base(path))
	for {
		answer, err := r.prompter(question)
		if err != nil {
			return "", err
		}
		switch strings.ToUpper(strings.TrimSpace(answer)) {
		case "R", "REPLACE":
			return path, nil
		case "C", "CREATE":
			return UniquePath(path), nil
		case "A", "ABORT":
			return "", ErrAborted
		}
		fmt.Fprintln(os.Stderr, "Invalid choice. Please enter R, C, or A.")
	}
}

// UniquePath finds the smallest N >= 1 such that "stem(N).ext" does
// not exist yet. It probes the filesystem rather than precomputing,
// so concurrent gaps are filled with the lowest free suffix.
func UniquePath(path string) string {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)

	for n := 1; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s(%d)%s", stem, n, ext))
		if !FileExists(candidate) {
			return candidate
		}
	}
}
