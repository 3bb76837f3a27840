package grammar

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/pcfguess/pkg/errors"
)

// writeGrammar lays out a grammar directory under t.TempDir.
func writeGrammar(t *testing.T, rules string, terminals map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, TerminalsDir), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, RulesFile), []byte(rules), 0644); err != nil {
		t.Fatal(err)
	}
	for tag, body := range terminals {
		path := filepath.Join(dir, TerminalsDir, tag+".txt")
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadDir(t *testing.T) {
	dir := writeGrammar(t,
		"(word)(number)\t0.5\n(number)\t0.5\n\n",
		map[string]string{
			"word":   "cat\t0.6\r\ndog\t0.4\r\n",
			"number": "1\t0.7\n2\t0.3\n",
		})
	// Non-terminal files without the .txt extension are ignored.
	if err := os.WriteFile(filepath.Join(dir, TerminalsDir, "README"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	ix, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if got := len(ix.Rules()); got != 2 {
		t.Fatalf("rules = %d, want 2", got)
	}
	if ix.Rules()[0].Structure != "(word)(number)" {
		t.Errorf("first rule = %q", ix.Rules()[0].Structure)
	}
	words, _ := ix.Terminals("word")
	if len(words) != 2 || words[1].Word != "dog" || words[1].Prob != 0.4 {
		t.Errorf("word terminals = %+v", words)
	}
	if len(ix.Tags()) != 2 {
		t.Errorf("Tags() = %q, want 2 tags", ix.Tags())
	}
}

func TestLoadDirErrors(t *testing.T) {
	tests := []struct {
		name      string
		rules     string
		terminals map[string]string
		code      errors.Code
	}{
		{
			name:      "unknown tag",
			rules:     "(word)(number)\t1\n",
			terminals: map[string]string{"word": "cat\t1\n"},
			code:      errors.ErrCodeUnknownTag,
		},
		{
			name:      "malformed structure",
			rules:     "(word\t1\n",
			terminals: map[string]string{"word": "cat\t1\n"},
			code:      errors.ErrCodeMalformedStructure,
		},
		{
			name:      "missing separator",
			rules:     "(word) 1\n",
			terminals: map[string]string{"word": "cat\t1\n"},
			code:      errors.ErrCodeInvalidGrammar,
		},
		{
			name:      "bad probability",
			rules:     "(word)\t1\n",
			terminals: map[string]string{"word": "cat\tlots\n"},
			code:      errors.ErrCodeInvalidGrammar,
		},
		{
			name:      "unsorted terminals",
			rules:     "(word)\t1\n",
			terminals: map[string]string{"word": "cat\t0.1\ndog\t0.9\n"},
			code:      errors.ErrCodeInvalidGrammar,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeGrammar(t, tt.rules, tt.terminals)
			_, err := LoadDir(dir)
			if !errors.Is(err, tt.code) {
				t.Errorf("LoadDir() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoadDirMissing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("LoadDir(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestReadTerminalsWordWithSpaces(t *testing.T) {
	list, err := ReadTerminals(strings.NewReader("ice cream\t0.5\n"))
	if err != nil {
		t.Fatalf("ReadTerminals: %v", err)
	}
	if len(list) != 1 || list[0].Word != "ice cream" {
		t.Errorf("ReadTerminals = %+v", list)
	}
}
