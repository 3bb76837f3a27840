package grammar

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/pcfguess/pkg/errors"
)

const (
	// RulesFile is the rule list inside a grammar directory.
	RulesFile = "rules.txt"
	// TerminalsDir holds one <tag>.txt terminal list per tag.
	TerminalsDir = "nonterminals"

	terminalExt = ".txt"

	// maxLineSize caps a single grammar line; terminal words are short.
	maxLineSize = 1 << 20
)

// LoadDir reads a grammar directory (rules.txt plus nonterminals/*.txt)
// and returns the resulting index.
//
// Every .txt file under nonterminals/ becomes a tag named after the file
// without its extension. Errors carry the file and line that caused them.
func LoadDir(dir string) (*Index, error) {
	rules, err := loadRules(filepath.Join(dir, RulesFile))
	if err != nil {
		return nil, err
	}

	tdir := filepath.Join(dir, TerminalsDir)
	entries, err := os.ReadDir(tdir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "terminal directory %s", tdir)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidGrammar, err, "read %s", tdir)
	}

	terminals := make(map[string][]Terminal, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, terminalExt) {
			continue
		}
		tag := strings.TrimSuffix(name, terminalExt)
		list, err := loadTerminals(filepath.Join(tdir, name))
		if err != nil {
			return nil, err
		}
		terminals[tag] = list
	}

	return New(rules, terminals)
}

func loadRules(path string) ([]Rule, error) {
	f, err := openGrammarFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rules, err := ReadRules(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

func loadTerminals(path string) ([]Terminal, error) {
	f, err := openGrammarFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	list, err := ReadTerminals(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}

func openGrammarFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "grammar file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidGrammar, err, "open %s", path)
	}
	return f, nil
}

// ReadRules parses "structure<TAB>probability" lines. Blank lines are
// skipped. Structure errors keep their MALFORMED_STRUCTURE code.
func ReadRules(r io.Reader) ([]Rule, error) {
	var rules []Rule
	err := scanFields(r, func(line int, key string, prob float64) error {
		rule, err := NewRule(key, prob)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		rules = append(rules, rule)
		return nil
	})
	return rules, err
}

// ReadTerminals parses "word<TAB>probability" lines in file order.
// Words may contain spaces; the probability follows the last tab.
func ReadTerminals(r io.Reader) ([]Terminal, error) {
	var list []Terminal
	err := scanFields(r, func(_ int, key string, prob float64) error {
		list = append(list, Terminal{Word: key, Prob: prob})
		return nil
	})
	return list, err
}

func scanFields(r io.Reader, fn func(line int, key string, prob float64) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		tab := strings.LastIndexByte(line, '\t')
		if tab < 0 {
			return errors.New(errors.ErrCodeInvalidGrammar, "line %d: missing tab separator", n)
		}
		prob, err := strconv.ParseFloat(strings.TrimSpace(line[tab+1:]), 64)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidGrammar, err, "line %d: bad probability", n)
		}
		if err := fn(n, line[:tab], prob); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidGrammar, err, "read after line %d", n)
	}
	return nil
}
