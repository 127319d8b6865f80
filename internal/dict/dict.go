// Package dict loads pattern dictionaries from files and compiles them into
// automata.
//
// Two formats are understood. Files named *.yaml or *.yml hold a document with
// a "patterns" list:
//
//	patterns:
//	  - he
//	  - she
//
// Any other file holds one pattern per line. Blank lines and lines starting
// with '#' are skipped.
package dict

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/milden6/ahocorasick"
)

// File is the YAML form of a dictionary.
type File struct {
	Patterns []string `yaml:"patterns"`
}

// IsYAML reports whether name is parsed as YAML.
func IsYAML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Parse returns the patterns in data, using the format chosen by name.
func Parse(name string, data []byte) ([]string, error) {
	if IsYAML(name) {
		var f File
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		for i, p := range f.Patterns {
			if p == "" {
				return nil, fmt.Errorf("pattern %d: %w", i, ahocorasick.ErrEmptyPattern)
			}
		}
		return f.Patterns, nil
	}

	var patterns []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(nil, 1<<20)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

// LoadFile reads the patterns of a dictionary file.
func LoadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	patterns, err := Parse(path, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return patterns, nil
}

// Compile reads a dictionary file and builds its automaton.
func Compile(path string) (*ahocorasick.Automaton, error) {
	patterns, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	a, err := ahocorasick.Compile(patterns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}
