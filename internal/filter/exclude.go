package filter

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/colpack/colpack/internal/debug"
	"github.com/colpack/colpack/internal/errors"
	"github.com/colpack/colpack/internal/textfile"
	"github.com/spf13/pflag"
)

// RejectByNameFunc is a function that takes the relative path of a file that
// would be included in a collection build. The function returns true if it
// should be excluded (rejected) from the build.
type RejectByNameFunc func(path string) bool

// RejectByPattern returns a RejectByNameFunc which rejects files that match
// one of the patterns.
func RejectByPattern(patterns []string, warnf func(msg string, args ...interface{})) RejectByNameFunc {
	parsedPatterns := ParsePatterns(patterns)
	return func(item string) bool {
		matched, err := List(parsedPatterns, item)
		if err != nil {
			warnf("error for ignore pattern: %v", err)
		}

		if matched {
			debug.Log("path %q excluded by an ignore pattern", item)
			return true
		}

		return false
	}
}

// readPatternsFromFiles reads all files and returns the list of
// patterns. For each line, leading and trailing white space is removed
// and comment lines are ignored. For each remaining pattern, environment
// variables are resolved. For adding a literal dollar sign ($), write $$ to
// the file.
func readPatternsFromFiles(files []string) ([]string, error) {
	getenvOrDollar := func(s string) string {
		if s == "$" {
			return "$"
		}
		return os.Getenv(s)
	}

	var patterns []string
	for _, filename := range files {
		err := func() (err error) {
			data, err := textfile.Read(filename)
			if err != nil {
				return err
			}

			scanner := bufio.NewScanner(bytes.NewReader(data))
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())

				// ignore empty lines
				if line == "" {
					continue
				}

				// strip comments
				if strings.HasPrefix(line, "#") {
					continue
				}

				line = os.Expand(line, getenvOrDollar)
				patterns = append(patterns, line)
			}
			return scanner.Err()
		}()
		if err != nil {
			return nil, fmt.Errorf("failed to read patterns from file %q: %w", filename, err)
		}
	}
	return patterns, nil
}

// IgnorePatternOptions collects the ignore-pattern flags of the build
// command.
type IgnorePatternOptions struct {
	Ignores     []string
	IgnoreFiles []string
}

func (opts *IgnorePatternOptions) Add(f *pflag.FlagSet) {
	f.StringArrayVar(&opts.Ignores, "ignore", nil, "ignore a `pattern` during the build (can be specified multiple times)")
	f.StringArrayVar(&opts.IgnoreFiles, "ignore-file", nil, "read ignore patterns from a `file` (can be specified multiple times)")
}

// CollectPatterns returns the validated union of the literal patterns and
// the patterns read from the configured files.
func (opts IgnorePatternOptions) CollectPatterns() ([]string, error) {
	patterns := make([]string, 0, len(opts.Ignores))
	patterns = append(patterns, opts.Ignores...)

	if len(opts.IgnoreFiles) > 0 {
		filePatterns, err := readPatternsFromFiles(opts.IgnoreFiles)
		if err != nil {
			return nil, err
		}

		if err := ValidatePatterns(filePatterns); err != nil {
			return nil, errors.Fatalf("--ignore-file: %s", err)
		}

		patterns = append(patterns, filePatterns...)
	}

	if err := ValidatePatterns(opts.Ignores); err != nil {
		return nil, errors.Fatalf("--ignore: %s", err)
	}

	return patterns, nil
}
