// Package urlfile loads the line-delimited list of bank URLs that drives
// a run. A missing or empty list is a configuration error: the pipeline
// refuses to start rather than silently doing nothing.
package urlfile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrEmpty is returned when the input file exists but contains no URLs.
var ErrEmpty = errors.New("input file contains no URLs")

// Load reads URLs from a file, one per line, skipping blank lines and
// lines starting with '#'.
func Load(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("input file: %w", err)
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	if len(urls) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, ErrEmpty)
	}

	return urls, nil
}
