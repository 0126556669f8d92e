// Package targets loads the list of usernames to scrape from a
// line-delimited file.
package targets

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"xscraper/pkg/twitter"
)

// Load reads usernames from the given file, one per line. Blank lines and
// lines starting with # are skipped; a leading @ is stripped. Order and
// duplicates are preserved so the run processes exactly what was listed.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open accounts file: %w", err)
	}
	defer file.Close()

	var usernames []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		usernames = append(usernames, twitter.SanitizeUsername(line))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts file: %w", err)
	}

	return usernames, nil
}
