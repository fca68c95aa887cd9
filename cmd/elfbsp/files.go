// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/kennygrant/sanitize"
)

// resolveInputFiles expands each positional argument as a filesystem glob
// (so "wads/*.wad" works even on shells that don't expand it themselves)
// and drops any result matching one of the ignore patterns from
// ~/.elfbsprc's [defaults] ignore list.
func resolveInputFiles(args []string, ignorePatterns []string) ([]string, error) {
	ignore := make([]glob.Glob, 0, len(ignorePatterns))
	for _, p := range ignorePatterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		ignore = append(ignore, g)
	}

	var out []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", arg, err)
		}
		if len(matches) == 0 {
			matches = []string{arg}
		}

		for _, m := range matches {
			if matchesAny(ignore, m) {
				continue
			}
			out = append(out, m)
		}
	}
	return out, nil
}

func matchesAny(patterns []glob.Glob, name string) bool {
	base := filepath.Base(name)
	for _, g := range patterns {
		if g.Match(base) || g.Match(name) {
			return true
		}
	}
	return false
}

// sanitizeOutputPath strips characters sanitize considers unsafe from
// -o/--output before it is ever passed to os.Create.
func sanitizeOutputPath(path string) string {
	if path == "" {
		return path
	}
	return sanitize.Path(path)
}
