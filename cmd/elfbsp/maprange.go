// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"strings"
)

// isMapName reports whether s has the shape spec.md §6 requires of a map header
// name: 2-8 characters, starting with a letter, the rest alphanumeric or
// underscore.
func isMapName(s string) bool {
	if len(s) < 2 || len(s) > 8 {
		return false
	}
	c := s[0]
	if !((c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')) {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		isAlnum := (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_'
		if !isAlnum {
			return false
		}
	}
	return true
}

// mapNameLess orders two map names the way spec.md §6 compares range
// bounds: shorter names sort first, and names of equal length compare
// lexically.
func mapNameLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

type mapRange struct {
	low, high string
}

func (r mapRange) contains(name string) bool {
	return !mapNameLess(name, r.low) && !mapNameLess(r.high, name)
}

// parseMapFilter turns a -m/--map argument into a filter over map headers.
// An empty spec matches everything. Each comma-separated term is either a
// bare NAME or a LOW-HIGH range; LOW and HIGH must be the same length and
// share their first letter (spec.md §6), matching the convention that WAD
// map names are grouped by episode ("E1M1".."E1M9") or number ("MAP01"..).
func parseMapFilter(spec string) (func(levelIdx int, header string) bool, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}

	var ranges []mapRange
	for _, term := range strings.Split(spec, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}

		if idx := strings.IndexByte(term, '-'); idx > 0 {
			low, high := term[:idx], term[idx+1:]
			if !isMapName(low) || !isMapName(high) {
				return nil, fmt.Errorf("invalid map range %q: names must be 2-8 chars starting with a letter", term)
			}
			if len(low) != len(high) {
				return nil, fmt.Errorf("invalid map range %q: bounds must be the same length", term)
			}
			if low[0] != high[0] {
				return nil, fmt.Errorf("invalid map range %q: bounds must share a leading letter", term)
			}
			if mapNameLess(high, low) {
				low, high = high, low
			}
			ranges = append(ranges, mapRange{low: low, high: high})
			continue
		}

		if !isMapName(term) {
			return nil, fmt.Errorf("invalid map name %q: must be 2-8 chars starting with a letter", term)
		}
		ranges = append(ranges, mapRange{low: term, high: term})
	}

	return func(_ int, header string) bool {
		for _, r := range ranges {
			if r.contains(header) {
				return true
			}
		}
		return false
	}, nil
}
