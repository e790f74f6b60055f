// Package module resolves logical module paths to source files and
// loads/caches the resulting compilation units (§4.C, §6).
package module

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zizixmas/bmb/internal/errors"
)

// Resolver turns a logical module path like "math.arithmetic" into a
// concrete file on disk, per §6's "Module path → filesystem" rule.
type Resolver struct {
	// IncludeRoots are searched, in order, for a-b-c/src/lib.bmb package
	// directories. The first match wins.
	IncludeRoots []string
}

// NewResolver builds a Resolver over the given include roots, always
// searching the current directory first.
func NewResolver(includeRoots ...string) *Resolver {
	roots := append([]string{"."}, includeRoots...)
	return &Resolver{IncludeRoots: roots}
}

// Resolve finds the file backing logicalPath. fromDir is the directory
// of the file doing the `use`, used for the single-file fallback form.
func (r *Resolver) Resolve(logicalPath string, fromDir string) (string, error) {
	segs := strings.Split(logicalPath, ".")

	packageDir := strings.Join(segs, "-")
	for _, root := range r.IncludeRoots {
		candidate := filepath.Join(root, packageDir, "src", "lib.bmb")
		if fileExists(candidate) {
			return filepath.Clean(candidate), nil
		}
	}

	if len(segs) > 1 && fromDir != "" {
		rel := filepath.Join(segs...) + ".bmb"
		candidate := filepath.Join(fromDir, rel)
		if fileExists(candidate) {
			return filepath.Clean(candidate), nil
		}
	}

	return "", r.notFoundError(logicalPath)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// notFoundError reports logicalPath as unresolved, attaching up to
// five Levenshtein-nearest known module names (distance ≤ 3, §6).
func (r *Resolver) notFoundError(logicalPath string) error {
	suggestions := r.suggest(logicalPath, 5, 3)
	return errors.WrapReport(&errors.Report{
		Schema:  errors.ErrorV1,
		Code:    errors.RES001,
		Phase:   "resolve",
		Message: "module not found: " + logicalPath,
		Data: map[string]any{
			"path":        logicalPath,
			"suggestions": suggestions,
		},
	})
}

// suggest scans every include root's package directories and returns
// the up-to-limit closest logical paths within maxDist edits.
func (r *Resolver) suggest(logicalPath string, limit, maxDist int) []string {
	type scored struct {
		name string
		dist int
	}
	var candidates []scored
	seen := map[string]bool{}

	for _, root := range r.IncludeRoots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			if !fileExists(filepath.Join(root, e.Name(), "src", "lib.bmb")) {
				continue
			}
			name := strings.ReplaceAll(e.Name(), "-", ".")
			if seen[name] {
				continue
			}
			seen[name] = true
			d := levenshtein(logicalPath, name)
			if d <= maxDist {
				candidates = append(candidates, scored{name, d})
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].name < candidates[j].name
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out
}

// levenshtein computes the classic edit distance between two strings.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)

	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			cur[j] = min3(del, ins, sub)
		}
		prev, cur = cur, prev
	}
	return prev[lb]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
