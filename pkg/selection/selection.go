// Package selection chooses which posts are submitted for classification.
package selection

import (
	"math/rand"
	"sort"

	"github.com/yousefh409/llm-censorship/pkg/types"
)

// Random returns a uniform sample of n posts without replacement. When fewer
// than n posts are available, all of them are returned. The sample order is
// randomized by rng, so a seeded rng makes the selection reproducible.
func Random(rng *rand.Rand, posts []types.PostRecord, n int) []types.PostRecord {
	if n >= len(posts) {
		out := make([]types.PostRecord, len(posts))
		copy(out, posts)
		return out
	}
	idx := rng.Perm(len(posts))[:n]
	out := make([]types.PostRecord, 0, n)
	for _, i := range idx {
		out = append(out, posts[i])
	}
	return out
}

// TopByTheme returns the n posts with the highest score for one theme,
// highest first. Equal scores keep their input order.
func TopByTheme(posts []types.PostRecord, theme string, n int) []types.PostRecord {
	sorted := make([]types.PostRecord, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ThemeScore(theme) > sorted[j].ThemeScore(theme)
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// TopThemed returns the top n posts for each theme. A post scoring high on
// several themes appears in each of them.
func TopThemed(posts []types.PostRecord, themes []string, n int) map[string][]types.PostRecord {
	out := make(map[string][]types.PostRecord, len(themes))
	for _, theme := range themes {
		out[theme] = TopByTheme(posts, theme, n)
	}
	return out
}
