// Package ranking scores content by engagement and returns the top slice.
// Ranking is a pure in-memory computation: the caller's query decides the
// candidate set and its order, which also settles ties.
package ranking

import (
	"sort"

	"github.com/tuiter/tuiter-api/internal/core/domain"
)

// Weights is the relevance policy table: one multiplier per engagement
// counter.
type Weights struct {
	Views     float64
	Likes     float64
	Retuits   float64
	Bookmarks float64
	Comments  float64
	Quotes    float64
}

// DefaultWeights is the shipped relevance policy.
var DefaultWeights = Weights{
	Views:     0.1,
	Likes:     0.4,
	Retuits:   0.7,
	Bookmarks: 0.4,
	Comments:  0.5,
	Quotes:    0.7,
}

// Caps used by the two ranking call sites.
const (
	RootFeedSize      = 15
	CommentThreadSize = 10
)

// Ranker ranks tuits by weighted engagement.
type Ranker struct {
	weights Weights
}

// NewRanker returns a Ranker using the given weights. Zero-value weights are
// replaced by DefaultWeights.
func NewRanker(weights Weights) *Ranker {
	if weights == (Weights{}) {
		weights = DefaultWeights
	}
	return &Ranker{weights: weights}
}

// Score computes the relevance of a single tuit.
func (r *Ranker) Score(t *domain.Tuit) float64 {
	return float64(t.Views)*r.weights.Views +
		float64(t.Likes)*r.weights.Likes +
		float64(t.Retuits)*r.weights.Retuits +
		float64(t.Bookmarks)*r.weights.Bookmarks +
		float64(t.Comments)*r.weights.Comments +
		float64(t.Quotes)*r.weights.Quotes
}

// Rank sorts tuits by descending relevance and returns at most k of them.
// The sort is stable: ties keep the input's relative order. The input slice
// is not modified.
func (r *Ranker) Rank(tuits []*domain.Tuit, k int) []*domain.Tuit {
	ranked := make([]*domain.Tuit, len(tuits))
	copy(ranked, tuits)

	scores := make(map[*domain.Tuit]float64, len(ranked))
	for _, t := range ranked {
		scores[t] = r.Score(t)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i]] > scores[ranked[j]]
	})

	if k >= 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
