package mealplan

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/nutriplan/v1/internal/domain/food"
)

// Need describes what the current meal still lacks
type Need struct {
	NeedsProtein   bool
	NeedsCarbs     bool
	NeedsFat       bool
	TargetCalories float64
}

// varietyPool is how many top-scored candidates variety mode draws from
const varietyPool = 3

// Score rates how well a food addresses the remaining deficits.
func Score(rec food.Record, need Need) int {
	score := 0
	if need.NeedsProtein && rec.Protein > 15 {
		score += 3
	}
	if need.NeedsCarbs && rec.Carbs > 20 {
		score += 2
	}
	if need.NeedsFat && rec.Fat > 10 {
		score += 2
	}
	if rec.Calories > need.TargetCalories*1.5 {
		score -= 2
	}
	if rec.Protein > 5 && rec.Carbs > 5 && rec.Fat > 2 {
		score++
	}
	return score
}

// Selector picks one food from a filtered candidate list. Without a
// random source it is deterministic: highest score, ties by input order.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector returns a deterministic selector.
func NewSelector() *Selector {
	return &Selector{}
}

// NewVarietySelector draws uniformly among the top-scored candidates.
func NewVarietySelector(rng *rand.Rand) *Selector {
	return &Selector{rng: rng}
}

// Select returns the chosen food. Zero-calorie foods cannot be sized and
// are never chosen; ok is false when nothing selectable remains.
func (s *Selector) Select(candidates []food.Record, need Need) (food.Record, bool) {
	type scored struct {
		rec   food.Record
		score int
	}
	pool := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if c.Calories <= 0 {
			continue
		}
		pool = append(pool, scored{rec: c, score: Score(c, need)})
	}
	if len(pool) == 0 {
		return food.Record{}, false
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].score > pool[j].score
	})

	if s == nil || s.rng == nil {
		return pool[0].rec, true
	}

	n := varietyPool
	if len(pool) < n {
		n = len(pool)
	}
	s.mu.Lock()
	idx := s.rng.Intn(n)
	s.mu.Unlock()
	return pool[idx].rec, true
}
