package extractor

import (
	"math/rand"
	"sync"
	"time"
)

// Scores are the sentiment and talk-time figures of a call.
type Scores struct {
	CustomerSentiment float64
	AgentSentiment    float64
	CustomerTotalSecs float64
	AgentTotalSecs    float64
}

// Placeholder supplies Scores until a real sentiment model exists. A model
// backed implementation would satisfy the same interface.
type Placeholder interface {
	Scores(transcript string) Scores
}

// RandomPlaceholder draws uniform integers: sentiments in [0,4], customer
// talk time in [10,300] seconds, agent talk time in [0,4] seconds.
type RandomPlaceholder struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomPlaceholder seeds from the clock when seed is 0.
func NewRandomPlaceholder(seed int64) *RandomPlaceholder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomPlaceholder{rnd: rand.New(rand.NewSource(seed))}
}

func (p *RandomPlaceholder) Scores(string) Scores {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Scores{
		CustomerSentiment: float64(p.between(0, 4)),
		AgentSentiment:    float64(p.between(0, 4)),
		CustomerTotalSecs: float64(p.between(10, 300)),
		AgentTotalSecs:    float64(p.between(0, 4)),
	}
}

func (p *RandomPlaceholder) between(lo, hi int) int {
	return lo + p.rnd.Intn(hi-lo+1)
}

// FixedPlaceholder always returns the same Scores.
type FixedPlaceholder Scores

func (p FixedPlaceholder) Scores(string) Scores {
	return Scores(p)
}
