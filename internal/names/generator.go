package names

import (
	"math/rand"
	"strconv"
	"sync"
)

// Generator hands out game names from a shuffled word pool, one per call.
// Once the pool runs dry it falls back to random integers. A name is never
// returned twice by the same Generator; names picked by clients themselves
// are outside its knowledge.
type Generator struct {
	mu   sync.Mutex
	pool []string
	used map[string]struct{}
}

func NewGenerator(words []string) *Generator {
	pool := make([]string, len(words))
	copy(pool, words)
	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return &Generator{
		pool: pool,
		used: make(map[string]struct{}),
	}
}

// Next returns a fresh game name.
func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	for {
		var candidate string
		if n := len(g.pool); n > 0 {
			candidate = g.pool[n-1]
			g.pool = g.pool[:n-1]
		} else {
			candidate = strconv.Itoa(rand.Intn(100000))
		}
		if _, taken := g.used[candidate]; taken {
			continue
		}
		g.used[candidate] = struct{}{}
		return candidate
	}
}
