package ml

import (
	"encoding/binary"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
)

// resultCache memoises distributions by feature vector. Entries never go
// stale because the schema and model behind a Predictor are immutable.
type resultCache struct {
	entries *lru.Cache[string, ClassProbabilities]
}

func newResultCache(size int) (*resultCache, error) {
	entries, err := lru.New[string, ClassProbabilities](size)
	if err != nil {
		return nil, err
	}
	return &resultCache{entries: entries}, nil
}

func (c *resultCache) get(vector FeatureVector) (ClassProbabilities, bool) {
	return c.entries.Get(vectorKey(vector))
}

func (c *resultCache) add(vector FeatureVector, probs ClassProbabilities) {
	c.entries.Add(vectorKey(vector), probs)
}

func (c *resultCache) len() int { return c.entries.Len() }

// vectorKey encodes the exact bit pattern of every entry.
func vectorKey(vector FeatureVector) string {
	buf := make([]byte, 8*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return string(buf)
}
