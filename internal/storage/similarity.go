package storage

import (
	"math"
	"sort"
)

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(-1)
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return math.Inf(-1)
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// nearest ranks chunks by cosine similarity to vector. Chunks without an
// embedding or with a different dimension are skipped. topK <= 0 keeps all.
func nearest(chunks []Chunk, vector []float32, topK int) []Chunk {
	type scored struct {
		chunk Chunk
		score float64
	}
	var candidates []scored
	for _, c := range chunks {
		if len(c.Embedding) == 0 || len(c.Embedding) != len(vector) {
			continue
		}
		candidates = append(candidates, scored{chunk: c, score: cosine(c.Embedding, vector)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}
	out := make([]Chunk, len(candidates))
	for i, c := range candidates {
		out[i] = c.chunk
	}
	return out
}
