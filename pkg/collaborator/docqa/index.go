package docqa

import (
	"context"
	"fmt"
	"sort"

	"multimodal-assistant-be/pkg/embedding"
	"multimodal-assistant-be/pkg/utils"
)

// Chunk is a slice of page text with its embedding
type Chunk struct {
	Page   int
	Text   string
	Vector []float32
}

// Hit is a retrieved chunk with its similarity to the query
type Hit struct {
	Chunk
	Score float64
}

// Index is an in-memory vector index over one document
type Index struct {
	chunks []Chunk
}

// BuildIndex splits every page and embeds the chunks as retrieval documents
func BuildIndex(ctx context.Context, pages []Page, embedder embedding.EmbeddingProvider, chunkSize, overlap int) (*Index, error) {
	idx := &Index{}
	for _, p := range pages {
		for _, text := range utils.SplitText(p.Text, chunkSize, overlap) {
			res, err := embedder.Generate(ctx, text, embedding.TaskRetrievalDocument)
			if err != nil {
				return nil, fmt.Errorf("embed page %d: %w", p.Number, err)
			}
			idx.chunks = append(idx.chunks, Chunk{
				Page:   p.Number,
				Text:   text,
				Vector: res.Embedding.Values,
			})
		}
	}
	if len(idx.chunks) == 0 {
		return nil, ErrNoText
	}
	return idx, nil
}

func (i *Index) Len() int {
	return len(i.chunks)
}

// Search returns the k chunks most similar to query, best first. Ties keep
// document order.
func (i *Index) Search(query []float32, k int) []Hit {
	hits := make([]Hit, len(i.chunks))
	for n, c := range i.chunks {
		hits[n] = Hit{Chunk: c, Score: embedding.CosineSimilarity(query, c.Vector)}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
	if k > 0 && k < len(hits) {
		hits = hits[:k]
	}
	return hits
}
