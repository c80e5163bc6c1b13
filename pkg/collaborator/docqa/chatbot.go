package docqa

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"multimodal-assistant-be/pkg/collaborator"
	"multimodal-assistant-be/pkg/embedding"
	"multimodal-assistant-be/pkg/llm"
)

var tracer = otel.Tracer("multimodal-assistant-be/docqa")

type Options struct {
	Embedder     embedding.EmbeddingProvider
	LLM          llm.LLMProvider
	History      HistoryStore
	ChunkSize    int
	ChunkOverlap int
	TopK         int
}

// Chatbot answers questions about one PDF with retrieval over an in-memory
// index. Conversation memory lives in the HistoryStore, keyed per session.
type Chatbot struct {
	id      string
	pdfPath string
	index   *Index
	llm     llm.LLMProvider
	embed   embedding.EmbeddingProvider
	history HistoryStore
	topK    int
}

var _ collaborator.DocumentQA = (*Chatbot)(nil)

// New extracts and indexes pdfPath. It fails when the document has no text
// or the embedding backend rejects the request.
func New(ctx context.Context, pdfPath string, opts Options) (*Chatbot, error) {
	if opts.Embedder == nil || opts.LLM == nil || opts.History == nil {
		return nil, errors.New("docqa: embedder, llm and history are required")
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1000
	}
	if opts.TopK <= 0 {
		opts.TopK = 4
	}

	ctx, span := tracer.Start(ctx, "docqa.New")
	defer span.End()

	pages, err := ExtractPages(pdfPath)
	if err != nil {
		return nil, err
	}
	index, err := BuildIndex(ctx, pages, opts.Embedder, opts.ChunkSize, opts.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("docqa.pages", len(pages)), attribute.Int("docqa.chunks", index.Len()))

	return newChatbot(pdfPath, index, opts), nil
}

func newChatbot(pdfPath string, index *Index, opts Options) *Chatbot {
	return &Chatbot{
		id:      uuid.NewString(),
		pdfPath: pdfPath,
		index:   index,
		llm:     opts.LLM,
		embed:   opts.Embedder,
		history: opts.History,
		topK:    opts.TopK,
	}
}

func (c *Chatbot) Chat(ctx context.Context, question string, sessionID string) (*collaborator.ChatResult, error) {
	ctx, span := tracer.Start(ctx, "docqa.Chat")
	defer span.End()

	q, err := c.embed.Generate(ctx, question, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	hits := c.index.Search(q.Embedding.Values, c.topK)
	span.SetAttributes(attribute.Int("docqa.hits", len(hits)))

	key := c.historyKey(sessionID)
	past, err := c.history.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	prompt := (&promptBuilder{hits: hits, query: question}).Build()
	messages := append(past, llm.Message{Role: llm.RoleUser, Content: prompt})

	answer, err := c.llm.Chat(ctx, messages, llm.WithTemperature(0.2))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	answer = strings.TrimSpace(answer)

	// memory keeps the raw question, not the retrieval prompt
	if err := c.history.Append(ctx, key,
		llm.Message{Role: llm.RoleUser, Content: question},
		llm.Message{Role: llm.RoleAssistant, Content: answer},
	); err != nil {
		return nil, err
	}

	return &collaborator.ChatResult{Answer: answer, Sources: sources(hits)}, nil
}

func (c *Chatbot) ClearHistory(ctx context.Context, sessionID string) error {
	return c.history.Clear(ctx, c.historyKey(sessionID))
}

func (c *Chatbot) historyKey(sessionID string) string {
	return "docqa:" + c.id + ":" + sessionID
}

func sources(hits []Hit) []string {
	seen := map[int]bool{}
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		if seen[h.Page] {
			continue
		}
		seen[h.Page] = true
		out = append(out, fmt.Sprintf("page %d", h.Page))
	}
	return out
}
