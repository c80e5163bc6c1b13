package captioner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multimodal-assistant-be/pkg/gcp"
	"multimodal-assistant-be/pkg/llm"
)

type fakeAnnotator struct {
	lastReq *visionpb.AnnotateImageRequest
	resp    *visionpb.AnnotateImageResponse
	err     error
}

func (f *fakeAnnotator) Annotate(_ context.Context, req *visionpb.AnnotateImageRequest) (*visionpb.AnnotateImageResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func (f *fakeAnnotator) Close() error { return nil }

type fakeNarrator struct {
	prompt string
	out    string
	err    error
}

func (f *fakeNarrator) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return f.Generate(ctx, history[len(history)-1].Content, opts...)
}

func (f *fakeNarrator) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	f.prompt = prompt
	return f.out, f.err
}

var testCfg = Config{Backoff: gcp.Backoff{MaxRetries: 1, Initial: time.Millisecond, Max: time.Millisecond}}

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 'P', 'N', 'G'}, 0o644))
	return path
}

func streetScene() *visionpb.AnnotateImageResponse {
	return &visionpb.AnnotateImageResponse{
		LabelAnnotations: []*visionpb.EntityAnnotation{
			{Description: "Street", Score: 0.91},
			{Description: "Car", Score: 0.97},
			{Description: "car", Score: 0.80},
			{Description: "Noise", Score: 0.2},
		},
		LocalizedObjectAnnotations: []*visionpb.LocalizedObjectAnnotation{
			{Name: "Car", Score: 0.9},
			{Name: "Person", Score: 0.85},
		},
		TextAnnotations: []*visionpb.EntityAnnotation{
			{Description: "STOP\n"},
			{Description: "STOP"},
		},
	}
}

func TestGenerateDescription_ComposesObservations(t *testing.T) {
	a := &fakeAnnotator{resp: streetScene()}
	c := newCaptioner(a, nil, testCfg)

	out, err := c.GenerateDescription(context.Background(), writeImage(t))

	require.NoError(t, err)
	assert.Equal(t,
		`This image appears to show car and street. Visible objects include car and person. It contains the text: "STOP".`,
		out)
	require.Len(t, a.lastReq.Features, 3)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, a.lastReq.Image.Content)
}

func TestGenerateDescription_NothingFound(t *testing.T) {
	c := newCaptioner(&fakeAnnotator{resp: &visionpb.AnnotateImageResponse{}}, &fakeNarrator{out: "unused"}, testCfg)

	out, err := c.GenerateDescription(context.Background(), writeImage(t))

	require.NoError(t, err)
	assert.Equal(t, "No recognizable content was found in this image.", out)
}

func TestGenerateDescription_Narrated(t *testing.T) {
	n := &fakeNarrator{out: "  A car waits at a stop sign on a busy street.  "}
	c := newCaptioner(&fakeAnnotator{resp: streetScene()}, n, testCfg)

	out, err := c.GenerateDescription(context.Background(), writeImage(t))

	require.NoError(t, err)
	assert.Equal(t, "A car waits at a stop sign on a busy street.", out)
	assert.Contains(t, n.prompt, "Labels: car, street")
	assert.Contains(t, n.prompt, "Text in image: STOP")
}

func TestGenerateDescription_NarratorFailureFallsBack(t *testing.T) {
	n := &fakeNarrator{err: errors.New("ollama down")}
	c := newCaptioner(&fakeAnnotator{resp: streetScene()}, n, testCfg)

	out, err := c.GenerateDescription(context.Background(), writeImage(t))

	require.NoError(t, err)
	assert.Contains(t, out, "This image appears to show")
}

func TestGenerateDescription_AnnotationError(t *testing.T) {
	c := newCaptioner(&fakeAnnotator{err: errors.New("permission denied")}, nil, testCfg)

	_, err := c.GenerateDescription(context.Background(), writeImage(t))
	assert.Error(t, err)
}

func TestJoinList(t *testing.T) {
	assert.Equal(t, "a", joinList([]string{"a"}))
	assert.Equal(t, "a and b", joinList([]string{"a", "b"}))
	assert.Equal(t, "a, b and c", joinList([]string{"a", "b", "c"}))
}
