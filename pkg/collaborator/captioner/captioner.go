package captioner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"multimodal-assistant-be/pkg/collaborator"
	"multimodal-assistant-be/pkg/gcp"
	"multimodal-assistant-be/pkg/llm"
)

var ErrEmptyImage = errors.New("image file is empty")

const (
	minLabelScore  = 0.6
	maxLabels      = 6
	maxObjects     = 6
	maxTextPreview = 160
)

// imageAnnotator wraps BatchAnnotateImages for a single image
type imageAnnotator interface {
	Annotate(ctx context.Context, req *visionpb.AnnotateImageRequest) (*visionpb.AnnotateImageResponse, error)
	Close() error
}

type Config struct {
	Timeout time.Duration
	Backoff gcp.Backoff
}

// Captioner turns Cloud Vision observations into a short description. With a
// narrator set, the observations are rewritten as prose by an LLM.
type Captioner struct {
	annotator imageAnnotator
	narrator  llm.LLMProvider
	cfg       Config
}

var _ collaborator.Captioner = (*Captioner)(nil)

func New(ctx context.Context, cfg Config, narrator llm.LLMProvider, opts ...option.ClientOption) (*Captioner, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return newCaptioner(&gcpVision{client: client}, narrator, cfg), nil
}

func newCaptioner(a imageAnnotator, narrator llm.LLMProvider, cfg Config) *Captioner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Backoff.Initial <= 0 {
		cfg.Backoff = gcp.DefaultBackoff
	}
	return &Captioner{annotator: a, narrator: narrator, cfg: cfg}
}

func (c *Captioner) GenerateDescription(ctx context.Context, imagePath string) (string, error) {
	img, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(img) == 0 {
		return "", ErrEmptyImage
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req := &visionpb.AnnotateImageRequest{
		Image: &visionpb.Image{Content: img},
		Features: []*visionpb.Feature{
			{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: 15},
			{Type: visionpb.Feature_OBJECT_LOCALIZATION, MaxResults: 15},
			{Type: visionpb.Feature_TEXT_DETECTION},
		},
	}

	resp, err := gcp.Retry(ctx, c.cfg.Backoff, func() (*visionpb.AnnotateImageResponse, error) {
		return c.annotator.Annotate(ctx, req)
	})
	if err != nil {
		return "", fmt.Errorf("vision annotate: %w", err)
	}
	if resp.GetError() != nil && resp.GetError().GetMessage() != "" {
		return "", fmt.Errorf("vision annotate error: %s", resp.GetError().GetMessage())
	}

	obs := observe(resp)
	description := obs.Describe()

	if c.narrator == nil || obs.Empty() {
		return description, nil
	}
	prose, err := c.narrator.Generate(ctx, narrationPrompt(obs), llm.WithTemperature(0.4), llm.WithMaxTokens(200))
	if err != nil || strings.TrimSpace(prose) == "" {
		// the plain composition is still a valid caption
		return description, nil
	}
	return strings.TrimSpace(prose), nil
}

func (c *Captioner) Close() error {
	return c.annotator.Close()
}

// Observations are the filtered signals the description is composed from
type Observations struct {
	Labels  []string
	Objects []string
	Text    string
}

func (o Observations) Empty() bool {
	return len(o.Labels) == 0 && len(o.Objects) == 0 && o.Text == ""
}

// Describe composes the observations into one or more sentences
func (o Observations) Describe() string {
	if o.Empty() {
		return "No recognizable content was found in this image."
	}

	var parts []string
	if len(o.Labels) > 0 {
		parts = append(parts, fmt.Sprintf("This image appears to show %s.", joinList(o.Labels)))
	}
	if len(o.Objects) > 0 {
		parts = append(parts, fmt.Sprintf("Visible objects include %s.", joinList(o.Objects)))
	}
	if o.Text != "" {
		parts = append(parts, fmt.Sprintf("It contains the text: %q.", o.Text))
	}
	return strings.Join(parts, " ")
}

func observe(resp *visionpb.AnnotateImageResponse) Observations {
	var obs Observations
	if resp == nil {
		return obs
	}

	labels := append([]*visionpb.EntityAnnotation(nil), resp.GetLabelAnnotations()...)
	sort.SliceStable(labels, func(i, j int) bool { return labels[i].GetScore() > labels[j].GetScore() })
	seen := map[string]bool{}
	for _, l := range labels {
		name := strings.ToLower(strings.TrimSpace(l.GetDescription()))
		if name == "" || l.GetScore() < minLabelScore || seen[name] {
			continue
		}
		seen[name] = true
		obs.Labels = append(obs.Labels, name)
		if len(obs.Labels) == maxLabels {
			break
		}
	}

	seen = map[string]bool{}
	for _, o := range resp.GetLocalizedObjectAnnotations() {
		name := strings.ToLower(strings.TrimSpace(o.GetName()))
		if name == "" || o.GetScore() < minLabelScore || seen[name] {
			continue
		}
		seen[name] = true
		obs.Objects = append(obs.Objects, name)
		if len(obs.Objects) == maxObjects {
			break
		}
	}

	// the first text annotation holds the full detected text
	if texts := resp.GetTextAnnotations(); len(texts) > 0 {
		obs.Text = preview(texts[0].GetDescription())
	}
	return obs
}

func narrationPrompt(o Observations) string {
	var sb strings.Builder
	sb.WriteString("Write a concise, natural description (2-3 sentences) of an image.\n")
	sb.WriteString("Use only the observations below; do not invent details.\n\n")
	if len(o.Labels) > 0 {
		sb.WriteString("Labels: " + strings.Join(o.Labels, ", ") + "\n")
	}
	if len(o.Objects) > 0 {
		sb.WriteString("Objects: " + strings.Join(o.Objects, ", ") + "\n")
	}
	if o.Text != "" {
		sb.WriteString("Text in image: " + o.Text + "\n")
	}
	return sb.String()
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > maxTextPreview {
		return string(r[:maxTextPreview]) + "..."
	}
	return s
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

type gcpVision struct {
	client *vision.ImageAnnotatorClient
}

func (g *gcpVision) Annotate(ctx context.Context, req *visionpb.AnnotateImageRequest) (*visionpb.AnnotateImageResponse, error) {
	br := &visionpb.BatchAnnotateImagesRequest{Requests: []*visionpb.AnnotateImageRequest{req}}
	resp, err := g.client.BatchAnnotateImages(ctx, br)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return &visionpb.AnnotateImageResponse{}, nil
	}
	return resp.Responses[0], nil
}

func (g *gcpVision) Close() error { return g.client.Close() }
