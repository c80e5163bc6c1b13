package transcriber

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	videointelligence "cloud.google.com/go/videointelligence/apiv1"
	vipb "cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"google.golang.org/api/option"

	"multimodal-assistant-be/pkg/collaborator"
	"multimodal-assistant-be/pkg/gcp"
)

var ErrUnsupportedMedia = errors.New("unsupported media type for transcription")

// speechRecognizer and videoAnnotator hide the long-running operations of
// the Google clients so tests can swap them.
type speechRecognizer interface {
	Recognize(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error)
	Close() error
}

type videoAnnotator interface {
	Annotate(ctx context.Context, req *vipb.AnnotateVideoRequest) (*vipb.AnnotateVideoResponse, error)
	Close() error
}

type Config struct {
	LanguageCode  string
	Mp3SampleRate int
	Timeout       time.Duration
	Backoff       gcp.Backoff
}

// Transcriber sends audio to Cloud Speech-to-Text and video to the Video
// Intelligence speech transcription feature.
type Transcriber struct {
	speech speechRecognizer
	video  videoAnnotator
	cfg    Config
}

var _ collaborator.Transcriber = (*Transcriber)(nil)

// New dials both Google clients
func New(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Transcriber, error) {
	sc, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	vc, err := videointelligence.NewClient(ctx, opts...)
	if err != nil {
		_ = sc.Close()
		return nil, fmt.Errorf("videointelligence client: %w", err)
	}
	return newTranscriber(&gcpSpeech{client: sc}, &gcpVideo{client: vc}, cfg), nil
}

func newTranscriber(s speechRecognizer, v videoAnnotator, cfg Config) *Transcriber {
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "en-US"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	if cfg.Backoff.Initial <= 0 {
		cfg.Backoff = gcp.DefaultBackoff
	}
	return &Transcriber{speech: s, video: v, cfg: cfg}
}

func (t *Transcriber) Transcribe(ctx context.Context, filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	if !isAudio(ext) && !isVideo(ext) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMedia, ext)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("read media: %w", err)
	}
	if len(content) == 0 {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	if isVideo(ext) {
		return t.transcribeVideo(ctx, content)
	}
	return t.transcribeAudio(ctx, content, ext)
}

func (t *Transcriber) transcribeAudio(ctx context.Context, content []byte, ext string) (string, error) {
	req := &speechpb.LongRunningRecognizeRequest{
		Config: t.recognitionConfig(ext),
		Audio:  &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: content}},
	}

	resp, err := gcp.Retry(ctx, t.cfg.Backoff, func() (*speechpb.LongRunningRecognizeResponse, error) {
		return t.speech.Recognize(ctx, req)
	})
	if err != nil {
		return "", fmt.Errorf("speech longrunningrecognize: %w", err)
	}
	return speechText(resp), nil
}

func (t *Transcriber) transcribeVideo(ctx context.Context, content []byte) (string, error) {
	req := &vipb.AnnotateVideoRequest{
		InputContent: content,
		Features:     []vipb.Feature{vipb.Feature_SPEECH_TRANSCRIPTION},
		VideoContext: &vipb.VideoContext{
			SpeechTranscriptionConfig: &vipb.SpeechTranscriptionConfig{
				LanguageCode:               t.cfg.LanguageCode,
				EnableAutomaticPunctuation: true,
			},
		},
	}

	resp, err := gcp.Retry(ctx, t.cfg.Backoff, func() (*vipb.AnnotateVideoResponse, error) {
		return t.video.Annotate(ctx, req)
	})
	if err != nil {
		return "", fmt.Errorf("videointelligence annotatevideo: %w", err)
	}
	return videoText(resp), nil
}

func (t *Transcriber) recognitionConfig(ext string) *speechpb.RecognitionConfig {
	rc := &speechpb.RecognitionConfig{
		LanguageCode:               t.cfg.LanguageCode,
		EnableAutomaticPunctuation: true,
		Encoding:                   inferEncoding(ext),
	}
	// WAV headers carry the rate; MP3 needs it spelled out
	if rc.Encoding == speechpb.RecognitionConfig_MP3 && t.cfg.Mp3SampleRate > 0 {
		rc.SampleRateHertz = int32(t.cfg.Mp3SampleRate)
	}
	return rc
}

func (t *Transcriber) Close() error {
	return errors.Join(t.speech.Close(), t.video.Close())
}

func inferEncoding(ext string) speechpb.RecognitionConfig_AudioEncoding {
	switch ext {
	case ".wav":
		return speechpb.RecognitionConfig_LINEAR16
	case ".flac":
		return speechpb.RecognitionConfig_FLAC
	case ".mp3":
		return speechpb.RecognitionConfig_MP3
	case ".ogg", ".opus":
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

func isAudio(ext string) bool {
	switch ext {
	case ".mp3", ".wav", ".flac", ".ogg", ".opus":
		return true
	}
	return false
}

func isVideo(ext string) bool {
	return ext == ".mp4" || ext == ".avi"
}

func speechText(resp *speechpb.LongRunningRecognizeResponse) string {
	if resp == nil {
		return ""
	}
	var full strings.Builder
	for _, r := range resp.Results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		appendSentence(&full, r.Alternatives[0].Transcript)
	}
	return full.String()
}

func videoText(resp *vipb.AnnotateVideoResponse) string {
	if resp == nil {
		return ""
	}
	var full strings.Builder
	for _, ar := range resp.AnnotationResults {
		if ar == nil {
			continue
		}
		for _, tr := range ar.SpeechTranscriptions {
			if tr == nil || len(tr.Alternatives) == 0 || tr.Alternatives[0] == nil {
				continue
			}
			appendSentence(&full, tr.Alternatives[0].Transcript)
		}
	}
	return full.String()
}

func appendSentence(sb *strings.Builder, s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	if sb.Len() > 0 {
		sb.WriteString(" ")
	}
	sb.WriteString(s)
}

type gcpSpeech struct {
	client *speech.Client
}

func (g *gcpSpeech) Recognize(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error) {
	op, err := g.client.LongRunningRecognize(ctx, req)
	if err != nil {
		return nil, err
	}
	return op.Wait(ctx)
}

func (g *gcpSpeech) Close() error { return g.client.Close() }

type gcpVideo struct {
	client *videointelligence.Client
}

func (g *gcpVideo) Annotate(ctx context.Context, req *vipb.AnnotateVideoRequest) (*vipb.AnnotateVideoResponse, error) {
	op, err := g.client.AnnotateVideo(ctx, req)
	if err != nil {
		return nil, err
	}
	return op.Wait(ctx)
}

func (g *gcpVideo) Close() error { return g.client.Close() }
