package assistant

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ProcessingMode selects which collaborator handles an upload
type ProcessingMode string

const (
	ModeAutoDetect        ProcessingMode = "auto_detect"
	ModeQuestionAnswering ProcessingMode = "question_answering"
	ModeTranscription     ProcessingMode = "transcription"
	ModeImageDescription  ProcessingMode = "image_description"
)

// Modes lists the selector options in display order
var Modes = []ProcessingMode{
	ModeAutoDetect,
	ModeQuestionAnswering,
	ModeTranscription,
	ModeImageDescription,
}

var modeLabels = map[ProcessingMode]string{
	ModeAutoDetect:        "Auto Detect",
	ModeQuestionAnswering: "Question Answering",
	ModeTranscription:     "Transcription",
	ModeImageDescription:  "Image Description",
}

// Label returns the human readable selector label
func (m ProcessingMode) Label() string {
	if l, ok := modeLabels[m]; ok {
		return l
	}
	return string(m)
}

func (m ProcessingMode) Valid() bool {
	_, ok := modeLabels[m]
	return ok
}

// ParseMode accepts either the wire value ("transcription") or the label
// ("Transcription"). An empty string means auto detection.
func ParseMode(raw string) (ProcessingMode, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ModeAutoDetect, nil
	}
	for m, label := range modeLabels {
		if strings.EqualFold(v, string(m)) || strings.EqualFold(v, label) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, raw)
}

// UploadExtensions is the allow-list accepted by the upload endpoint.
var UploadExtensions = []string{".pdf", ".txt", ".mp3", ".wav", ".mp4", ".avi", ".jpg", ".jpeg", ".png"}

// modeExtensions maps each concrete mode to the extensions it can process
var modeExtensions = map[ProcessingMode][]string{
	ModeQuestionAnswering: {".pdf"},
	ModeImageDescription:  {".jpg", ".jpeg", ".png"},
	ModeTranscription:     {".mp3", ".wav", ".mp4", ".avi"},
}

// extensionModes is the inverse lookup used by auto detection
var extensionModes = func() map[string]ProcessingMode {
	out := make(map[string]ProcessingMode)
	for mode, exts := range modeExtensions {
		for _, ext := range exts {
			out[ext] = mode
		}
	}
	return out
}()

// Extensions returns the extensions a concrete mode accepts
func (m ProcessingMode) Extensions() []string {
	exts := modeExtensions[m]
	out := make([]string, len(exts))
	copy(out, exts)
	return out
}

// ExtensionOf returns the lower-cased extension of a file name including the dot
func ExtensionOf(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// Uploadable reports whether ext is on the upload allow-list
func Uploadable(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range UploadExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// DetectMode resolves the auto-detect table. ok is false for extensions with no route.
func DetectMode(ext string) (ProcessingMode, bool) {
	m, ok := extensionModes[strings.ToLower(ext)]
	return m, ok
}

// Outcome is the result of matching a requested mode against a file extension
type Outcome string

const (
	OutcomeRouted       Outcome = "routed"
	OutcomeIncompatible Outcome = "incompatible" // explicit mode cannot process this extension
	OutcomeUnroutable   Outcome = "unroutable"   // auto detection found no mode
)

// Resolution carries the concrete mode chosen for an upload
type Resolution struct {
	Requested ProcessingMode
	Mode      ProcessingMode // empty unless Outcome is routed
	Extension string
	Outcome   Outcome
}

func (r Resolution) Routed() bool {
	return r.Outcome == OutcomeRouted
}

// Resolve applies auto detection and the mode/extension compatibility check.
func Resolve(requested ProcessingMode, ext string) Resolution {
	ext = strings.ToLower(ext)
	res := Resolution{Requested: requested, Extension: ext}

	mode := requested
	if requested == ModeAutoDetect {
		detected, ok := DetectMode(ext)
		if !ok {
			res.Outcome = OutcomeUnroutable
			return res
		}
		mode = detected
	}

	for _, e := range modeExtensions[mode] {
		if e == ext {
			res.Mode = mode
			res.Outcome = OutcomeRouted
			return res
		}
	}
	res.Outcome = OutcomeIncompatible
	return res
}

// ExtensionTable returns a copy of the auto-detect table
func ExtensionTable() map[string]ProcessingMode {
	out := make(map[string]ProcessingMode, len(extensionModes))
	for k, v := range extensionModes {
		out[k] = v
	}
	return out
}
