package constant

const (
	MessageEnterAPIKey     = "Please enter Google API key first!"
	MessageHistoryCleared  = "Conversation history cleared!"
	MessageCredentialSaved = "API key saved for this session"

	MessageChatbotReady     = "PDF Chatbot initialized successfully!"
	MessageTranscriberReady = "Audio Transcriber initialized successfully!"
	MessageCaptionerReady   = "Image Description Generator initialized successfully!"

	MessageNoDocument   = "Upload a PDF before asking questions"
	MessageIncompatible = "The selected processing mode cannot handle this file type"
	MessageUnroutable   = "No processing mode matches this file type"

	TitleTranscription    = "Transcription"
	TitleImageDescription = "Image Description"
)

// Event bus topics and event types
const (
	TopicDispatched     = "assistant.dispatched"
	EventUploadDispatch = "UPLOAD_DISPATCHED"
)

const (
	DispatchStatusOK      = "ok"
	DispatchStatusWarning = "warning"
	DispatchStatusError   = "error"
	DispatchStatusSkipped = "skipped"
)
