package transcription

// Request holds parameters for a transcription call.
type Request struct {
	// AudioPath is the path to the audio file to transcribe.
	AudioPath string `json:"audio_path"`
	// Model is the transcription model to use.
	Model string `json:"model"`
	// DetectLanguage asks the backend to detect the spoken language. Set
	// only when AudioPath is the entire un-sliced input audio.
	DetectLanguage bool `json:"detect_language,omitempty"`
}

// Result holds the result of a transcription call.
type Result struct {
	// Text is the transcription text with surrounding whitespace trimmed.
	Text string `json:"text"`
	// Language is the detected language, empty unless detection was
	// requested.
	Language string `json:"language,omitempty"`
}
