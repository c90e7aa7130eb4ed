package diarization

// Turn is a maximal interval of continuous speech attributed to one speaker.
// The label is an opaque token from the backend; no naming scheme or bounded
// cardinality is assumed.
type Turn struct {
	// Speaker is the backend-assigned speaker label.
	Speaker string `json:"speaker"`
	// Start is the turn start time in seconds.
	Start float64 `json:"start"`
	// End is the turn end time in seconds.
	End float64 `json:"end"`
}

// Request holds parameters for a diarization call.
type Request struct {
	// AudioPath is the path to the canonical audio file to diarize.
	AudioPath string `json:"audio_path"`
}

// Response holds the result of a diarization call, in backend arrival order.
type Response struct {
	// Turns contains speaker-attributed time ranges.
	Turns []Turn `json:"turns"`
	// NumSpeakers is the number of speakers detected.
	NumSpeakers int `json:"num_speakers"`
}
