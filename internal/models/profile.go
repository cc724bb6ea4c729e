package models

// Profile is the structured user profile emitted by the LLM. On failure
// Error is set (and RawResponse when the model answered but its output
// could not be parsed); the analysis fields stay empty.
type Profile struct {
	UID          string   `json:"uid"`
	Stance       string   `json:"stance,omitempty"`
	Emotion      []string `json:"emotion,omitempty"`
	Perspective  []string `json:"perspective,omitempty"`
	Style        []string `json:"style,omitempty"`
	Engagement   string   `json:"engagement,omitempty"`
	InfoTendency string   `json:"info_tendency,omitempty"`
	MediaUsage   string   `json:"media_usage,omitempty"`
	Error        string   `json:"error,omitempty"`
	RawResponse  string   `json:"raw_response,omitempty"`
}

// Failed reports whether profile generation failed for this user
func (p *Profile) Failed() bool {
	return p.Error != ""
}
