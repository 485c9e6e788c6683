package models

// result of a single text generation call
type GenerationResult struct {
	Text     string             `json:"text"`
	Metadata GenerationMetadata `json:"metadata"`
}

// additional information about the generation
type GenerationMetadata struct {
	ProcessingTime int    `json:"processing_time_ms"`
	Provider       string `json:"provider"`
	Model          string `json:"model"`
}
