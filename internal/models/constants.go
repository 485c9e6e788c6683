package models

// contains all supported synthesis voices (in lowercase)
var ValidVoices = map[string]bool{
	"alloy":   true,
	"echo":    true,
	"fable":   true,
	"onyx":    true,
	"nova":    true,
	"shimmer": true,
}

// DefaultVoice is used when a synthesis request does not name one.
const DefaultVoice = "alloy"

func ValidVoicesList() []string {
	return []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer"}
}
