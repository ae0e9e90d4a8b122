package ai

// Capability selects which provider configuration a call uses.
type Capability string

const (
	CapabilityText  Capability = "text"
	CapabilityImage Capability = "image"
)

// Valid reports whether c is one of the known capabilities.
func (c Capability) Valid() bool {
	return c == CapabilityText || c == CapabilityImage
}

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single message of a conversation. Order is significant.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ProviderConfig holds the settings needed to call a user-configured provider.
type ProviderConfig struct {
	Provider string
	APIKey   string
	Endpoint string
	Model    string
	Enabled  bool
}

// Ready reports whether cfg is enabled and fully specified.
func (c ProviderConfig) Ready() bool {
	return c.Enabled && c.APIKey != "" && c.Endpoint != "" && c.Model != ""
}

// ChatOptions tunes a chat completion. Nil pointers and zero MaxTokens select
// the defaults (temperature 0.7, top_p 1, max_tokens 4096).
type ChatOptions struct {
	Temperature *float64
	MaxTokens   int
	TopP        *float64
}

// ImageOptions tunes an image generation. Empty values select the defaults
// (size 1024x1024, quality standard, n 1).
type ImageOptions struct {
	Size    string
	Quality string
	N       int
}

const (
	defaultTemperature  = 0.7
	defaultTopP         = 1.0
	defaultMaxTokens    = 4096
	defaultImageSize    = "1024x1024"
	defaultImageQuality = "standard"
	defaultImageCount   = 1
)

func (o ChatOptions) temperature() float64 {
	if o.Temperature == nil {
		return defaultTemperature
	}
	return *o.Temperature
}

func (o ChatOptions) topP() float64 {
	if o.TopP == nil {
		return defaultTopP
	}
	return *o.TopP
}

func (o ChatOptions) maxTokens() int {
	if o.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return o.MaxTokens
}

func (o ImageOptions) withDefaults() ImageOptions {
	if o.Size == "" {
		o.Size = defaultImageSize
	}
	if o.Quality == "" {
		o.Quality = defaultImageQuality
	}
	if o.N <= 0 {
		o.N = defaultImageCount
	}
	return o
}
