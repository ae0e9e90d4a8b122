package ai

// ProviderPreset describes a known provider: where it lives and which models
// it offers. Presets are compiled in and never mutated.
type ProviderPreset struct {
	ID              string   `json:"id"`
	DisplayName     string   `json:"displayName"`
	BaseEndpoint    string   `json:"baseUrl"`
	SupportedModels []string `json:"models"`
	DefaultModel    string   `json:"defaultModel"`
}

// DefaultProviderID is the provider a fresh configuration starts with.
const DefaultProviderID = "openai"

// CustomProviderID resolves to an empty preset: the caller must supply both
// endpoint and model.
const CustomProviderID = "custom"

var textPresets = []ProviderPreset{
	{
		ID:              "openai",
		DisplayName:     "OpenAI",
		BaseEndpoint:    "https://api.openai.com/v1",
		SupportedModels: []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo", "gpt-4", "gpt-3.5-turbo"},
		DefaultModel:    "gpt-4o-mini",
	},
	{
		ID:              "deepseek",
		DisplayName:     "DeepSeek",
		BaseEndpoint:    "https://api.deepseek.com/v1",
		SupportedModels: []string{"deepseek-chat", "deepseek-coder", "deepseek-reasoner"},
		DefaultModel:    "deepseek-chat",
	},
	{
		ID:              "claude",
		DisplayName:     "Claude (Anthropic)",
		BaseEndpoint:    "https://api.anthropic.com/v1",
		SupportedModels: []string{"claude-3-5-sonnet-20241022", "claude-3-opus-20240229", "claude-3-haiku-20240307"},
		DefaultModel:    "claude-3-5-sonnet-20241022",
	},
	{
		ID:              "zhipu",
		DisplayName:     "智谱AI (GLM)",
		BaseEndpoint:    "https://open.bigmodel.cn/api/paas/v4",
		SupportedModels: []string{"glm-4-plus", "glm-4-0520", "glm-4-air", "glm-4-flash"},
		DefaultModel:    "glm-4-flash",
	},
	{
		ID:              "moonshot",
		DisplayName:     "Moonshot (Kimi)",
		BaseEndpoint:    "https://api.moonshot.cn/v1",
		SupportedModels: []string{"moonshot-v1-8k", "moonshot-v1-32k", "moonshot-v1-128k"},
		DefaultModel:    "moonshot-v1-8k",
	},
	{
		ID:              "qwen",
		DisplayName:     "通义千问 (阿里云)",
		BaseEndpoint:    "https://dashscope.aliyuncs.com/compatible-mode/v1",
		SupportedModels: []string{"qwen-turbo", "qwen-plus", "qwen-max", "qwen-max-longcontext"},
		DefaultModel:    "qwen-turbo",
	},
	{ID: CustomProviderID, DisplayName: "自定义服务", SupportedModels: []string{}},
}

var imagePresets = []ProviderPreset{
	{
		ID:              "openai",
		DisplayName:     "OpenAI DALL-E",
		BaseEndpoint:    "https://api.openai.com/v1",
		SupportedModels: []string{"dall-e-3", "dall-e-2"},
		DefaultModel:    "dall-e-3",
	},
	{
		ID:              "stability",
		DisplayName:     "Stability AI",
		BaseEndpoint:    "https://api.stability.ai/v1",
		SupportedModels: []string{"stable-diffusion-xl-1024-v1-0", "stable-diffusion-v1-6"},
		DefaultModel:    "stable-diffusion-xl-1024-v1-0",
	},
	{ID: CustomProviderID, DisplayName: "自定义服务", SupportedModels: []string{}},
}

// Presets returns the ordered preset table for the capability. The returned
// slice is a copy.
func Presets(capability Capability) []ProviderPreset {
	var src []ProviderPreset
	switch capability {
	case CapabilityText:
		src = textPresets
	case CapabilityImage:
		src = imagePresets
	default:
		return nil
	}
	out := make([]ProviderPreset, len(src))
	copy(out, src)
	return out
}

// Lookup finds the preset for providerID. The second result is false when the
// id is unknown; callers should treat such providers as custom.
func Lookup(capability Capability, providerID string) (ProviderPreset, bool) {
	if providerID == CustomProviderID {
		return ProviderPreset{ID: CustomProviderID, DisplayName: "自定义服务", SupportedModels: []string{}}, true
	}
	for _, p := range Presets(capability) {
		if p.ID == providerID {
			return p, true
		}
	}
	return ProviderPreset{}, false
}

// Family is the wire protocol a provider speaks.
type Family int

const (
	FamilyOpenAICompatible Family = iota
	FamilyAnthropic
)

func (f Family) String() string {
	switch f {
	case FamilyAnthropic:
		return "anthropic"
	default:
		return "openai_compatible"
	}
}

// FamilyOf maps a provider id to its protocol family. Unknown and custom
// providers are assumed to be OpenAI-compatible.
func FamilyOf(providerID string) Family {
	if providerID == "claude" {
		return FamilyAnthropic
	}
	return FamilyOpenAICompatible
}
