package builder

import "github.com/tokenlay/tokenlay-go/internal/models"

func (b *Builder) Provider(provider models.ProviderName) *Builder {
	b.cfg.Provider = provider
	return b
}

// ProviderBaseURL overrides the upstream URL the proxy forwards to.
func (b *Builder) ProviderBaseURL(url string) *Builder {
	b.cfg.ProviderBaseURL = url
	return b
}

func (b *Builder) OpenAI() *Builder {
	return b.Provider(models.ProviderOpenAI)
}

func (b *Builder) Anthropic() *Builder {
	return b.Provider(models.ProviderAnthropic)
}

func (b *Builder) Gemini() *Builder {
	return b.Provider(models.ProviderGemini)
}
