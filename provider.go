package flowgate

// Provider identifies an AI provider.
type Provider string

// String returns the provider identifier.
func (p Provider) String() string { return string(p) }

// Supported providers.
const (
	ProviderAzure     Provider = "azure"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
	ProviderVertex    Provider = "vertex"
)

// ParseProvider maps a configuration string to a Provider.
// It returns false for unknown names.
func ParseProvider(s string) (Provider, bool) {
	switch p := Provider(s); p {
	case ProviderAzure, ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderVertex:
		return p, true
	}
	return "", false
}
