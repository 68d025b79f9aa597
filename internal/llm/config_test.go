package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{TierLite: "fallback-model"},
	}

	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
	assert.Equal(t, "", (&Config{Models: map[ModelTier]string{}}).GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultOpenAIConfig()
	custom := config.WithModel(TierAdvanced, "custom-model")

	assert.Equal(t, "gpt-4o", config.GetModel(TierAdvanced))
	assert.Equal(t, "custom-model", custom.GetModel(TierAdvanced))
	assert.Equal(t, "gpt-4o-mini", custom.GetModel(TierLite))
	assert.Equal(t, config.Temperature, custom.Temperature)
	assert.Equal(t, ProviderOpenAI, custom.Provider)
}

func TestParseProvider(t *testing.T) {
	tests := []struct {
		input   string
		want    Provider
		wantErr bool
	}{
		{"", ProviderGemini, false},
		{"gemini", ProviderGemini, false},
		{" OpenAI ", ProviderOpenAI, false},
		{"anthropic", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseProvider(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigFor(t *testing.T) {
	c, err := ConfigFor("openai")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, c.Provider)

	c, err = ConfigFor("")
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, c.Provider)

	_, err = ConfigFor("bogus")
	assert.Error(t, err)
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(nil, "")
	assert.Error(t, err)

	_, err = NewClient(t.Context(), DefaultOpenAIConfig(), "")
	assert.Error(t, err)
}

func TestOpenAIClient_NoModel(t *testing.T) {
	c, err := NewOpenAIClient(&Config{Provider: ProviderOpenAI, Models: map[ModelTier]string{}}, "sk-test")
	require.NoError(t, err)

	_, err = c.GenerateContent(t.Context(), "hi", TierLite)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no model configured")
	assert.NoError(t, c.Close())
}

func TestBuildExtractionPrompt(t *testing.T) {
	prompt := BuildExtractionPrompt(SkillsSchema(8), "We use Go and PostgreSQL.")

	assert.Contains(t, prompt, "at most 8 skills")
	assert.Contains(t, prompt, `"skills": ["string"] (required)`)
	assert.Contains(t, prompt, "We use Go and PostgreSQL.")
	assert.True(t, strings.HasSuffix(prompt, "\"\"\"\n"))
}
