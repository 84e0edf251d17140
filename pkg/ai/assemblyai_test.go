package ai

import (
	"context"
	"testing"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/agent-trainer/pkg/config"
)

func TestFromAssemblyAI(t *testing.T) {
	t.Run("utterances_become_segments_in_seconds", func(t *testing.T) {
		transcript := aai.Transcript{
			Text:         aai.String("Hola, buenos días. Le ayudo con su cuenta."),
			LanguageCode: aai.TranscriptLanguageCode("es"),
			Utterances: []aai.TranscriptUtterance{
				{Text: aai.String("Hola, buenos días."), Start: aai.Int64(0), End: aai.Int64(1500)},
				{Text: aai.String("Le ayudo con su cuenta."), Start: aai.Int64(1750), End: aai.Int64(4200)},
			},
		}

		out := fromAssemblyAI(transcript, "es")

		assert.Equal(t, "Hola, buenos días. Le ayudo con su cuenta.", out.Text)
		assert.Equal(t, "es", out.Language)
		require.Len(t, out.Segments, 2)
		assert.InDelta(t, 0.0, out.Segments[0].Start, 1e-9)
		assert.InDelta(t, 1.5, out.Segments[0].End, 1e-9)
		assert.InDelta(t, 1.75, out.Segments[1].Start, 1e-9)
		assert.InDelta(t, 4.2, out.Segments[1].End, 1e-9)
		assert.Equal(t, "Le ayudo con su cuenta.", out.Segments[1].Text)
	})

	t.Run("no_utterances_yields_nil_segments", func(t *testing.T) {
		out := fromAssemblyAI(aai.Transcript{Text: aai.String("hola")}, "es")

		assert.Equal(t, "hola", out.Text)
		assert.Equal(t, "es", out.Language)
		assert.Nil(t, out.Segments)
	})
}

func TestAssemblyAIClient_Transcribe_EmptyURL(t *testing.T) {
	client := NewAssemblyAIClient(&config.AssemblyAIConfig{APIKey: "test-key"}, nil)

	_, err := client.Transcribe(context.Background(), "   ", "es")
	assert.Error(t, err)
	assert.Equal(t, "assemblyai", client.Name())
}
