package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fraudsight/fraudsight/internal/llm"
)

const synthesisMaxTokens = 3000

const synthesisPrompt = `You are an expert fraud analyst. Synthesize a comprehensive, accurate answer based ONLY on the provided context data.

RULES:
1. Base your answer STRICTLY on the provided context. Do NOT add information not present in the context.
2. If SQL data is provided, reference specific numbers, percentages, and trends.
3. If document text is provided, cite the page number in brackets like [Page X].
4. If both are provided, integrate them coherently.
5. Structure your response clearly with headings or bullet points when appropriate.
6. If the context is insufficient to fully answer the question, explicitly state what information is missing.
7. For time-series data, describe the trend (increasing, decreasing, seasonal patterns).
8. Round percentages to 2 decimal places.

%s

Answer the following question thoroughly and accurately:
`

// Synthesizer turns tool evidence into a grounded natural-language answer,
// streaming fragments to the caller as the model produces them.
type Synthesizer struct {
	provider llm.Provider
	model    string
	logger   *zerolog.Logger
}

func NewSynthesizer(provider llm.Provider, model string, logger *zerolog.Logger) *Synthesizer {
	return &Synthesizer{provider: provider, model: model, logger: logger}
}

// Synthesize builds the evidence context and streams the answer. When no
// usable evidence exists it emits a fixed fallback message instead of
// calling the model. toolErrs carries user-facing descriptions of tool
// failures for the fallback text.
func (s *Synthesizer) Synthesize(
	ctx context.Context,
	question string,
	history []Exchange,
	sqlRes *SQLResult,
	ragRes *RAGResult,
	toolErrs []string,
	fn llm.FragmentFunc,
) (string, error) {
	var contextParts []string

	if sqlRes != nil && len(sqlRes.Rows) > 0 {
		contextParts = append(contextParts, renderSQLEvidence(sqlRes))
	}
	if ragRes != nil && len(ragRes.Chunks) > 0 {
		contextParts = append(contextParts, renderRAGEvidence(ragRes))
	}

	if len(contextParts) == 0 {
		text := noContextAnswer(sqlRes, toolErrs)
		if fn != nil {
			if err := fn(text); err != nil {
				return "", err
			}
		}
		return text, nil
	}

	system := fmt.Sprintf(synthesisPrompt, "CONTEXT:\n"+strings.Join(contextParts, "\n\n"))

	messages := []llm.Message{{Role: llm.RoleSystem, Content: system}}
	for _, ex := range boundHistory(history) {
		messages = append(messages,
			llm.Message{Role: llm.RoleUser, Content: ex.Question},
			llm.Message{Role: llm.RoleAssistant, Content: ex.Answer},
		)
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})

	s.logger.Debug().
		Int("context_parts", len(contextParts)).
		Msg("synthesizing answer")

	text, err := s.provider.Stream(ctx, llm.CompletionRequest{
		Model:     s.model,
		Messages:  messages,
		MaxTokens: synthesisMaxTokens,
	}, fn)
	if err != nil {
		return "", err
	}
	return text, nil
}

// noContextAnswer produces the canned response used when neither tool
// yielded evidence to synthesize from.
func noContextAnswer(sqlRes *SQLResult, toolErrs []string) string {
	if len(toolErrs) > 0 {
		var b strings.Builder
		b.WriteString("I was unable to retrieve the necessary data to answer your question.\n\n")
		b.WriteString("**Issues encountered:**\n")
		for _, e := range toolErrs {
			b.WriteString("- " + e + "\n")
		}
		b.WriteString("\nPlease try rephrasing your question or check that the data sources are properly set up.")
		return b.String()
	}

	if sqlRes != nil && sqlRes.RowCount == 0 {
		return "The database query returned no results for your question. " +
			"This might mean the data doesn't contain matching records. " +
			"Try broadening your query or asking about different criteria."
	}

	return "I couldn't find relevant information to answer your question. Please try rephrasing it."
}
