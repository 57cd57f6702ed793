package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fraudsight/fraudsight/internal/llm"
)

const (
	scorerRowPreview   = 10
	scorerChunkPreview = 5
	scorerChunkChars   = 500
)

const scoringPrompt = `You are a quality assurance evaluator for an AI fraud analysis system. Evaluate the quality of the given answer against the source context.

SCORING RUBRIC (1-5):
5 = Fully accurate, cites specific data/pages, answers all parts of the question
4 = Accurate with minor omissions, good citations
3 = Mostly accurate, answers the core question but may lack detail or citations
2 = Partially correct, missing key information or contains unsupported claims
1 = Incorrect, hallucinated, or fails to address the question

EVALUATION CRITERIA:
1. Faithfulness: Does the answer only contain information from the provided context?
2. Completeness: Does it answer all parts of the question?
3. Citations: Does it reference specific data points, pages, or sources?
4. Accuracy: Are all numbers and claims verifiable from the context?

CONTEXT:
%s

QUESTION: %s

ANSWER TO EVALUATE:
%s

Respond with ONLY a JSON object (no markdown, no code blocks):
{
    "score": <1-5>,
    "reasoning": "explanation of the score",
    "has_hallucination": true/false,
    "missing_information": ["list of missing items"] or []
}`

// Scorer grades draft answers against the evidence they were built from.
// It uses the routing model since grading does not need the full model.
type Scorer struct {
	provider llm.Provider
	model    string
	logger   *zerolog.Logger
}

func NewScorer(provider llm.Provider, model string, logger *zerolog.Logger) *Scorer {
	return &Scorer{provider: provider, model: model, logger: logger}
}

// Score evaluates an answer on the 1-5 rubric. It never fails the pipeline:
// a grader that cannot be parsed yields the floor score so the retry loop
// treats the draft as suspect rather than trusting it blindly.
func (s *Scorer) Score(ctx context.Context, question, answer string, sqlRes *SQLResult, ragRes *RAGResult) QualityScore {
	contextText, ok := s.buildContext(sqlRes, ragRes)
	if !ok {
		return QualityScore{
			Score:              2,
			Reasoning:          "No source context available for verification",
			MissingInformation: []string{"No context data to verify against"},
		}
	}

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Model: s.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: fmt.Sprintf(scoringPrompt, contextText, question, answer)},
			{Role: llm.RoleUser, Content: "Evaluate the answer quality."},
		},
		JSONMode: true,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("quality scoring call failed")
		return unparseableScore()
	}

	var parsed struct {
		Score              int      `json:"score"`
		Reasoning          string   `json:"reasoning"`
		HasHallucination   bool     `json:"has_hallucination"`
		MissingInformation []string `json:"missing_information"`
	}
	raw := stripMarkdownCodeBlock(resp.Content)
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		s.logger.Warn().Err(err).Str("raw", resp.Content).Msg("failed to parse quality score")
		return unparseableScore()
	}
	if parsed.Score < 1 || parsed.Score > 5 {
		parsed.Score = clampScore(parsed.Score)
	}

	return QualityScore{
		Score:              parsed.Score,
		Reasoning:          parsed.Reasoning,
		HasHallucination:   parsed.HasHallucination,
		MissingInformation: parsed.MissingInformation,
	}
}

func unparseableScore() QualityScore {
	return QualityScore{Score: 1, Reasoning: "unparseable scorer output"}
}

func clampScore(n int) int {
	if n < 1 {
		return 1
	}
	if n > 5 {
		return 5
	}
	return n
}

// buildContext assembles a compact evidence summary for the grader. It
// reports false when neither tool produced anything to verify against.
func (s *Scorer) buildContext(sqlRes *SQLResult, ragRes *RAGResult) (string, bool) {
	var parts []string

	if sqlRes != nil && len(sqlRes.Rows) > 0 {
		preview := sqlRes.Rows
		if len(preview) > scorerRowPreview {
			preview = preview[:scorerRowPreview]
		}
		parts = append(parts, fmt.Sprintf(
			"SQL Query: %s\nColumns: %v\nSample rows: %v\nTotal rows: %d",
			sqlRes.Query, sqlRes.Columns, preview, sqlRes.RowCount))
	}

	if ragRes != nil && len(ragRes.Chunks) > 0 {
		for i, chunk := range ragRes.Chunks {
			if i >= scorerChunkPreview {
				break
			}
			parts = append(parts, fmt.Sprintf("[Page %d]: %s", ragRes.Metadatas[i].Page, truncateRunes(chunk, scorerChunkChars)))
		}
	}

	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "\n\n"), true
}
