package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fraudsight/fraudsight/internal/llm"
)

// DefaultQualityThreshold is the minimum quality score an answer must reach
// to be returned without retrying.
const DefaultQualityThreshold = 3

// DefaultMaxAttempts bounds the classify/tool/synthesize/score loop.
const DefaultMaxAttempts = 3

const lowConfidenceDisclaimer = "\n\n---\n*Note: This response may have limited accuracy. " +
	"The quality score did not meet the confidence threshold after multiple attempts. " +
	"Please verify the information against the source data.*"

// The small interfaces below decouple the orchestrator from the concrete
// tool implementations so tests can script each stage independently.

type questionClassifier interface {
	Classify(ctx context.Context, question string, history []Exchange) Classification
}

type sqlRunner interface {
	Run(ctx context.Context, question string) (*SQLResult, error)
}

type docSearcher interface {
	Search(ctx context.Context, query string) (*RAGResult, error)
}

type answerSynthesizer interface {
	Synthesize(ctx context.Context, question string, history []Exchange, sqlRes *SQLResult, ragRes *RAGResult, toolErrs []string, fn llm.FragmentFunc) (string, error)
}

type answerScorer interface {
	Score(ctx context.Context, question, answer string, sqlRes *SQLResult, ragRes *RAGResult) QualityScore
}

// Agent runs the full control loop for one question: classify the intent,
// execute the selected tools, synthesize an answer from the evidence, grade
// it, and retry until the grade clears the threshold or attempts run out.
type Agent struct {
	classifier  questionClassifier
	sqlTool     sqlRunner
	ragTool     docSearcher
	synthesizer answerSynthesizer
	scorer      answerScorer

	qualityThreshold int
	maxAttempts      int
	logger           *zerolog.Logger
}

// Options tune the retry loop. Zero values fall back to the defaults.
type Options struct {
	QualityThreshold int
	MaxAttempts      int
}

func New(
	classifier *Classifier,
	sqlTool *SQLTool,
	ragTool *RAGTool,
	synthesizer *Synthesizer,
	scorer *Scorer,
	opts Options,
	logger *zerolog.Logger,
) *Agent {
	if opts.QualityThreshold == 0 {
		opts.QualityThreshold = DefaultQualityThreshold
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	return &Agent{
		classifier:       classifier,
		sqlTool:          sqlTool,
		ragTool:          ragTool,
		synthesizer:      synthesizer,
		scorer:           scorer,
		qualityThreshold: opts.QualityThreshold,
		maxAttempts:      opts.MaxAttempts,
		logger:           logger,
	}
}

// Process answers one question. It returns immediately with a channel that
// carries step notifications, synthesis fragments, and exactly one terminal
// outcome event, after which the channel is closed.
func (a *Agent) Process(ctx context.Context, question string, history []Exchange) <-chan Event {
	events := make(chan Event, 16)
	go func() {
		defer close(events)
		a.run(ctx, question, history, events)
	}()
	return events
}

func (a *Agent) run(ctx context.Context, question string, history []Exchange, events chan<- Event) {
	question = SanitizeQuestion(question)
	if question == "" {
		emit(ctx, events, Event{Kind: EventOutcome, Outcome: &Outcome{
			Answer:     "Please enter a question to get started.",
			QueryType:  QueryTypeUnknown,
			Confidence: ConfidenceUnavailable,
		}})
		return
	}
	history = boundHistory(history)

	var attempts []AttemptRecord

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		if attempt > 1 {
			emit(ctx, events, Event{Kind: EventStep, Step: "retry",
				Label: fmt.Sprintf("Retrying (attempt %d/%d)", attempt, a.maxAttempts)})
		}

		rec, done := a.runAttempt(ctx, question, history, attempt, events)
		if ctx.Err() != nil {
			return
		}
		attempts = append(attempts, rec)

		if done {
			a.emitFinal(ctx, events, rec, len(attempts), false)
			return
		}
		if rec.Score.Score >= a.qualityThreshold {
			a.logger.Info().Int("attempt", attempt).Int("score", rec.Score.Score).
				Msg("quality threshold met")
			a.emitFinal(ctx, events, rec, len(attempts), false)
			return
		}
		a.logger.Warn().Int("attempt", attempt).Int("score", rec.Score.Score).
			Msg("quality below threshold")
	}

	best := pickBest(attempts)
	a.emitFinal(ctx, events, best, len(attempts), true)
}

// runAttempt executes one full cycle. done reports that the loop must stop
// regardless of score, which happens when every requested tool failed and
// there is nothing left to retry against.
func (a *Agent) runAttempt(ctx context.Context, question string, history []Exchange, attempt int, events chan<- Event) (AttemptRecord, bool) {
	emit(ctx, events, Event{Kind: EventStep, Step: "classify", Label: "Classifying your question..."})
	classification := a.classifier.Classify(ctx, question, history)
	emit(ctx, events, Event{Kind: EventStep, Step: "classify_done",
		Label:  classificationLabel(classification.QueryType),
		Detail: classification.Reasoning,
	})

	sqlRes, ragRes, toolErrs := a.runTools(ctx, question, classification, events)

	rec := AttemptRecord{Attempt: attempt, Classification: classification}

	sqlFailed := classification.NeedsSQL() && sqlRes == nil
	ragFailed := classification.NeedsRAG() && ragRes == nil
	allFailed := (sqlFailed || ragFailed) && sqlRes == nil && ragRes == nil
	if allFailed {
		text, _ := a.synthesizer.Synthesize(ctx, question, history, nil, nil, toolErrs, nil)
		rec.Draft = &DraftAnswer{Text: text, Attempt: attempt}
		rec.Score = QualityScore{Score: 0, Reasoning: "no evidence available"}
		return rec, true
	}

	if classification.QueryType == QueryTypeHybrid {
		switch {
		case sqlFailed:
			rec.DegradationNote = "Database results were unavailable for this answer; it is based on document context only."
		case ragFailed:
			rec.DegradationNote = "Document context was unavailable for this answer; it is based on database results only."
		}
	}

	emit(ctx, events, Event{Kind: EventStep, Step: "synthesize", Label: "Generating response..."})
	text, err := a.synthesizer.Synthesize(ctx, question, history, sqlRes, ragRes, toolErrs, func(fragment string) error {
		emit(ctx, events, Event{Kind: EventFragment, Fragment: fragment})
		return ctx.Err()
	})
	if err != nil {
		a.logger.Error().Err(err).Msg("synthesis failed")
		text = "I was unable to generate a response. Please try again."
		emit(ctx, events, Event{Kind: EventFragment, Fragment: text})
	}
	if rec.DegradationNote != "" {
		note := "\n\n*" + rec.DegradationNote + "*"
		text += note
		emit(ctx, events, Event{Kind: EventFragment, Fragment: note})
	}
	rec.Draft = &DraftAnswer{Text: text, SQL: sqlRes, RAG: ragRes, Attempt: attempt}

	emit(ctx, events, Event{Kind: EventStep, Step: "score", Label: "Evaluating response quality..."})
	rec.Score = a.scorer.Score(ctx, question, text, sqlRes, ragRes)
	emit(ctx, events, Event{Kind: EventStep, Step: "score_done",
		Label:  fmt.Sprintf("Quality score: %d/5", rec.Score.Score),
		Detail: rec.Score.Reasoning,
	})

	return rec, false
}

// runTools executes the tools the classification selected. Hybrid questions
// run both concurrently. A failed tool yields a nil result and a
// user-facing error description; it never aborts the attempt.
func (a *Agent) runTools(ctx context.Context, question string, classification Classification, events chan<- Event) (*SQLResult, *RAGResult, []string) {
	var (
		sqlRes   *SQLResult
		ragRes   *RAGResult
		sqlErr   error
		ragErr   error
		toolErrs []string
	)

	var wg sync.WaitGroup
	if classification.NeedsSQL() {
		emit(ctx, events, Event{Kind: EventStep, Step: "sql", Label: "Generating and executing SQL query..."})
		hint := classification.SQLQueryHint
		if hint == "" {
			hint = question
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			sqlRes, sqlErr = a.sqlTool.Run(ctx, hint)
		}()
	}
	if classification.NeedsRAG() {
		emit(ctx, events, Event{Kind: EventStep, Step: "rag", Label: "Searching documents for relevant information..."})
		hint := classification.RAGSearchHint
		if hint == "" {
			hint = question
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			ragRes, ragErr = a.ragTool.Search(ctx, hint)
		}()
	}
	wg.Wait()

	if classification.NeedsSQL() {
		if sqlErr != nil {
			a.logger.Warn().Err(sqlErr).Msg("sql tool failed")
			toolErrs = append(toolErrs, "SQL Tool: "+sqlErr.Error())
			emit(ctx, events, Event{Kind: EventStep, Step: "sql_done",
				Label: "SQL query issue: " + truncateRunes(sqlErr.Error(), 80)})
			sqlRes = nil
		} else {
			emit(ctx, events, Event{Kind: EventStep, Step: "sql_done",
				Label:  fmt.Sprintf("SQL returned %d rows", sqlRes.RowCount),
				Detail: sqlRes.Query,
			})
		}
	}
	if classification.NeedsRAG() {
		if ragErr != nil {
			a.logger.Warn().Err(ragErr).Msg("rag tool failed")
			toolErrs = append(toolErrs, "RAG Tool: "+ragErr.Error())
			emit(ctx, events, Event{Kind: EventStep, Step: "rag_done",
				Label: "Document search issue: " + truncateRunes(ragErr.Error(), 80)})
			ragRes = nil
		} else {
			emit(ctx, events, Event{Kind: EventStep, Step: "rag_done",
				Label: fmt.Sprintf("Found %d relevant chunks (pages %s)", len(ragRes.Chunks), pageList(ragRes))})
		}
	}

	return sqlRes, ragRes, toolErrs
}

func (a *Agent) emitFinal(ctx context.Context, events chan<- Event, rec AttemptRecord, attempts int, exhausted bool) {
	answer := ""
	var sqlRes *SQLResult
	var ragRes *RAGResult
	if rec.Draft != nil {
		answer = rec.Draft.Text
		sqlRes = rec.Draft.SQL
		ragRes = rec.Draft.RAG
	}

	confidence := ConfidenceConfident
	switch {
	case rec.Score.Score == 0:
		confidence = ConfidenceUnavailable
	case exhausted && rec.Score.Score < a.qualityThreshold:
		confidence = ConfidenceLow
		answer += lowConfidenceDisclaimer
		emit(ctx, events, Event{Kind: EventFragment, Fragment: lowConfidenceDisclaimer})
	case rec.DegradationNote != "":
		confidence = ConfidenceDegraded
	}

	var score *QualityScore
	if rec.Score.Score > 0 {
		s := rec.Score
		score = &s
	}

	emit(ctx, events, Event{Kind: EventOutcome, Outcome: &Outcome{
		Answer:     answer,
		QueryType:  rec.Classification.QueryType,
		SQL:        sqlRes,
		RAG:        ragRes,
		Score:      score,
		Sources:    citedSources(sqlRes, ragRes),
		Confidence: confidence,
		Attempts:   attempts,
	}})
}

// pickBest returns the highest-scoring attempt; ties go to the earliest.
func pickBest(attempts []AttemptRecord) AttemptRecord {
	best := attempts[0]
	for _, rec := range attempts[1:] {
		if rec.Score.Score > best.Score.Score {
			best = rec
		}
	}
	return best
}

func classificationLabel(qt QueryType) string {
	switch qt {
	case QueryTypeSQL:
		return "Statistical query, will query the database"
	case QueryTypeRAG:
		return "Document query, will search the fraud reports"
	case QueryTypeHybrid:
		return "Hybrid query, will use both database and documents"
	default:
		return "Unknown query type"
	}
}

func pageList(res *RAGResult) string {
	seen := map[int]bool{}
	var pages []int
	for _, meta := range res.Metadatas {
		if meta.Page > 0 && !seen[meta.Page] {
			seen[meta.Page] = true
			pages = append(pages, meta.Page)
		}
	}
	sort.Ints(pages)
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ", ")
}

// emit delivers an event unless the consumer is gone.
func emit(ctx context.Context, events chan<- Event, ev Event) {
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}
