package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/connections-cli/internal/config"
	"github.com/sells-group/connections-cli/internal/model"
	"github.com/sells-group/connections-cli/pkg/openai"
	"github.com/sells-group/connections-cli/pkg/serpapi"
)

// defaultMaxRecords bounds how many records are enriched per run.
const defaultMaxRecords = 5

// defaultSearchesPerSec paces outbound search calls to stay inside the
// provider quota.
const defaultSearchesPerSec = 0.5

// Pipeline orchestrates per-record enrichment: lookup, extraction, merge.
type Pipeline struct {
	cfg     *config.Config
	search  serpapi.Client
	chat    openai.Client
	limiter *rate.Limiter
}

// New creates a Pipeline with its collaborators.
func New(cfg *config.Config, search serpapi.Client, chat openai.Client) *Pipeline {
	rps := cfg.Pipeline.SearchesPerSec
	if rps <= 0 {
		rps = defaultSearchesPerSec
	}
	return &Pipeline{
		cfg:     cfg,
		search:  search,
		chat:    chat,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// RunResult holds every record of a run, enriched or passed through, plus
// the per-record outcomes. Record count and order always match the input.
type RunResult struct {
	Connections []model.Connection `json:"connections"`
	Outcomes    []model.Outcome    `json:"outcomes"`
}

// Run processes records strictly in input order, one at a time, up to the
// configured limit. Records beyond the limit pass through untagged. A
// lookup or extraction failure degrades that record to an empty tag set
// and never halts the rest of the run; the only fatal error is context
// cancellation, which returns the partial result alongside the error.
func (p *Pipeline) Run(ctx context.Context, records []NormalizedRow) (*RunResult, error) {
	limit := p.cfg.Pipeline.MaxRecords
	if limit <= 0 {
		limit = defaultMaxRecords
	}

	log := zap.L().With(zap.String("run_id", uuid.NewString()))
	log.Info("pipeline: starting run",
		zap.Int("records", len(records)),
		zap.Int("limit", limit),
	)

	result := &RunResult{
		Connections: make([]model.Connection, 0, len(records)),
		Outcomes:    make([]model.Outcome, 0, len(records)),
	}

	for i, rec := range records {
		conn := rec.Connection

		if i >= limit {
			result.Connections = append(result.Connections, conn)
			result.Outcomes = append(result.Outcomes, model.Outcome{
				Row:    conn.Row,
				Name:   conn.FullName,
				Status: model.OutcomePassedThrough,
			})
			continue
		}

		if rec.Err != nil {
			log.Warn("pipeline: skipping unnormalizable row",
				zap.Int("row", conn.Row),
				zap.Error(rec.Err),
			)
			result.Connections = append(result.Connections, conn)
			result.Outcomes = append(result.Outcomes, model.Outcome{
				Row:    conn.Row,
				Status: model.OutcomeSkipped,
				Error:  rec.Err.Error(),
			})
			continue
		}

		log.Info("pipeline: processing connection",
			zap.Int("row", conn.Row),
			zap.String("name", conn.FullName),
			zap.Int("position", i+1),
			zap.Int("of", min(limit, len(records))),
		)

		start := time.Now()
		outcome := p.enrich(ctx, &conn)
		outcome.Duration = time.Since(start).Milliseconds()

		result.Connections = append(result.Connections, conn)
		result.Outcomes = append(result.Outcomes, outcome)

		if ctx.Err() != nil {
			return result, eris.Wrap(ctx.Err(), "pipeline: run aborted")
		}

		log.Info("pipeline: connection done",
			zap.Int("row", conn.Row),
			zap.String("name", conn.FullName),
			zap.String("status", string(outcome.Status)),
			zap.Int("tags", len(outcome.Tags)),
			zap.Int64("duration_ms", outcome.Duration),
		)
	}

	log.Info("pipeline: run complete", zap.Int("records", len(result.Connections)))
	return result, nil
}

// enrich runs lookup then extraction for one record and merges the tags
// onto it. Failures degrade: lookup errors feed extraction an empty
// snippet set, extraction errors leave an empty tag set. The record is
// always tagged on return.
func (p *Pipeline) enrich(ctx context.Context, conn *model.Connection) model.Outcome {
	outcome := model.Outcome{
		Row:    conn.Row,
		Name:   conn.FullName,
		Status: model.OutcomeTagged,
	}

	var snippets []model.Snippet
	if err := p.limiter.Wait(ctx); err != nil {
		outcome.Status = model.OutcomeLookupFailed
		outcome.Error = err.Error()
	} else {
		var lookupErr error
		snippets, lookupErr = LookupPhase(ctx, *conn, p.search, p.cfg.SerpAPI, p.cfg.Pipeline.MaxSnippets)
		if lookupErr != nil {
			zap.L().Warn("pipeline: lookup failed, proceeding with empty snippets",
				zap.Int("row", conn.Row),
				zap.String("name", conn.FullName),
				zap.Error(lookupErr),
			)
			outcome.Status = model.OutcomeLookupFailed
			outcome.Error = lookupErr.Error()
			snippets = nil
		}
	}

	tags, extractErr := ExtractPhase(ctx, *conn, snippets, p.chat, p.cfg.OpenAI, p.cfg.Pipeline)
	if extractErr != nil {
		zap.L().Warn("pipeline: extraction failed, tagging with empty set",
			zap.Int("row", conn.Row),
			zap.String("name", conn.FullName),
			zap.Error(extractErr),
		)
		if outcome.Status == model.OutcomeTagged {
			outcome.Status = model.OutcomeExtractionFailed
			outcome.Error = extractErr.Error()
		}
		tags = nil
	}

	conn.Interests = tags
	conn.Tagged = true
	outcome.Tags = tags
	return outcome
}
