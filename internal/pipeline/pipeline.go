// Package pipeline turns one user query into a catalog-checked recommendation:
// intent extraction, LLM answer, correction, filtering and flight simulation.
package pipeline

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/ppiankov/findmindisc/internal/cache"
	"github.com/ppiankov/findmindisc/internal/catalog"
	"github.com/ppiankov/findmindisc/internal/correct"
	"github.com/ppiankov/findmindisc/internal/extract"
	"github.com/ppiankov/findmindisc/internal/filter"
	"github.com/ppiankov/findmindisc/internal/flight"
	"github.com/ppiankov/findmindisc/internal/llm"
	"github.com/ppiankov/findmindisc/internal/logging"
	"github.com/ppiankov/findmindisc/internal/model"
	"github.com/ppiankov/findmindisc/internal/score"
)

const (
	defaultMaxDiscs     = 4
	defaultContextDiscs = 20
)

// ErrEmptyQuery is returned for a blank query
var ErrEmptyQuery = errors.New("empty query")

// CorrectionSink receives every finished turn, e.g. a persistent correction log
type CorrectionSink interface {
	Record(ctx context.Context, rec *model.Recommendation) error
}

// Request is one conversational turn
type Request struct {
	Query string

	// ShownDiscs are the discs presented in the previous turn. They are only
	// used to resolve "them" style references; the pipeline keeps no history.
	ShownDiscs []string
}

// Deps are the collaborators of a Pipeline. Only Catalog is required.
type Deps struct {
	Catalog  *catalog.Catalog
	Provider llm.Provider   // nil disables Recommend
	Answers  *cache.Answers // nil disables answer caching
	Sink     CorrectionSink // nil disables the correction log
}

// Pipeline orchestrates the complete recommendation process. It holds no
// per-turn state and is safe for concurrent use.
type Pipeline struct {
	catalog  *catalog.Catalog
	provider llm.Provider
	answers  *cache.Answers
	sink     CorrectionSink

	intents  *extract.IntentExtractor
	parser   *extract.AnswerParser
	engine   *correct.Engine
	scorer   *score.Scorer
	renderer *Renderer
	cfg      *model.Config
	log      zerolog.Logger

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, deps Deps) (*Pipeline, error) {
	if deps.Catalog == nil {
		return nil, errors.New("pipeline needs a catalog")
	}
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	return &Pipeline{
		catalog:  deps.Catalog,
		provider: deps.Provider,
		answers:  deps.Answers,
		sink:     deps.Sink,
		intents:  extract.NewIntentExtractor(deps.Catalog),
		parser:   extract.NewAnswerParser(deps.Catalog),
		engine: correct.NewEngine(deps.Catalog, correct.Options{
			WindowLines:  cfg.Pipeline.CorrectionWindowLines,
			Manufacturer: true,
		}),
		scorer:   score.NewScorer(),
		renderer: NewRenderer(cfg.Output.IncludeFlight),
		cfg:      cfg,
		log:      logging.Component("pipeline"),
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Catalog returns the catalog the pipeline checks answers against
func (p *Pipeline) Catalog() *catalog.Catalog {
	return p.catalog
}

// Renderer returns the report renderer configured for this pipeline
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// Provider returns the configured answer provider, nil when disabled
func (p *Pipeline) Provider() llm.Provider {
	return p.provider
}

func (p *Pipeline) newTurnID(t time.Time) string {
	p.entropyMu.Lock()
	defer p.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), p.entropy).String()
}

// Recommend runs one turn. Provider failures are returned as *llm.CallError
// and are never retried here; every other step is deterministic.
func (p *Pipeline) Recommend(ctx context.Context, req Request) (*model.Recommendation, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	started := time.Now()
	rec := &model.Recommendation{
		TurnID:    p.newTurnID(started),
		Query:     query,
		CreatedAt: started.UTC(),
	}
	log := p.log.With().Str("turn_id", rec.TurnID).Logger()

	// 1. Extract intent
	rec.Intent = p.intents.Extract(query)
	log.Debug().Interface("intent", rec.Intent).Msg("extracted intent")

	// 2. Ask the LLM, with the catalog as context
	resp, cached, err := p.answer(ctx, query, rec.Intent, req.ShownDiscs)
	if err != nil {
		return nil, err
	}
	rec.RawAnswer = resp.Text
	rec.Model = resp.Model
	rec.Provider = p.provider.Name()
	rec.Cached = cached

	// 3. Correct flight numbers and manufacturers
	corrected := p.engine.Correct(resp.Text)
	rec.Answer = corrected.Text
	rec.Corrections = corrected.Corrections
	rec.Skipped = corrected.Skipped

	// 4. Resolve the recommended discs
	candidates := p.resolve(rec, log)

	// 5. Enforce the query constraints
	kept, rejected := filter.Partition(candidates, rec.Intent, p.catalog.Thresholds())
	rec.Rejected = rejected
	if len(rejected) > 0 && p.cfg.Pipeline.PruneRejected {
		names := make([]string, 0, len(rejected))
		for _, r := range rejected {
			names = append(names, r.Name)
		}
		rec.Answer = p.parser.Prune(rec.Answer, names)
	}

	// 6. Simulate flights
	rec.Discs = make([]model.RecommendedDisc, 0, len(kept))
	for _, d := range kept {
		rec.Discs = append(rec.Discs, p.recommendedDisc(d, rec.Intent))
	}

	// 7. Diagnostics (never change the disc list)
	rec.Signals = p.scorer.Assess(rec)

	if p.sink != nil {
		if err := p.sink.Record(ctx, rec); err != nil {
			log.Warn().Err(err).Msg("failed to record corrections")
		}
	}

	log.Info().
		Strs("discs", rec.DiscNames()).
		Int("corrections", len(rec.Corrections)).
		Int("rejected", len(rec.Rejected)).
		Int("unresolved", len(rec.Unresolved)).
		Bool("cached", rec.Cached).
		Dur("took", time.Since(started)).
		Msg("turn complete")

	return rec, nil
}

// answer returns the provider's answer, served from the cache when possible
func (p *Pipeline) answer(ctx context.Context, query string, intent model.QueryIntent, shown []string) (*llm.AnswerResponse, bool, error) {
	if p.provider == nil {
		return nil, false, &llm.CallError{Provider: "none", Err: llm.ErrDisabled}
	}

	req := llm.AnswerRequest{
		Query:     query,
		Context:   p.buildContext(intent, shown),
		Model:     p.cfg.LLM.Model,
		MaxTokens: p.cfg.LLM.MaxTokens,
	}
	language := p.cfg.LLM.Language
	key := cache.AnswerKey(p.provider.Name(), req.Model, language, llm.BuildPrompt(req, language))

	if resp, ok := p.answers.Get(key); ok {
		p.log.Debug().Str("provider", p.provider.Name()).Msg("answer served from cache")
		return resp, true, nil
	}

	resp, err := p.provider.Answer(ctx, req)
	if err != nil {
		var callErr *llm.CallError
		if !errors.As(err, &callErr) {
			err = &llm.CallError{Provider: p.provider.Name(), Err: err}
		}
		p.log.Warn().Err(err).Str("provider", p.provider.Name()).Msg("answer provider failed")
		return nil, false, err
	}
	if resp == nil {
		return nil, false, &llm.CallError{Provider: p.provider.Name(), Err: errors.New("empty response")}
	}

	p.answers.Put(key, resp)
	return resp, false, nil
}

// resolve looks up the discs the answer recommends, at most MaxDiscs of them.
// Names that are not in the catalog are recorded and skipped.
func (p *Pipeline) resolve(rec *model.Recommendation, log zerolog.Logger) []model.DiscRecord {
	limit := p.cfg.Pipeline.MaxDiscs
	if limit <= 0 {
		limit = defaultMaxDiscs
	}

	var out []model.DiscRecord
	for _, name := range p.parser.RecommendedNames(rec.Answer) {
		if len(out) >= limit {
			break
		}
		d, err := p.catalog.Lookup(name)
		if err != nil {
			rec.Unresolved = append(rec.Unresolved, name)
			continue
		}
		out = append(out, d)
	}

	for _, name := range p.parser.UnknownTitles(rec.Answer) {
		rec.Unresolved = append(rec.Unresolved, name)
	}
	if len(rec.Unresolved) > 0 {
		log.Warn().Strs("names", rec.Unresolved).Msg("answer names discs that are not in the catalog")
	}
	return out
}

func (p *Pipeline) recommendedDisc(d model.DiscRecord, intent model.QueryIntent) model.RecommendedDisc {
	rd := model.RecommendedDisc{
		Disc:      d,
		Category:  p.catalog.Category(d),
		Stability: d.Stability(),
	}
	if p.cfg.Pipeline.Simulate {
		rd.Flights = p.flights(d, intent.ThrowDistanceM)
	}
	return rd
}

// flights simulates every arm speed, slow to fast, plus a personal path
// when the thrower's distance is known
func (p *Pipeline) flights(d model.DiscRecord, throwM int) []model.Flight {
	opts := p.flightOptions()
	out := make([]model.Flight, 0, len(model.ArmSpeeds)+1)
	for _, arm := range model.ArmSpeeds {
		path := flight.SimulateWith(d, arm, opts)
		out = append(out, model.Flight{Arm: arm, Points: path, Stats: flight.Stats(path)})
	}
	if throwM > 0 {
		if path, err := flight.SimulatePersonal(d, float64(throwM), opts); err == nil {
			out = append(out, model.Flight{Arm: model.ArmPersonal, Points: path, Stats: flight.Stats(path)})
		}
	}
	return out
}

func (p *Pipeline) flightOptions() flight.Options {
	return flight.Options{Throw: model.ThrowType(p.cfg.Flight.Throw)}
}

// Intent extracts the constraints of a query without calling the LLM
func (p *Pipeline) Intent(query string) model.QueryIntent {
	return p.intents.Extract(query)
}

// Correct runs the correction engine alone on an answer
func (p *Pipeline) Correct(answer string) model.CorrectionResult {
	return p.engine.Correct(answer)
}

// Simulate returns the flight of a catalog disc at one arm speed
func (p *Pipeline) Simulate(name string, arm model.ArmSpeed) (model.Flight, error) {
	d, err := p.catalog.Lookup(name)
	if err != nil {
		return model.Flight{}, err
	}
	path := flight.SimulateWith(d, arm, p.flightOptions())
	return model.Flight{Arm: arm, Points: path, Stats: flight.Stats(path)}, nil
}

// SimulateAll returns a catalog disc with its slow, normal and fast flights.
// throwM > 0 adds a path fitted to that throwing distance.
func (p *Pipeline) SimulateAll(name string, throwM int) (model.RecommendedDisc, error) {
	d, err := p.catalog.Lookup(name)
	if err != nil {
		return model.RecommendedDisc{}, fmt.Errorf("simulate: %w", err)
	}
	return model.RecommendedDisc{
		Disc:      d,
		Category:  p.catalog.Category(d),
		Stability: d.Stability(),
		Flights:   p.flights(d, throwM),
	}, nil
}
