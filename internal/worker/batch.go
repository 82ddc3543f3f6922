package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/findmindisc/internal/llm"
	"github.com/ppiankov/findmindisc/internal/logging"
	"github.com/ppiankov/findmindisc/internal/model"
	"github.com/ppiankov/findmindisc/internal/pipeline"
)

// Recommender runs one turn of the pipeline
type Recommender interface {
	Recommend(ctx context.Context, req pipeline.Request) (*model.Recommendation, error)
}

// QueryJob is one query of a batch
type QueryJob struct {
	Index       int
	Query       string
	Recommender Recommender
	Limiter     *Limiter
	Provider    string        // Limiter key
	Timeout     time.Duration // Per-query deadline, 0 = none
}

// Execute waits for a provider slot and runs the turn
func (j *QueryJob) Execute(ctx context.Context) Result {
	start := time.Now()
	result := &QueryResult{Index: j.Index, Query: j.Query}

	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.Provider); err != nil {
			result.Error = fmt.Errorf("rate limiter: %w", err)
			return result
		}
	}

	rec, err := j.Recommender.Recommend(ctx, pipeline.Request{Query: j.Query})
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err
		result.Retryable = llm.IsRetryable(err)
		return result
	}
	result.Recommendation = rec
	return result
}

// QueryResult is the outcome of one query
type QueryResult struct {
	Index          int
	Query          string
	Recommendation *model.Recommendation
	Error          error
	Retryable      bool // The caller may resubmit this query later
	Duration       time.Duration
}

// GetError returns the error from the query result
func (r *QueryResult) GetError() error {
	return r.Error
}

// BatchProcessor answers many queries concurrently
type BatchProcessor struct {
	recommender Recommender
	concurrency int
	limiter     *Limiter
	provider    string
	timeout     time.Duration
}

// BatchOptions tunes a BatchProcessor
type BatchOptions struct {
	Workers           int
	RequestsPerSecond float64
	Burst             int
	Provider          string
	Timeout           time.Duration
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(r Recommender, opts BatchOptions) *BatchProcessor {
	return &BatchProcessor{
		recommender: r,
		concurrency: opts.Workers,
		limiter:     NewLimiter(opts.RequestsPerSecond, opts.Burst),
		provider:    opts.Provider,
		timeout:     opts.Timeout,
	}
}

// ProcessQueries answers every query and returns results in input order
func (b *BatchProcessor) ProcessQueries(ctx context.Context, queries []string) []*QueryResult {
	if len(queries) == 0 {
		return []*QueryResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	go func() {
		for i, q := range queries {
			job := &QueryJob{
				Index:       i,
				Query:       q,
				Recommender: b.recommender,
				Limiter:     b.limiter,
				Provider:    b.provider,
				Timeout:     b.timeout,
			}
			if !pool.Submit(job) {
				break
			}
		}
		pool.Close()
	}()

	results := make([]*QueryResult, 0, len(queries))
	for r := range pool.Results() {
		qr := r.(*QueryResult)
		if qr.Error != nil {
			logging.Warn().Err(qr.Error).Int("index", qr.Index).Bool("retryable", qr.Retryable).Msg("query failed")
		}
		results = append(results, qr)
	}

	// Queries never started because ctx ended still get a result
	seen := make(map[int]bool, len(results))
	for _, r := range results {
		seen[r.Index] = true
	}
	for i, q := range queries {
		if !seen[i] {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			results = append(results, &QueryResult{Index: i, Query: q, Error: err})
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results
}

// ProcessFile reads queries from a file and answers them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*QueryResult, error) {
	queries, err := ReadQueriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}

	return b.ProcessQueries(ctx, queries), nil
}

// ReadQueriesFromFile reads one query per line, skipping blanks, # comments
// and exact duplicates
func ReadQueriesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var queries []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			queries = append(queries, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return queries, nil
}
