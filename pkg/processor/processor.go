package processor

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/glesirok/targetpattern/pkg/engine"
	"github.com/glesirok/targetpattern/pkg/log"
	"github.com/glesirok/targetpattern/pkg/pattern"
	"github.com/glesirok/targetpattern/pkg/rule"
)

// DefaultCacheSize bounds the number of memoized parse results.
const DefaultCacheSize = 1024

// PatternFileExtensions are the files ProcessDirectory picks up.
var PatternFileExtensions = []string{".yaml", ".yml", ".patterns"}

// Processor parses patterns in bulk. Results are memoized per raw string, so
// repeated patterns across a large query are parsed once.
type Processor struct {
	parser      *pattern.Parser
	cache       *lru.Cache[string, Result]
	concurrency int
	offset      string
	cacheSize   int
}

// Result is the outcome of parsing one pattern.
type Result struct {
	Raw     string          `json:"raw" yaml:"raw"`
	Pattern pattern.Pattern `json:"pattern" yaml:"pattern"`
	Err     error           `json:"-" yaml:"-"`
}

// Option configures a [Processor].
type Option func(*Processor)

// WithOffset sets the working directory for relative patterns.
func WithOffset(offset string) Option {
	return func(p *Processor) {
		p.offset = offset
	}
}

// WithCacheSize sets the memo size. Zero or less disables memoization.
func WithCacheSize(size int) Option {
	return func(p *Processor) {
		p.cacheSize = size
	}
}

// WithConcurrency bounds the number of concurrent parses in ParseAll.
func WithConcurrency(n int) Option {
	return func(p *Processor) {
		p.concurrency = n
	}
}

// New creates a processor.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		cacheSize:   DefaultCacheSize,
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(p)
	}

	parser, err := pattern.NewParser(p.offset)
	if err != nil {
		return nil, fmt.Errorf("create parser: %w", err)
	}
	p.parser = parser

	if p.cacheSize > 0 {
		cache, err := lru.New[string, Result](p.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create cache: %w", err)
		}
		p.cache = cache
	}

	if p.concurrency < 1 {
		p.concurrency = 1
	}

	return p, nil
}

// Offset returns the normalized working directory.
func (p *Processor) Offset() string {
	return p.parser.Offset()
}

// Parse parses raw, consulting the memo first.
func (p *Processor) Parse(raw string) (pattern.Pattern, error) {
	if p.cache != nil {
		if res, ok := p.cache.Get(raw); ok {
			return res.Pattern, res.Err
		}
	}

	pat, err := p.parser.Parse(raw)
	if p.cache != nil {
		p.cache.Add(raw, Result{Raw: raw, Pattern: pat, Err: err})
	}

	return pat, err
}

// ParseAll parses every raw pattern concurrently. Results keep input order and
// carry per-pattern errors; the returned error is only set when ctx is done.
func (p *Processor) ParseAll(ctx context.Context, raws []string) ([]Result, error) {
	logger := log.WithContext(ctx)
	results := make([]Result, len(raws))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, raw := range raws {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			pat, err := p.Parse(raw)
			results[i] = Result{Raw: raw, Pattern: pat, Err: err}
			if err != nil {
				logger.Debug("skip malformed pattern",
					slog.String("pattern", raw),
					slog.Any("err", err),
				)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("parse patterns: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse patterns: %w", err)
	}

	return results, nil
}

// Plan plans an ordered list of command-line style patterns.
func (p *Processor) Plan(lines []string) (*engine.Plan, error) {
	plan, err := engine.NewEngine(p).Plan(engine.ParseRuleLines(lines))
	if err != nil {
		return nil, err
	}
	plan.Offset = p.Offset()

	return plan, nil
}

// ProcessFile loads a pattern file and plans it. The file's own offset, when
// set, is joined below the processor's offset.
func (p *Processor) ProcessFile(ctx context.Context, filePath string) (*engine.Plan, error) {
	config, err := rule.LoadFromFile(filePath, p.Offset())
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filePath, err)
	}

	fileProc := p
	if config.Offset != "" {
		fileProc, err = New(
			WithOffset(config.ResolvedOffset(p.Offset())),
			WithCacheSize(p.cacheSize),
			WithConcurrency(p.concurrency),
		)
		if err != nil {
			return nil, fmt.Errorf("process %s: %w", filePath, err)
		}
	}

	plan, err := fileProc.Plan(config.Patterns)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", filePath, err)
	}

	log.WithContext(ctx).Debug("planned pattern file",
		slog.String("file", filePath),
		slog.Int("steps", len(plan.Steps)),
		slog.Int("pending", len(plan.Pending())),
	)

	return plan, nil
}

// ProcessDirectory plans every pattern file below dir, keyed by path relative
// to dir. It stops early when ctx is done.
func (p *Processor) ProcessDirectory(ctx context.Context, dir string) (map[string]*engine.Plan, error) {
	logger := log.WithContext(ctx)
	plans := make(map[string]*engine.Plan)

	err := filepath.WalkDir(dir, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		ext := strings.ToLower(filepath.Ext(filePath))
		if d.IsDir() || !slices.Contains(PatternFileExtensions, ext) {
			return nil
		}

		relPath, err := filepath.Rel(dir, filePath)
		if err != nil {
			return err
		}

		logger.Info("processing", slog.String("file", filePath))
		plan, err := p.ProcessFile(ctx, filePath)
		if err != nil {
			return err
		}
		plans[filepath.ToSlash(relPath)] = plan

		return nil
	})
	if err != nil {
		return nil, err
	}

	return plans, nil
}
