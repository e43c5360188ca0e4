package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spigell/jobfit/internal/ai"
	"github.com/spigell/jobfit/internal/ai/gemini"
	"github.com/spigell/jobfit/internal/embedding"
	"github.com/spigell/jobfit/internal/filtering"
	"github.com/spigell/jobfit/internal/jobs"
	"github.com/spigell/jobfit/internal/lexicon"
	"github.com/spigell/jobfit/internal/logger"
	"github.com/spigell/jobfit/internal/matching"
	"github.com/spigell/jobfit/internal/resume"
	"github.com/spigell/jobfit/internal/secrets"
	"github.com/spigell/jobfit/internal/skills"
	"github.com/spigell/jobfit/internal/storage"
	"github.com/spigell/jobfit/internal/textextract"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	embedderHashing = "hashing"
	embedderGemini  = "gemini"
	embedderNone    = "none"
)

// engine holds the components shared by all commands. It is built once per process.
type engine struct {
	config    *Config
	lexicon   *lexicon.Lexicon
	genai     *genai.Client
	tagger    ai.Tagger
	extractor *skills.Extractor
	parser    *resume.Parser
	scorer    *matching.Scorer
	ranker    *matching.Ranker
	logger    *zap.Logger
}

func newEngine(ctx context.Context, config *Config, log *zap.Logger) (*engine, error) {
	e := &engine{config: config, logger: log}

	lex := lexicon.Default()
	if path := strings.TrimSpace(config.Lexicon); path != "" {
		var err error
		if lex, err = lexicon.Load(path); err != nil {
			return nil, fmt.Errorf("loading lexicon: %w", err)
		}
	}
	e.lexicon = lex
	log.Debug("lexicon loaded", zap.Int("keywords", lex.Len()))

	if config.AI != nil && config.AI.Enabled {
		if err := e.initGemini(ctx); err != nil {
			return nil, err
		}
	}

	e.extractor = skills.New(lex, e.tagger, config.Matching.SkillThreshold, log)

	parser, err := resume.NewParser(resume.ParserDeps{
		Skills: e.extractor,
		Tagger: e.tagger,
		Logger: log,
	})
	if err != nil {
		return nil, err
	}
	e.parser = parser

	embedder, err := e.newEmbedder()
	if err != nil {
		return nil, err
	}

	e.scorer = matching.NewScorer(embedder, e.extractor, log)
	e.ranker = matching.NewRanker(e.scorer, config.Matching.Suggestions, log)

	return e, nil
}

func (e *engine) initGemini(ctx context.Context) error {
	cfg := e.config.AI.Gemini
	if cfg == nil {
		return fmt.Errorf("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.APIKeyFile,
		Value: cfg.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	client, err := gemini.NewClient(ctx, apiKey)
	if err != nil {
		return err
	}
	e.genai = client

	genLogger := logger.WithCommonFields(e.logger, gemini.Provider, cfg.Model)
	generator, err := gemini.NewGenerator(client, cfg.Model, cfg.MaxRetries, genLogger)
	if err != nil {
		return err
	}

	e.tagger = gemini.NewTagger(generator, cfg.MaxLogLength, genLogger)

	return nil
}

// newEmbedder is the explicit embedder initialization step. Failures surface here
// and never inside a request.
func (e *engine) newEmbedder() (embedding.Embedder, error) {
	m := e.config.Matching

	switch kind := strings.ToLower(strings.TrimSpace(m.Embedder)); kind {
	case "", embedderHashing:
		h, err := embedding.NewHashing(m.Dimensions)
		if err != nil {
			return nil, err
		}
		e.logger.Debug("using hashing embedder", zap.Int("dimensions", h.Dimensions()))
		return h, nil
	case embedderGemini:
		if e.genai == nil {
			return nil, fmt.Errorf("the gemini embedder requires ai.enabled and a gemini api key")
		}
		cfg := e.config.AI.Gemini
		return gemini.NewEmbedder(e.genai, cfg.EmbedModel, cfg.MaxRetries,
			logger.WithCommonFields(e.logger, gemini.Provider, cfg.EmbedModel))
	case embedderNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown embedder %q", kind)
	}
}

func (e *engine) mode() matching.Mode {
	if m := strings.TrimSpace(e.config.Matching.Mode); m != "" {
		return matching.Mode(strings.ToLower(m))
	}
	return matching.ModeSkills
}

// jobSource returns the configured listing source: an HTTP endpoint when jobs.url is
// set, the jobs file otherwise.
func (e *engine) jobSource() (jobs.Source, error) {
	cfg := e.config.Jobs

	if strings.TrimSpace(cfg.URL) == "" {
		return jobs.NewFileSource(cfg.File, e.logger), nil
	}

	token, err := secrets.Load(secrets.Source{
		Name:     "jobs api token",
		File:     cfg.TokenFile,
		Env:      "JOBFIT_JOBS_TOKEN",
		Optional: true,
	})
	if err != nil {
		return nil, err
	}

	return jobs.NewHTTPSource(cfg.URL, token, e.logger)
}

// loadJobs lists and prefilters job listings.
func (e *engine) loadJobs(ctx context.Context) (*jobs.Listings, error) {
	source, err := e.jobSource()
	if err != nil {
		return nil, err
	}

	listings, err := source.List(ctx)
	if err != nil {
		return nil, err
	}

	e.logger.Info("getting jobs", zap.Int("count", listings.Len()))

	steps := e.filterSteps()
	for _, s := range filtering.Describe(steps) {
		e.logger.Debug("filter status", zap.String("name", s.Name), zap.Bool("enabled", s.Enabled), zap.String("reason", s.Reason))
	}

	return filtering.Run(ctx, e.config.Filters, filtering.Deps{Logger: e.logger}, steps, listings)
}

// filterSteps builds the configured prefilters, minus the ones switched off with --skip-filter.
func (e *engine) filterSteps() []filtering.Filter {
	steps := filtering.Steps(e.config.Filters)
	for _, name := range e.config.Filters.Skip {
		filtering.DisableByName(steps, name, "skipped by configuration")
	}
	return steps
}

// parseResumeFile extracts text from path and parses it.
func (e *engine) parseResumeFile(ctx context.Context, path string) (*resume.Resume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading resume: %w", err)
	}

	text, err := textextract.Extract(data, path)
	if err != nil {
		return nil, err
	}

	return e.parser.Parse(ctx, text)
}

// newStore returns Postgres storage when a DSN is configured and in-memory storage
// otherwise, optionally behind a Redis cache. The returned func releases connections.
func (e *engine) newStore(ctx context.Context) (storage.Store, func(), error) {
	cfg := e.config.Storage
	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	dsn, err := secrets.Load(secrets.Source{
		Name:     "postgres dsn",
		File:     cfg.PostgresDSNFile,
		Value:    cfg.PostgresDSN,
		Optional: true,
	})
	if err != nil {
		return nil, closeAll, err
	}

	var store storage.Store = storage.NewMemory()
	if dsn != "" {
		pg, err := storage.NewPostgres(ctx, dsn, e.logger)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, pg.Close)
		store = pg
	}

	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return store, closeAll, nil
	}

	password, err := secrets.Load(secrets.Source{
		Name:     "redis password",
		File:     cfg.RedisPasswordFile,
		Value:    cfg.RedisPassword,
		Optional: true,
	})
	if err != nil {
		return nil, closeAll, err
	}

	client, err := storage.NewRedisClient(ctx, storage.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: password,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		e.logger.Warn("redis unavailable, bypassing cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		return store, closeAll, nil
	}
	closers = append(closers, func() { _ = client.Close() })

	return storage.NewCached(store, client, cfg.CacheTTL, e.logger), closeAll, nil
}
