package cli

import (
	"fmt"
	"time"

	"lookout/internal/adapters"
	"lookout/internal/config"
	"lookout/internal/notify"
	"lookout/internal/pipeline"
	"lookout/internal/router"
	"lookout/internal/scoring"
	"lookout/internal/seencache"
	"lookout/internal/stats"
	"lookout/pkg/clients"
	"lookout/pkg/llm"
	"lookout/pkg/logging"
)

// app holds everything a command needs, assembled once per invocation.
type app struct {
	cfg     config.Config
	sources *config.Sources
	logger  logging.Logger
	cache   *seencache.Store
	router  *router.Router
}

func buildApp(stage string) (*app, error) {
	cfg := config.LoadConfig()
	logger := logging.NewLoggerWithStage(stage)

	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		return nil, err
	}
	cache, err := seencache.Open(cfg.CacheFile)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		sources: sources,
		logger:  logger,
		cache:   cache,
		router: router.NewRouter(router.RouterConfig{
			QueueDir:           cfg.QueueDir,
			ArchiveDir:         cfg.ArchiveDir,
			ApprovedFile:       cfg.ApprovedFile,
			MinScoreForQueue:   cfg.MinScoreForQueue,
			HighlightThreshold: cfg.HighlightThreshold,
			Logger:             logger,
		}),
	}, nil
}

// buildAdapters assembles every configured source adapter.
func (a *app) buildAdapters() []adapters.SourceAdapter {
	httpClient := clients.NewRetryingClient(30*time.Second, clients.DefaultHTTPExecutorConfig())
	enricher := adapters.NewArticleEnricher(httpClient, a.logger)

	return []adapters.SourceAdapter{
		adapters.NewRSSAdapter(adapters.RSSAdapterConfig{
			Settings: a.sources.RSS,
			Cache:    a.cache,
			Client:   httpClient,
			Enricher: enricher,
			Logger:   a.logger,
		}),
		adapters.NewTwitterAdapter(adapters.TwitterAdapterConfig{
			Settings: a.sources.Twitter,
			Cache:    a.cache,
			Logger:   a.logger,
			Timeout:  a.cfg.BrowserTimeout,
		}),
		adapters.NewAnimeAdapter(adapters.AnimeAdapterConfig{
			Settings: a.sources.Anime,
			Cache:    a.cache,
			Client:   httpClient,
			Logger:   a.logger,
		}),
		adapters.NewFundingAdapter(adapters.FundingAdapterConfig{
			Settings: a.sources.VC,
			Cache:    a.cache,
			Client:   httpClient,
			Logger:   a.logger,
		}),
	}
}

// buildChain assembles the scoring fallback chain from the configured
// models. Unconfigured slots are skipped; an empty chain is an error.
func (a *app) buildChain() (*llm.Chain, error) {
	var providers []llm.Provider
	for _, mc := range []config.LLMModelConfig{a.cfg.PrimaryModel, a.cfg.SecondaryModel, a.cfg.TertiaryModel} {
		provider, err := llm.NewProvider(llm.Config{
			Provider: mc.Provider,
			Model:    mc.Model,
			APIKey:   mc.APIKey,
			APIURL:   mc.APIURL,
		})
		if err != nil {
			if err == llm.ErrNotConfigured {
				continue
			}
			return nil, err
		}
		providers = append(providers, provider)
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("no LLM providers configured, set LLM_MODEL at minimum")
	}
	logger := a.logger
	return llm.NewChain(providers, llm.WithFailureHook(func(model string, err error) {
		logger.WithFields(logging.Fields{"model": model}).WithError(err).Warn("Model failed, trying next in chain")
	})), nil
}

func (a *app) buildScorer() (*scoring.Scorer, error) {
	chain, err := a.buildChain()
	if err != nil {
		return nil, err
	}
	return scoring.NewScorer(scoring.ScorerConfig{
		Chain:              chain,
		Logger:             a.logger,
		HighlightThreshold: a.cfg.HighlightThreshold,
		ScoreDelay:         a.cfg.ScoreDelay,
		ScoreTimeout:       a.cfg.ScoreTimeout,
		LongFormTimeout:    a.cfg.LongFormTimeout,
	}), nil
}

func (a *app) buildNotifier() pipeline.Notifier {
	var channels notify.Multi
	if a.cfg.NotifyDesktop {
		channels = append(channels, notify.NewDesktopNotifier(a.logger))
	}
	if a.cfg.NotifyEmail != "" && a.cfg.SMTPHost != "" {
		sender := notify.NewEmailSender(notify.SMTPConfig{
			Host:     a.cfg.SMTPHost,
			Port:     a.cfg.SMTPPort,
			User:     a.cfg.SMTPUser,
			Password: a.cfg.SMTPPassword,
			From:     a.cfg.SMTPFrom,
			FromName: "lookout",
		})
		channels = append(channels, notify.NewEmailNotifier(sender, a.cfg.NotifyEmail, a.logger))
	}
	if len(channels) == 0 {
		return nil
	}
	return channels
}

func (a *app) openStats() (*stats.Store, error) {
	return stats.Open(a.cfg.StatsFile)
}
