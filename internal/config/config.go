package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lookout/internal/feed"
	"lookout/pkg/config"
)

// Config stores environment configuration for lookout. It is loaded once at
// startup and handed to components by injection — nothing reads env vars or
// global state after this point.
type Config struct {
	DataDir     string
	QueueDir    string
	ArchiveDir  string
	PendingFile string
	ScoredFile  string

	ApprovedFile string
	CacheFile    string
	StatsFile    string

	SourcesFile string

	MinScoreForQueue   int
	HighlightThreshold int

	ScoreDelay      time.Duration
	ScoreTimeout    time.Duration
	LongFormTimeout time.Duration
	BrowserTimeout  time.Duration

	MaxPostsPerDay   int
	MaxRepliesPerDay int

	PrimaryModel   LLMModelConfig
	SecondaryModel LLMModelConfig
	TertiaryModel  LLMModelConfig

	HumanizerURL     string
	HumanizerTimeout time.Duration

	NotifyDesktop bool
	NotifyEmail   string
	SMTPHost      string
	SMTPPort      string
	SMTPUser      string
	SMTPPassword  string
	SMTPFrom      string

	ServePort string
}

// LLMModelConfig identifies one model in the scoring fallback chain.
type LLMModelConfig struct {
	Provider string
	Model    string
	APIKey   string
	APIURL   string
}

// LoadConfig loads the lookout configuration from environment variables.
func LoadConfig() Config {
	dataDir := config.GetEnv("LOOKOUT_DATA_DIR", "data")
	return Config{
		DataDir:     dataDir,
		QueueDir:    config.GetEnv("LOOKOUT_QUEUE_DIR", filepath.Join(dataDir, "queue")),
		ArchiveDir:  config.GetEnv("LOOKOUT_ARCHIVE_DIR", filepath.Join(dataDir, "archive")),
		PendingFile: config.GetEnv("LOOKOUT_PENDING_FILE", filepath.Join(dataDir, "pending-articles.json")),
		ScoredFile:  config.GetEnv("LOOKOUT_SCORED_FILE", filepath.Join(dataDir, "scored-articles.json")),

		ApprovedFile: config.GetEnv("LOOKOUT_APPROVED_FILE", filepath.Join(dataDir, "approved-for-publish.json")),
		CacheFile:    config.GetEnv("LOOKOUT_CACHE_FILE", filepath.Join(dataDir, "seen-cache.json")),
		StatsFile:    config.GetEnv("LOOKOUT_STATS_FILE", filepath.Join(dataDir, "daily-stats.json")),

		SourcesFile: config.GetEnv("LOOKOUT_SOURCES_FILE", "sources.json"),

		MinScoreForQueue:   config.GetEnvInt("LOOKOUT_MIN_SCORE_FOR_QUEUE", 6),
		HighlightThreshold: config.GetEnvInt("LOOKOUT_HIGHLIGHT_THRESHOLD", 8),

		ScoreDelay:      parseDuration(config.GetEnv("LOOKOUT_SCORE_DELAY", "1s"), time.Second),
		ScoreTimeout:    parseDuration(config.GetEnv("LOOKOUT_SCORE_TIMEOUT", "120s"), 120*time.Second),
		LongFormTimeout: parseDuration(config.GetEnv("LOOKOUT_LONGFORM_TIMEOUT", "300s"), 300*time.Second),
		BrowserTimeout:  parseDuration(config.GetEnv("LOOKOUT_BROWSER_TIMEOUT", "90s"), 90*time.Second),

		MaxPostsPerDay:   config.GetEnvInt("LOOKOUT_MAX_POSTS_PER_DAY", 5),
		MaxRepliesPerDay: config.GetEnvInt("LOOKOUT_MAX_REPLIES_PER_DAY", 10),

		PrimaryModel: LLMModelConfig{
			Provider: config.GetEnv("LLM_PROVIDER", "openai"),
			Model:    config.GetEnv("LLM_MODEL", ""),
			APIKey:   config.GetEnv("LLM_API_KEY", ""),
			APIURL:   config.GetEnv("LLM_API_URL", ""),
		},
		SecondaryModel: LLMModelConfig{
			Provider: config.GetEnv("LLM_FALLBACK_PROVIDER", config.GetEnv("LLM_PROVIDER", "openai")),
			Model:    config.GetEnv("LLM_FALLBACK_MODEL", ""),
			APIKey:   config.GetEnv("LLM_FALLBACK_API_KEY", config.GetEnv("LLM_API_KEY", "")),
			APIURL:   config.GetEnv("LLM_FALLBACK_API_URL", config.GetEnv("LLM_API_URL", "")),
		},
		TertiaryModel: LLMModelConfig{
			Provider: config.GetEnv("LLM_LOCAL_PROVIDER", "ollama"),
			Model:    config.GetEnv("LLM_LOCAL_MODEL", ""),
			APIKey:   "",
			APIURL:   config.GetEnv("LLM_LOCAL_API_URL", ""),
		},

		HumanizerURL:     config.GetEnv("LOOKOUT_HUMANIZER_URL", ""),
		HumanizerTimeout: parseDuration(config.GetEnv("LOOKOUT_HUMANIZER_TIMEOUT", "30s"), 30*time.Second),

		NotifyDesktop: config.GetEnvBool("LOOKOUT_NOTIFY_DESKTOP", true),
		NotifyEmail:   config.GetEnv("LOOKOUT_NOTIFY_EMAIL", ""),
		SMTPHost:      config.GetEnv("SMTP_HOST", ""),
		SMTPPort:      config.GetEnv("SMTP_PORT", "587"),
		SMTPUser:      config.GetEnv("SMTP_USER", ""),
		SMTPPassword:  config.GetEnv("SMTP_PASSWORD", ""),
		SMTPFrom:      config.GetEnv("SMTP_FROM", ""),

		ServePort: config.GetEnv("LOOKOUT_SERVE_PORT", "8780"),
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// FeedSource is one feed endpoint inside an adapter's configuration.
type FeedSource struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	HighPriority bool   `json:"highPriority,omitempty"`
}

// AdapterSettings configures one source adapter.
type AdapterSettings struct {
	Enabled  bool              `json:"enabled"`
	Feeds    []FeedSource      `json:"feeds,omitempty"`
	Queries  []string          `json:"queries,omitempty"`
	Keywords feed.KeywordTiers `json:"keywords"`
	MaxItems int               `json:"maxItems,omitempty"`
}

// Sources is the on-disk adapter configuration (sources.json).
type Sources struct {
	RSS     AdapterSettings `json:"rss"`
	Twitter AdapterSettings `json:"twitter"`
	Anime   AdapterSettings `json:"anime"`
	VC      AdapterSettings `json:"vc"`
}

// LoadSources reads and decodes the adapter configuration file. A missing or
// malformed file is a configuration error: the caller aborts its stage.
func LoadSources(path string) (*Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources config: %w", err)
	}
	var sources Sources
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("decode sources config %s: %w", path, err)
	}
	return &sources, nil
}
