package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSourceURL          = "https://srinijobpostings.blogspot.com/feeds/posts/default?alt=rss"
	DefaultOutputPath         = "feed/blog_feed.xml"
	DefaultChannelTitle       = "Recent Blog Posts"
	DefaultChannelLink        = "https://yourblog.blogspot.com"
	DefaultChannelDescription = "Blogger posts from the last 24 hours"

	envPrefix = "BLOGDIGEST_"
)

// Config представляет основную конфигурацию blogdigest.
// Содержит настройки источника, выходного файла, канала, парсера, логгера и расписания.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Output   OutputConfig   `yaml:"output"`
	Channel  ChannelConfig  `yaml:"channel"`
	Parser   ParserConfig   `yaml:"parser"`
	Logger   LoggerConfig   `yaml:"logger"`
	Schedule ScheduleConfig `yaml:"schedule"`
}

// SourceConfig описывает исходную RSS-ленту и параметры HTTP-запроса к ней.
type SourceConfig struct {
	URL          string `yaml:"url"`
	Timeout      string `yaml:"timeout"`
	UserAgent    string `yaml:"user_agent"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// OutputConfig содержит путь к файлу выходной ленты.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// ChannelConfig содержит метаданные канала выходной ленты.
type ChannelConfig struct {
	Title       string `yaml:"title"`
	Link        string `yaml:"link"`
	Description string `yaml:"description"`
}

// ParserConfig управляет поведением парсера при некорректных датах публикации.
// По умолчанию одна нераспознанная дата прерывает весь запуск.
type ParserConfig struct {
	SkipInvalidDates bool `yaml:"skip_invalid_dates"`
}

// LoggerConfig содержит настройки системы логирования.
// Пустой File означает вывод в stderr. Пустой ErrorFile означает,
// что ошибки пишутся туда же, куда и остальные сообщения.
type LoggerConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	ErrorFile  string `yaml:"error_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// ScheduleConfig задает интервал повторных запусков. Пустой интервал - один запуск.
type ScheduleConfig struct {
	Interval string `yaml:"interval"`
}

// New создает новый экземпляр Config со значениями по умолчанию.
func New() *Config {
	return &Config{
		Source: SourceConfig{
			URL:          DefaultSourceURL,
			Timeout:      "30s",
			UserAgent:    "blogdigest",
			MaxBodyBytes: 10 << 20,
		},
		Output: OutputConfig{
			Path: DefaultOutputPath,
		},
		Channel: ChannelConfig{
			Title:       DefaultChannelTitle,
			Link:        DefaultChannelLink,
			Description: DefaultChannelDescription,
		},
		Logger: LoggerConfig{
			Level:      "info",
			MaxSizeMB:  16,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// Load загружает конфигурацию из YAML-файла по указанному пути.
// Перед разбором подставляет переменные окружения вида ${VAR}.
// Незаданные в файле поля сохраняют значения по умолчанию.
// Ошибка чтения оборачивает исходную, так что отсутствие файла
// проверяется через errors.Is(err, fs.ErrNotExist).
func Load(configPath string) (*Config, error) {
	cfg := New()
	fileData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}
	expanded := os.Expand(string(fileData), os.Getenv)
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML from file %s: %w", configPath, err)
	}
	return cfg, nil
}

// ApplyEnv переопределяет поля конфигурации значениями переменных BLOGDIGEST_*.
// lookup обычно os.LookupEnv; в тестах подставляется карта.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"SOURCE_URL":          &c.Source.URL,
		"SOURCE_TIMEOUT":      &c.Source.Timeout,
		"USER_AGENT":          &c.Source.UserAgent,
		"OUTPUT_PATH":         &c.Output.Path,
		"CHANNEL_TITLE":       &c.Channel.Title,
		"CHANNEL_LINK":        &c.Channel.Link,
		"CHANNEL_DESCRIPTION": &c.Channel.Description,
		"LOG_LEVEL":           &c.Logger.Level,
		"LOG_FILE":            &c.Logger.File,
		"INTERVAL":            &c.Schedule.Interval,
	}
	for key, dst := range strs {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = v
		}
	}
	if v, ok := lookup(envPrefix + "SKIP_INVALID_DATES"); ok {
		skip, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sSKIP_INVALID_DATES %q: %w", envPrefix, v, err)
		}
		c.Parser.SkipInvalidDates = skip
	}
	return nil
}

// Validate проверяет корректность конфигурации.
// Возвращает ошибку с описанием первой найденной проблемы.
func (c *Config) Validate() error {
	u, err := url.ParseRequestURI(c.Source.URL)
	if err != nil {
		return fmt.Errorf("invalid source.url %q: %w", c.Source.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("source.url must use http or https: %s", c.Source.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("source.url has no host: %s", c.Source.URL)
	}
	timeout, err := time.ParseDuration(c.Source.Timeout)
	if err != nil {
		return fmt.Errorf("invalid source.timeout: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("source.timeout must be positive")
	}
	if c.Source.MaxBodyBytes <= 0 {
		return fmt.Errorf("source.max_body_bytes must be a positive number")
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		return fmt.Errorf("output.path is not set")
	}
	if strings.HasSuffix(c.Output.Path, "/") || strings.HasSuffix(c.Output.Path, string(filepath.Separator)) {
		return fmt.Errorf("output.path must name a file, got directory %s", c.Output.Path)
	}
	if c.Channel.Title == "" {
		return fmt.Errorf("channel.title is not set")
	}
	switch c.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logger.level %q", c.Logger.Level)
	}
	if c.Schedule.Interval != "" {
		interval, err := time.ParseDuration(c.Schedule.Interval)
		if err != nil {
			return fmt.Errorf("invalid schedule.interval: %w", err)
		}
		if interval <= 0 {
			return fmt.Errorf("schedule.interval must be positive")
		}
	}
	return nil
}

// FetchTimeout возвращает таймаут запроса к источнику. Вызывать после Validate.
func (c *Config) FetchTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Source.Timeout)
	return d
}

// Interval возвращает интервал повторных запусков или 0 для одного запуска.
func (c *Config) Interval() time.Duration {
	if c.Schedule.Interval == "" {
		return 0
	}
	d, _ := time.ParseDuration(c.Schedule.Interval)
	return d
}
