package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "brief-engine/0.1").
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
}

// TrendsConfig holds settings for the trend fetching stage.
type TrendsConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Provider selects the news source: newsapi or rss.
	Provider string `yaml:"provider" mapstructure:"provider"`

	// APIKey authenticates against the NewsAPI provider.
	APIKey string `yaml:"api_key,omitempty" mapstructure:"api_key"`

	// ArticleCount is the number of articles requested per query (default 5).
	ArticleCount int `yaml:"article_count" mapstructure:"article_count"`

	// MaxRetries is the number of retry attempts on rate-limited requests (default 3).
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`

	// Feeds lists the feed URLs consumed by the rss provider.
	Feeds []string `yaml:"feeds,omitempty" mapstructure:"feeds"`
}

// GeneratorConfig holds settings for the report generation stage.
type GeneratorConfig struct {
	// Binary is the text-generation engine executable (default "ollama").
	Binary string `yaml:"binary" mapstructure:"binary"`

	// Model is the model identifier passed to the engine (e.g. "llama3").
	Model string `yaml:"model" mapstructure:"model"`

	// Timeout bounds one generation call (default 180s). The engine process
	// is killed when it elapses.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// StoreConfig holds settings for the subscription store.
type StoreConfig struct {
	// Path is the subscription store file (default "data/subscriptions.yaml").
	Path string `yaml:"path" mapstructure:"path"`
}

// MailConfig holds the SMTP settings for the delivery channel. Credentials
// are fixed at process start; missing credentials fail the serve command.
type MailConfig struct {
	// Host is the SMTP server hostname.
	Host string `yaml:"host" mapstructure:"host"`

	// Port is the SMTP server port (default 587).
	Port int `yaml:"port" mapstructure:"port"`

	// Username authenticates the SMTP session.
	Username string `yaml:"username" mapstructure:"username"`

	// Password authenticates the SMTP session.
	Password string `yaml:"password,omitempty" mapstructure:"password"`

	// From is the sender address on outgoing mail.
	From string `yaml:"from" mapstructure:"from"`
}

// ScheduleConfig holds settings for the weekly scheduler.
type ScheduleConfig struct {
	// Interval is the fixed time between delivery runs (default 168h).
	// There is no catch-up for runs missed while the process was down;
	// a restart resets the countdown.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ServerConfig holds settings for the HTTP transport.
type ServerConfig struct {
	// Addr is the listen address (default ":8000").
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum level emitted: debug, info, warn, or error.
	Level string `yaml:"level" mapstructure:"level"`

	// Format selects the output encoding: text or json.
	Format string `yaml:"format" mapstructure:"format"`
}

// Config groups all component configurations for the service.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Trends    TrendsConfig    `yaml:"trends" mapstructure:"trends"`
	Generator GeneratorConfig `yaml:"generator" mapstructure:"generator"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Mail      MailConfig      `yaml:"mail" mapstructure:"mail"`
	Schedule  ScheduleConfig  `yaml:"schedule" mapstructure:"schedule"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}
