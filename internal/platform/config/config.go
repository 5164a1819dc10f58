package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Email    EmailConfig    `mapstructure:"email"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	CORS     CORSConfig     `mapstructure:"cors"`
	App      AppConfig      `mapstructure:"app"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type JWTConfig struct {
	Secret          string        `mapstructure:"secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

type EmailConfig struct {
	Enabled bool       `mapstructure:"enabled"`
	SMTP    SMTPConfig `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// CalendarConfig points at the calendar bridge that mirrors scheduled shoots
// into technician calendars.
type CalendarConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	Secret  string        `mapstructure:"secret"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type WorkerConfig struct {
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	StuckTimeout    time.Duration `mapstructure:"stuck_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	InviteSweepSpec string        `mapstructure:"invite_sweep_spec"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	MaxAge         int      `mapstructure:"max_age"`
}

type AppConfig struct {
	// DeliveryBaseURL is the public URL prefix for delivery links sent to
	// customers, e.g. https://app.shootflow.io/delivery.
	DeliveryBaseURL string `mapstructure:"delivery_base_url"`
	// MediaDir holds uploaded project media, one subdirectory per project.
	MediaDir string `mapstructure:"media_dir"`
	// ArchiveDir is where the worker writes finished download archives;
	// ArchiveBaseURL is the public prefix they are served under.
	ArchiveDir     string `mapstructure:"archive_dir"`
	ArchiveBaseURL string `mapstructure:"archive_base_url"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Worker.PollInterval == 0 {
		config.Worker.PollInterval = 10 * time.Second
	}
	if config.Worker.StuckTimeout == 0 {
		config.Worker.StuckTimeout = 5 * time.Minute
	}
	if config.Worker.MaxRetries == 0 {
		config.Worker.MaxRetries = 3
	}

	return &config, nil
}
