package structures

import "time"

type WithingsConfig struct {
	ClientID     string        `yaml:"clientId"`
	ClientSecret string        `yaml:"clientSecret"`
	RedirectURI  string        `yaml:"redirectUri" validate:"required|fullUrl"`
	BaseURL      string        `yaml:"baseUrl" validate:"required|fullUrl"`
	AuthURL      string        `yaml:"authUrl" validate:"required|fullUrl"`
	Scope        string        `yaml:"scope" validate:"required"`
	EnvFile      string        `yaml:"envFile"`
	AccessToken  string        `yaml:"accessToken"`
	RefreshToken string        `yaml:"refreshToken"`
	Timeout      time.Duration `yaml:"timeout" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"unixPath"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

type ExportConfig struct {
	Dir string `yaml:"dir" validate:"required|unixPath"`
}

type Config struct {
	AppName  string
	Version  string
	Debug    bool
	Path     string
	Withings WithingsConfig `yaml:"withings"`
	Logger   LoggerConfig   `yaml:"logger"`
	Cache    CacheConfig    `yaml:"cache"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Export   ExportConfig   `yaml:"export"`
}
