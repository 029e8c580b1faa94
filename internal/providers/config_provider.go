package providers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"withings-mcp/internal/structures"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultBaseURL     = "https://wbsapi.withings.net"
	DefaultAuthURL     = "https://account.withings.com/oauth2_user/authorize2"
	DefaultRedirectURI = "http://localhost:8080/callback"
	DefaultScope       = "user.info,user.metrics,user.activity"
	envFileName        = ".env"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	envFile := flags.EnvFile
	if envFile == "" {
		envFile, _ = FindEnvFile("")
	}
	if envFile != "" {
		// Existing process variables take precedence over the file.
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("unable to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.BindEnv("withings.clientId", "WITHINGS_CLIENT_ID")
	v.BindEnv("withings.clientSecret", "WITHINGS_CLIENT_SECRET")
	v.BindEnv("withings.redirectUri", "WITHINGS_REDIRECT_URI")
	v.BindEnv("withings.accessToken", "WITHINGS_ACCESS_TOKEN")
	v.BindEnv("withings.refreshToken", "WITHINGS_REFRESH_TOKEN")
	v.BindEnv("withings.envFile", "WITHINGS_ENV_FILE")
	v.BindEnv("withings.baseUrl", "WITHINGS_BASE_URL")
	v.BindEnv("logger.level", "WITHINGS_LOG_LEVEL")
	v.BindEnv("logger.dir", "WITHINGS_LOG_DIR")
	v.BindEnv("cache.enabled", "WITHINGS_CACHE_ENABLED")
	v.BindEnv("cache.size", "WITHINGS_CACHE_SIZE")
	v.BindEnv("metrics.enabled", "WITHINGS_METRICS_ENABLED")
	v.BindEnv("metrics.listen", "WITHINGS_METRICS_LISTEN")
	v.BindEnv("export.dir", "WITHINGS_EXPORT_DIR")

	if flags.ConfigPath != "" {
		filename := filepath.Base(flags.ConfigPath)
		v.AddConfigPath(filepath.Dir(flags.ConfigPath))
		v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	if err := cnfValidator.Validate(); err != nil {
		return nil, err
	}

	if flags.EnvFile != "" {
		conf.Withings.EnvFile = flags.EnvFile
	} else if conf.Withings.EnvFile == "" {
		conf.Withings.EnvFile = envFile
	}

	conf.AppName = "WithingsMCP"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode
	conf.Version = flags.Version
	if conf.Version == "" {
		conf.Version = "dev"
	}

	return &conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("withings.baseUrl", DefaultBaseURL)
	v.SetDefault("withings.authUrl", DefaultAuthURL)
	v.SetDefault("withings.redirectUri", DefaultRedirectURI)
	v.SetDefault("withings.scope", DefaultScope)
	v.SetDefault("withings.timeout", 30*time.Second)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 16)
	v.SetDefault("cache.ttl", time.Minute)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", "127.0.0.1:9464")
	v.SetDefault("export.dir", os.TempDir())
}

// FindEnvFile walks up from start (the working directory when empty) and
// returns the first .env file it meets.
func FindEnvFile(start string) (string, bool) {
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", false
		}
		start = wd
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, envFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
