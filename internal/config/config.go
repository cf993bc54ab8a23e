package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. NAJDENO_DATABASE_PATH.
const EnvPrefix = "NAJDENO"

// Config holds all service configuration. It is built once at startup and
// passed by value to the components that need it.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Uploads  UploadsConfig
	Log      LogConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string
	// PublicURL is the scheme://host prefix used for image URLs. When empty
	// it is derived from each request.
	PublicURL string
}

// DatabaseConfig locates the SQLite database file.
type DatabaseConfig struct {
	Path string
}

// UploadsConfig controls where images are stored and which are accepted.
type UploadsConfig struct {
	Dir               string
	URLPrefix         string
	AllowedExtensions []string
	MaxMemory         int64
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level    string
	Encoding string
	File     string
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Database: DatabaseConfig{
			Path: "lost_found.db",
		},
		Uploads: UploadsConfig{
			Dir:               "static/uploads",
			URLPrefix:         "/static/uploads",
			AllowedExtensions: []string{"png", "jpg", "jpeg", "gif"},
			MaxMemory:         32 << 20,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// NAJDENO_* environment variables, in increasing order of precedence.
// With an empty path, config.yaml is searched in . and ./config and may be
// absent. An explicit path must exist.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	cfg := Config{}
	cfg.Server.Addr = v.GetString("server.addr")
	cfg.Server.PublicURL = strings.TrimRight(v.GetString("server.public_url"), "/")
	cfg.Database.Path = v.GetString("database.path")
	cfg.Uploads.Dir = v.GetString("uploads.dir")
	cfg.Uploads.URLPrefix = "/" + strings.Trim(v.GetString("uploads.url_prefix"), "/")
	cfg.Uploads.AllowedExtensions = normalizeExtensions(v.GetStringSlice("uploads.allowed_extensions"))
	cfg.Uploads.MaxMemory = v.GetInt64("uploads.max_memory")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Encoding = v.GetString("log.encoding")
	cfg.Log.File = v.GetString("log.file")

	if cfg.Database.Path == "" {
		return Config{}, errors.New("database.path must not be empty")
	}
	if cfg.Uploads.Dir == "" {
		return Config{}, errors.New("uploads.dir must not be empty")
	}
	if cfg.Uploads.MaxMemory <= 0 {
		cfg.Uploads.MaxMemory = Default().Uploads.MaxMemory
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.public_url", d.Server.PublicURL)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("uploads.dir", d.Uploads.Dir)
	v.SetDefault("uploads.url_prefix", d.Uploads.URLPrefix)
	v.SetDefault("uploads.allowed_extensions", d.Uploads.AllowedExtensions)
	v.SetDefault("uploads.max_memory", d.Uploads.MaxMemory)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.encoding", d.Log.Encoding)
	v.SetDefault("log.file", d.Log.File)
}

// normalizeExtensions lowercases extensions and strips leading dots. Entries
// may themselves hold several comma or space separated extensions, which is
// how a list arrives from an environment variable.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, entry := range exts {
		fields := strings.FieldsFunc(entry, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
		for _, e := range fields {
			e = strings.ToLower(strings.TrimPrefix(e, "."))
			if e != "" {
				out = append(out, e)
			}
		}
	}
	return out
}
