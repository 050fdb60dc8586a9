package cli

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/ivrflow/pkg/errors"
	"github.com/matzehuels/ivrflow/pkg/httputil"
	"github.com/matzehuels/ivrflow/pkg/lookup"
	"github.com/matzehuels/ivrflow/pkg/store"
	"github.com/matzehuels/ivrflow/pkg/store/file"
	"github.com/matzehuels/ivrflow/pkg/store/mongo"
	"github.com/matzehuels/ivrflow/pkg/store/redis"
	"github.com/matzehuels/ivrflow/pkg/viewport"
)

// Store backends.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendMongo = "mongo"
)

var backends = []string{backendFile, backendRedis, backendMongo}

// Config is the contents of config.toml.
type Config struct {
	LogLevel string       `toml:"log_level"`
	Canvas   CanvasConfig `toml:"canvas"`
	Store    StoreConfig  `toml:"store"`
	Lookup   LookupConfig `toml:"lookup"`
	Server   ServerConfig `toml:"server"`
}

// CanvasConfig positions the terminal canvas. The anchor is the screen point
// new nodes are placed under.
type CanvasConfig struct {
	AnchorX float64 `toml:"anchor_x"`
	AnchorY float64 `toml:"anchor_y"`
	OriginX float64 `toml:"origin_x"`
	OriginY float64 `toml:"origin_y"`
}

// StoreConfig selects and configures the flow store.
type StoreConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	RedisTTL      duration `toml:"redis_ttl"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
}

// LookupConfig configures the buyer and campaign directory. With BaseURL
// set the lists are fetched over HTTP, otherwise the static entries are used.
type LookupConfig struct {
	BaseURL   string            `toml:"base_url"`
	Token     string            `toml:"token"`
	CacheTTL  duration          `toml:"cache_ttl"`
	Buyers    []lookup.Buyer    `toml:"buyers"`
	Campaigns []lookup.Campaign `toml:"campaigns"`
}

// ServerConfig configures `ivrflow serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// duration decodes TOML strings such as "90s" or "1h".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Canvas: CanvasConfig{
			AnchorX: viewport.DefaultAnchor.X,
			AnchorY: viewport.DefaultAnchor.Y,
		},
		Store: StoreConfig{
			Backend:       backendFile,
			RedisAddr:     "localhost:6379",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: appName,
		},
		Lookup: LookupConfig{CacheTTL: duration{time.Hour}},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return cfg, errs.Wrap(errs.ErrCodeInvalidFormat, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errs.New(errs.ErrCodeInvalidInput, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errs.New(errs.ErrCodeInvalidInput, "invalid log_level %q", c.LogLevel)
	}
	if !slices.Contains(backends, c.Store.Backend) {
		return errs.New(errs.ErrCodeInvalidInput, "invalid store backend %q (want one of %s)",
			c.Store.Backend, strings.Join(backends, ", "))
	}
	if c.Lookup.BaseURL != "" {
		if err := errs.ValidateURL(c.Lookup.BaseURL); err != nil {
			return err
		}
	}
	return nil
}

// Level returns the configured log level.
func (c Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Viewport returns a viewport with the configured origin and anchor.
func (c Config) Viewport() *viewport.Viewport {
	return viewport.New(
		viewport.WithOrigin(viewport.Point{X: c.Canvas.OriginX, Y: c.Canvas.OriginY}),
		viewport.WithAnchor(viewport.Point{X: c.Canvas.AnchorX, Y: c.Canvas.AnchorY}),
	)
}

// OpenStore connects to the configured backend.
func (c Config) OpenStore(ctx context.Context, logger *log.Logger) (store.Store, error) {
	sc := c.Store
	switch sc.Backend {
	case backendRedis:
		s := redis.New(sc.RedisAddr, sc.RedisPassword, sc.RedisDB,
			redis.WithTTL(sc.RedisTTL.Duration), redis.WithLogger(logger))
		return s, nil
	case backendMongo:
		return mongo.Connect(ctx, sc.MongoURI, sc.MongoDatabase, mongo.WithLogger(logger))
	default:
		return file.New(sc.Dir)
	}
}

// LookupProvider returns the HTTP directory client when a base URL is set,
// otherwise the static lists from the config file.
func (c Config) LookupProvider(noCache bool, logger *log.Logger) (lookup.Provider, error) {
	lc := c.Lookup
	if lc.BaseURL == "" {
		return lookup.NewStatic(lc.Buyers, lc.Campaigns), nil
	}

	dir, err := cacheDir()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "resolve cache dir")
	}
	cache, err := httputil.NewCache(dir, lc.CacheTTL.Duration)
	if err != nil {
		return nil, err
	}
	var headers map[string]string
	if lc.Token != "" {
		headers = map[string]string{"Authorization": "Bearer " + lc.Token}
	}
	return lookup.NewClient(lc.BaseURL, cache, headers,
		lookup.WithRefresh(noCache), lookup.WithLogger(logger))
}

// =============================================================================
// Paths
// =============================================================================

// configPath returns ~/.config/ivrflow/config.toml, honoring XDG_CONFIG_HOME.
func configPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// cacheDir returns ~/.cache/ivrflow, honoring XDG_CACHE_HOME.
func cacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
