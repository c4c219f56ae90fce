package model

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	DefaultAPIRoot  = "http://127.0.0.1:8000/api/v1"
	DefaultLanguage = "en"
	DefaultTimeout  = 10 * time.Second
	DefaultDBPath   = "data/gymkit.db"
)

// Config ..
type Config struct {
	Debug    bool          `mapstructure:"debug"`
	APIRoot  string        `mapstructure:"api_root"`
	Language string        `mapstructure:"language"` // Accept-Language 以及本地化错误提示
	Timeout  time.Duration `mapstructure:"timeout"`
	DBPath   string        `mapstructure:"db_path"`

	Stub struct {
		Listen    string `mapstructure:"listen"`
		JWTSecret string `mapstructure:"jwt_secret"`
	} `mapstructure:"stub"`

	v        *viper.Viper
	mu       sync.Mutex
	onChange []func(*Config)
}

func (c *Config) setDefaults() {
	c.v.SetDefault("debug", false)
	c.v.SetDefault("api_root", DefaultAPIRoot)
	c.v.SetDefault("language", DefaultLanguage)
	c.v.SetDefault("timeout", DefaultTimeout)
	c.v.SetDefault("db_path", DefaultDBPath)
	c.v.SetDefault("stub.listen", "127.0.0.1:8000")
}

// Read 从给出的文件路径中加载配置，文件不存在时使用默认值与环境变量
func (c *Config) Read(path string) error {
	c.v = viper.New()
	c.setDefaults()
	c.v.SetEnvPrefix("gymkit")
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.v.AutomaticEnv()

	watch := false
	if path != "" {
		c.v.SetConfigFile(path)
		err := c.v.ReadInConfig()
		switch {
		case err == nil:
			watch = true
		case errors.Is(err, os.ErrNotExist):
		default:
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	if err := c.load(); err != nil {
		return err
	}

	if watch {
		c.v.OnConfigChange(func(in fsnotify.Event) {
			if err := c.load(); err != nil {
				return
			}
			c.mu.Lock()
			hooks := append([]func(*Config){}, c.onChange...)
			c.mu.Unlock()
			for _, fn := range hooks {
				fn(c)
			}
		})
		c.v.WatchConfig()
	}
	return nil
}

// load 解码到新的 Config，校验通过后在锁内整体替换
func (c *Config) load() error {
	next := &Config{}
	if err := c.v.Unmarshal(next); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	if err := next.normalize(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Debug = next.Debug
	c.APIRoot = next.APIRoot
	c.Language = next.Language
	c.Timeout = next.Timeout
	c.DBPath = next.DBPath
	c.Stub = next.Stub
	return nil
}

// Snapshot returns a copy of the settings that is safe to read while the file is being reloaded.
func (c *Config) Snapshot() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Config{
		Debug:    c.Debug,
		APIRoot:  c.APIRoot,
		Language: c.Language,
		Timeout:  c.Timeout,
		DBPath:   c.DBPath,
		Stub:     c.Stub,
	}
}

func (c *Config) normalize() error {
	c.APIRoot = strings.TrimRight(strings.TrimSpace(c.APIRoot), "/")
	if c.APIRoot == "" {
		c.APIRoot = DefaultAPIRoot
	}
	u, err := url.Parse(c.APIRoot)
	if err != nil {
		return fmt.Errorf("invalid api_root %q: %w", c.APIRoot, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api_root %q: scheme and host are required", c.APIRoot)
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath
	}
	return nil
}

// OnChange registers a hook called after the watched config file is reloaded.
func (c *Config) OnChange(fn func(*Config)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}
