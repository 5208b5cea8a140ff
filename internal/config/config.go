// Package config загружает конфигурацию утилиты graphrepo из файла
// .graphrepo.yaml, файлов .env и переменных окружения GRAPHREPO_*.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	configName = ".graphrepo"
	envPrefix  = "GRAPHREPO"
)

// Поддерживаемые значения backend.
const (
	BackendNeo4j    = "neo4j"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config - конфигурация подключения и логирования.
type Config struct {
	Backend   string `mapstructure:"backend"`
	URI       string `mapstructure:"uri"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	Database  string `mapstructure:"database"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

var defaults = map[string]any{
	"backend":    BackendSQLite,
	"uri":        "file:graphrepo.db",
	"username":   "",
	"password":   "",
	"database":   "",
	"log_level":  "info",
	"log_format": "text",
}

// Validate проверяет значения, которые нельзя проверить при чтении.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendNeo4j, BackendPostgres, BackendSQLite:
	default:
		return fmt.Errorf("неизвестный backend '%s'", c.Backend)
	}
	if c.URI == "" {
		return fmt.Errorf("не задан uri подключения")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("неизвестный формат логов '%s'", c.LogFormat)
	}
	return nil
}

// Level возвращает уровень логирования.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("неизвестный уровень логов '%s': %w", c.LogLevel, err)
	}
	return level, nil
}

// Loader читает конфигурацию. Файловая система и домашний каталог
// подменяются в тестах.
type Loader struct {
	fs      afero.Fs
	home    string
	workDir string
}

// Option изменяет Loader.
type Option func(*Loader)

// WithFs задает файловую систему.
func WithFs(fs afero.Fs) Option {
	return func(l *Loader) {
		l.fs = fs
	}
}

// WithHome задает домашний каталог вместо определяемого homedir.
func WithHome(dir string) Option {
	return func(l *Loader) {
		l.home = dir
	}
}

// WithWorkDir задает каталог, в котором ищутся .env и .env.local.
func WithWorkDir(dir string) Option {
	return func(l *Loader) {
		l.workDir = dir
	}
}

// NewLoader создает Loader поверх файловой системы ОС.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{fs: afero.NewOsFs(), workDir: "."}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load читает конфигурацию. Если file пустой, файл .graphrepo.yaml ищется в
// текущем каталоге, в домашнем каталоге и в ~/.config/graphrepo; его
// отсутствие не является ошибкой.
//
// Приоритет: переменные окружения, .env.local, .env, файл конфигурации,
// значения по умолчанию.
func (l *Loader) Load(file string) (*Config, error) {
	v := viper.New()
	v.SetFs(l.fs)
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		home, err := l.homeDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(home)
		v.AddConfigPath(filepath.Join(home, ".config", "graphrepo"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("не удалось прочитать файл конфигурации: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	dotenv, err := l.readDotenv()
	if err != nil {
		return nil, err
	}
	for key := range defaults {
		name := envName(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if value, ok := dotenv[name]; ok {
			v.Set(key, value)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("не удалось разобрать конфигурацию: %w", err)
	}
	return &cfg, nil
}

func (l *Loader) homeDir() (string, error) {
	if l.home != "" {
		return l.home, nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("не удалось определить домашний каталог: %w", err)
	}
	return home, nil
}

// readDotenv читает .env и затем .env.local; значения из .env.local
// перекрывают значения из .env.
func (l *Loader) readDotenv() (map[string]string, error) {
	out := make(map[string]string)
	for _, name := range []string{".env", ".env.local"} {
		path := filepath.Join(l.workDir, name)
		if _, err := l.fs.Stat(path); err != nil {
			continue
		}
		data, err := afero.ReadFile(l.fs, path)
		if err != nil {
			return nil, fmt.Errorf("не удалось прочитать %s: %w", path, err)
		}
		values, err := godotenv.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("не удалось разобрать %s: %w", path, err)
		}
		for k, val := range values {
			out[k] = val
		}
	}
	return out, nil
}

func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(key)
}
