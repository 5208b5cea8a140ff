// Package cli содержит команды утилиты graphrepo: выполнение запросов к
// графовой или SQL-базе через диспетчер методов репозитория.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/x-research-team/dtx-graphrepo/internal/config"
	"github.com/x-research-team/dtx-graphrepo/session"
	"github.com/x-research-team/dtx-graphrepo/session/neo4j"
	"github.com/x-research-team/dtx-graphrepo/session/postgres"
	"github.com/x-research-team/dtx-graphrepo/session/sqlite"
)

// Version - версия утилиты.
const Version = "0.1.0"

// globalFlags - флаги, перекрывающие значения конфигурации.
type globalFlags struct {
	configFile string
	backend    string
	uri        string
	username   string
	password   string
	database   string
	logLevel   string
	logFormat  string
}

// app - состояние одного запуска утилиты.
type app struct {
	loader *config.Loader
	flags  globalFlags
}

// NewRootCommand создает корневую команду. Конфигурация читается через loader.
func NewRootCommand(loader *config.Loader) *cobra.Command {
	a := &app{loader: loader}

	root := &cobra.Command{
		Use:   "graphrepo",
		Short: "Execute repository query methods against a graph or SQL database",
		Long: `graphrepo binds arguments to a query template, applies sorting and paging,
executes it through a neo4j, postgres or sqlite session and prints the result as JSON.

Configuration is read from .graphrepo.yaml, .env files and GRAPHREPO_* variables.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configFile, "config", "", "path to the config file")
	pf.StringVar(&a.flags.backend, "backend", "", "session backend: neo4j, postgres or sqlite")
	pf.StringVar(&a.flags.uri, "uri", "", "connection uri or sqlite dsn")
	pf.StringVar(&a.flags.username, "username", "", "neo4j username")
	pf.StringVar(&a.flags.password, "password", "", "neo4j password")
	pf.StringVar(&a.flags.database, "database", "", "neo4j database name")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(newQueryCommand(a), newExecCommand(a))
	return root
}

// loadConfig читает конфигурацию и применяет явно заданные флаги.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := a.loader.Load(a.flags.configFile)
	if err != nil {
		return nil, err
	}

	overrides := map[string]*string{
		"backend":    &cfg.Backend,
		"uri":        &cfg.URI,
		"username":   &cfg.Username,
		"password":   &cfg.Password,
		"database":   &cfg.Database,
		"log-level":  &cfg.LogLevel,
		"log-format": &cfg.LogFormat,
	}
	values := map[string]string{
		"backend":    a.flags.backend,
		"uri":        a.flags.uri,
		"username":   a.flags.username,
		"password":   a.flags.password,
		"database":   a.flags.database,
		"log-level":  a.flags.logLevel,
		"log-format": a.flags.logFormat,
	}
	for name, target := range overrides {
		if cmd.Flags().Changed(name) {
			*target = values[name]
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger создает логгер, пишущий в w в формате из конфигурации.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// closableSession - сессия, которой владеет утилита.
type closableSession interface {
	session.Session
	Close(ctx context.Context) error
}

// openSession открывает сессию выбранного backend.
func openSession(ctx context.Context, cfg *config.Config, logger *slog.Logger) (closableSession, error) {
	var (
		sess closableSession
		err  error
	)
	switch cfg.Backend {
	case config.BackendNeo4j:
		sess, err = neo4j.Open(ctx, cfg.URI, cfg.Username, cfg.Password,
			neo4j.WithDatabase(cfg.Database), neo4j.WithLogger(logger))
	case config.BackendPostgres:
		sess, err = postgres.Open(ctx, cfg.URI, postgres.WithLogger(logger))
	case config.BackendSQLite:
		sess, err = sqlite.Open(ctx, cfg.URI, sqlite.WithLogger(logger))
	default:
		return nil, fmt.Errorf("неизвестный backend '%s'", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}
