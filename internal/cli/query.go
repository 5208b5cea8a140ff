package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/x-research-team/dtx-graphrepo/paging"
	"github.com/x-research-team/dtx-graphrepo/query"
	"github.com/x-research-team/dtx-graphrepo/session"
)

// methodName - имя, под которым запрос из командной строки регистрируется в реестре.
const methodName = "cli"

// queryFlags - флаги команд query и exec.
type queryFlags struct {
	query      string
	params     []string
	sort       []string
	page       int
	size       int
	returns    string
	pageResult bool
}

func newQueryCommand(a *app) *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a query and print its result as JSON",
		Long: `Run a query template with bound parameters and print the result as JSON.

Parameters are given as --param name=value (bound by name) or --param value
(bound by position). Values are parsed as JSON when possible, otherwise used
as strings. Paging is enabled by --size; --sort accepts property[:asc|desc].`,
		Example: `  graphrepo query -q 'MATCH (m:Movie) WHERE m.released > $year RETURN m' -p year=1999 --sort m.title --size 10 --page-result
  graphrepo --backend sqlite --uri file:graph.db query -q 'SELECT * FROM person WHERE age > :min' -p min=30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.query, "query", "q", "", "query template")
	fl.StringArrayVarP(&f.params, "param", "p", nil, "query parameter: name=value or value")
	fl.StringArrayVar(&f.sort, "sort", nil, "sort property: property[:asc|desc]")
	fl.IntVar(&f.page, "page", 0, "zero-based page number")
	fl.IntVar(&f.size, "size", 0, "page size; enables paging")
	fl.StringVar(&f.returns, "returns", "rows", "result shape: rows, collection, single or none")
	fl.BoolVar(&f.pageResult, "page-result", false, "wrap a paged result into a page with an estimated total")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func newExecCommand(a *app) *cobra.Command {
	f := &queryFlags{returns: "none"}
	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Run a statement that returns no result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.query, "query", "q", "", "statement")
	fl.StringArrayVarP(&f.params, "param", "p", nil, "statement parameter: name=value or value")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

// run открывает сессию, регистрирует метод и исполняет его.
func (a *app) run(cmd *cobra.Command, f *queryFlags) error {
	ctx := cmd.Context()

	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	method, args, err := f.method()
	if err != nil {
		return err
	}

	sess, err := openSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = sess.Close(ctx)
	}()

	executor, err := query.NewDispatcher(sess, query.WithLogger(logger))
	if err != nil {
		return err
	}
	registry := query.NewRegistry(executor)
	if err := registry.Define(method); err != nil {
		return err
	}

	result, err := registry.Invoke(ctx, methodName, args...)
	if err != nil {
		return fmt.Errorf("ошибка исполнения запроса: %w", err)
	}
	if method.Returns == query.ReturnNone {
		return nil
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

// method строит описание метода и аргументы вызова по флагам.
func (f *queryFlags) method() (query.Method, []query.Argument, error) {
	desc := query.Descriptor{Name: methodName, Query: f.query, PageResult: f.pageResult}
	switch f.returns {
	case "rows":
		desc.Returns = query.ReturnCollection
		desc.Element = session.MapType()
	case "collection":
		desc.Returns = query.ReturnCollection
	case "single":
		desc.Returns = query.ReturnSingle
	case "none":
		desc.Returns = query.ReturnNone
	default:
		return query.Method{}, nil, fmt.Errorf("неизвестная форма результата '%s'", f.returns)
	}

	var (
		params query.Parameters
		args   []query.Argument
	)
	for _, raw := range f.params {
		name, value := parseParam(raw)
		if name == "" {
			params = append(params, query.Positional())
		} else {
			params = append(params, query.Named(name))
		}
		args = append(args, query.Arg(value))
	}

	sort, err := parseSort(f.sort)
	if err != nil {
		return query.Method{}, nil, err
	}

	switch {
	case f.size > 0:
		request, err := paging.NewPageRequest(f.page, f.size, sort)
		if err != nil {
			return query.Method{}, nil, err
		}
		params = append(params, query.PageSlot())
		args = append(args, query.Paged(request))
	case f.page != 0:
		return query.Method{}, nil, fmt.Errorf("--page требует --size")
	case !sort.IsUnsorted():
		params = append(params, query.SortSlot())
		args = append(args, query.Sorted(sort))
	}

	return query.Method{Descriptor: desc, Parameters: params}, args, nil
}

// parseParam разбирает "name=value" или "value". Значение разбирается как
// JSON, а если это не удается, используется как строка.
func parseParam(raw string) (string, any) {
	name, value, found := strings.Cut(raw, "=")
	if !found || !isIdentifier(name) {
		return "", parseValue(raw)
	}
	return name, parseValue(value)
}

func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return int64(f)
	}
	return v
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// parseSort разбирает значения вида "property[:asc|desc]".
func parseSort(values []string) (paging.Sort, error) {
	var sort paging.Sort
	for _, raw := range values {
		prop, dir, _ := strings.Cut(raw, ":")
		direction, err := paging.ParseDirection(dir)
		if err != nil {
			return nil, err
		}
		if prop == "" {
			return nil, fmt.Errorf("пустое свойство сортировки в '%s'", raw)
		}
		sort = append(sort, paging.Order{Property: prop, Direction: direction})
	}
	return sort, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("не удалось вывести результат: %w", err)
	}
	return nil
}
