package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrMethodNotFound возвращается при вызове незарегистрированного метода.
	ErrMethodNotFound = errors.New("метод репозитория не найден")
	// ErrMethodExists возвращается при повторной регистрации метода.
	ErrMethodExists = errors.New("метод репозитория уже зарегистрирован")
)

// Registry - это потокобезопасный реестр методов репозитория.
// Он связывает имя метода с его описанием и исполняет методы через
// общий Executor.
type Registry struct {
	executor Executor
	methods  map[string]Method
	mu       sync.RWMutex
}

// NewRegistry создает новый реестр поверх исполнителя.
func NewRegistry(executor Executor) *Registry {
	return &Registry{
		executor: executor,
		methods:  make(map[string]Method),
	}
}

// Define регистрирует метод под именем m.Name.
// Возвращает ошибку, если имя пустое, метод уже зарегистрирован или
// параметры метода объявлены некорректно.
func (r *Registry) Define(m Method) error {
	if m.Name == "" {
		return fmt.Errorf("имя метода репозитория не может быть пустым")
	}
	if err := m.Parameters.Validate(); err != nil {
		return fmt.Errorf("метод '%s': %w", m.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.methods[m.Name]; exists {
		return fmt.Errorf("%w: '%s'", ErrMethodExists, m.Name)
	}
	r.methods[m.Name] = m
	return nil
}

// Lookup возвращает метод по имени.
func (r *Registry) Lookup(name string) (Method, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.methods[name]
	return m, ok
}

// Methods возвращает отсортированные имена зарегистрированных методов.
func (r *Registry) Methods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke исполняет зарегистрированный метод с переданными аргументами.
func (r *Registry) Invoke(ctx context.Context, name string, args ...Argument) (any, error) {
	m, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrMethodNotFound, name)
	}
	return r.executor.Execute(ctx, m.Descriptor, m.Parameters, args...)
}
