package dialect

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Dialect registry
var (
	dialectsMu sync.RWMutex
	dialects   = make(map[string]*Dialect) // canonical names and aliases
)

var (
	// ErrDialectRequired is returned when a dialect is required but not provided.
	ErrDialectRequired = errors.New("dialect is required")
	// ErrUnknownDialect is returned when a dialect name is not registered.
	ErrUnknownDialect = errors.New("unknown dialect")
)

// Get returns a dialect by name or alias.
func Get(name string) (*Dialect, bool) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	d, ok := dialects[strings.ToLower(name)]
	return d, ok
}

// Lookup is Get with an error for unknown names.
func Lookup(name string) (*Dialect, error) {
	if name == "" {
		return nil, ErrDialectRequired
	}
	d, ok := Get(name)
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownDialect, name, strings.Join(List(), ", "))
	}
	return d, nil
}

// Register registers a dialect under its name and aliases.
// Called by dialect implementations in their init() functions.
func Register(d *Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[strings.ToLower(d.Name)] = d
	for _, a := range d.aliases {
		dialects[a] = d
	}
}

// List returns all registered canonical dialect names (sorted).
func List() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	names := make([]string, 0, len(dialects))
	for name, d := range dialects {
		if name == strings.ToLower(d.Name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
