package battery

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"
)

//go:embed data/*.yaml
var builtinFS embed.FS

var (
	builtinOnce sync.Once
	builtin     *Registry
	builtinErr  error
)

// Registry is a lookup table of batteries keyed by ID.
type Registry struct {
	byID map[string]*Battery
}

// NewRegistry builds a registry from the given batteries. Duplicate IDs are
// rejected.
func NewRegistry(batteries ...*Battery) (*Registry, error) {
	r := &Registry{byID: make(map[string]*Battery, len(batteries))}
	for _, b := range batteries {
		if err := r.Add(b); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Builtin returns the registry of batteries shipped with the binary. The
// embedded definitions are parsed once.
func Builtin() (*Registry, error) {
	builtinOnce.Do(func() {
		builtin, builtinErr = loadFS(builtinFS, "data")
	})
	return builtin, builtinErr
}

func loadFS(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read battery dir: %w", err)
	}

	r := &Registry{byID: make(map[string]*Battery, len(entries))}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		b, err := Parse(data, e.Name())
		if err != nil {
			return nil, err
		}
		if err := r.Add(b); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers b. It fails if the ID is already taken.
func (r *Registry) Add(b *Battery) error {
	if _, ok := r.byID[b.ID]; ok {
		return &ValidationError{Source: b.ID, Message: "duplicate battery id"}
	}
	r.byID[b.ID] = b
	return nil
}

// Get returns the battery with the given ID.
func (r *Registry) Get(id string) (*Battery, error) {
	b, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return b, nil
}

// List returns all batteries ordered by family, then ID.
func (r *Registry) List() []*Battery {
	out := make([]*Battery, 0, len(r.byID))
	for _, b := range r.byID {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Family != out[j].Family {
			return out[i].Family < out[j].Family
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Family returns the batteries of one family, ordered by ID.
func (r *Registry) Family(f Family) []*Battery {
	var out []*Battery
	for _, b := range r.List() {
		if b.Family == f {
			out = append(out, b)
		}
	}
	return out
}
