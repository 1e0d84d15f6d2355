package model

import (
	"fmt"
	"sort"
	"sync"
)

// Constructor builds a model for a progenitor core mass in solar masses.
type Constructor func(mcore float64, opts ...Option) (ShockCoolingModel, error)

// Definition describes a registered model.
type Definition struct {
	Name        string
	DisplayName string
	Description string
	New         Constructor
}

// Info is a summary of a registered model.
type Info struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

// Registry holds model definitions keyed by name.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*Definition
}

// NewRegistry creates a new empty model registry.
func NewRegistry() *Registry {
	return &Registry{
		models: make(map[string]*Definition),
	}
}

// Register adds a model definition to the registry.
// If a model with the same name already exists, it is replaced.
func (r *Registry) Register(def *Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[def.Name] = def
}

// Get retrieves a model definition by name.
func (r *Registry) Get(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.models[name]
	return def, ok
}

// New constructs the named model.
func (r *Registry) New(name string, mcore float64, opts ...Option) (ShockCoolingModel, error) {
	def, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownModel, name)
	}
	return def.New(mcore, opts...)
}

// List returns the registered models sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.models))
	for _, def := range r.models {
		infos = append(infos, Info{
			Name:        def.Name,
			DisplayName: def.DisplayName,
			Description: def.Description,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// DefaultRegistry returns a registry pre-loaded with the built-in models.
func DefaultRegistry() *Registry {
	reg := NewRegistry()

	reg.Register(&Definition{
		Name:        SWRSGName,
		DisplayName: "Sapir & Waxman (2017) [n = 1.5]",
		Description: "Shock-cooling emission of a red supergiant envelope " +
			"(density slope n = 3/2), including the late-time transparency suppression.",
		New: func(mcore float64, opts ...Option) (ShockCoolingModel, error) {
			m, err := NewSapirWaxmanRSG(mcore, opts...)
			if err != nil {
				return nil, err
			}
			return m, nil
		},
	})

	return reg
}
