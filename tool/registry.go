package tool

import "sort"

// Registry maps tool names to their contract and handler. It is built once
// at startup and read-only afterwards, so no synchronization is needed on
// the resolve path.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		tools: map[string]Tool{},
	}
}

func (r *Registry) Register(tools ...Tool) error {
	for _, t := range tools {
		if _, exists := r.tools[t.Contract.Name]; exists {
			return &DuplicateToolError{Name: t.Contract.Name}
		}
		r.tools[t.Contract.Name] = t
	}
	return nil
}

func (r *Registry) Resolve(name string) (Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return Tool{}, &UnknownToolError{Name: name}
	}
	return t, nil
}

// Contracts returns every registered contract in name order, for handing
// to the model provider.
func (r *Registry) Contracts() []Contract {
	contracts := make([]Contract, 0, len(r.tools))
	for _, t := range r.tools {
		contracts = append(contracts, t.Contract)
	}
	sort.Slice(contracts, func(i, j int) bool {
		return contracts[i].Name < contracts[j].Name
	})
	return contracts
}
