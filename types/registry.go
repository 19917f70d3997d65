package types

import "fmt"

// Registry is an explicit, instance-held catalog of sample types.
//
// A Registry is a plain value the embedder constructs and threads through
// explicitly, installed with no package-level map or side-effecting
// init() calls. The registry itself holds no process-global state.
type Registry struct {
	types map[string]SampleType
}

// NewRegistry returns a Registry pre-seeded with the four built-in fixed
// types: complex32, float32, bit, byte.
func NewRegistry() *Registry {
	r := &Registry{types: map[string]SampleType{}}
	r.types[Complex32.Name()] = Complex32
	r.types[Float32Type.Name()] = Float32Type
	r.types[Bit.Name()] = Bit
	r.types[Byte.Name()] = Byte
	return r
}

// Register installs an additional (typically object) SampleType.
func (r *Registry) Register(t SampleType) error {
	if t == nil || t.Name() == "" {
		return fmt.Errorf("types: cannot register an unnamed type")
	}
	if _, exists := r.types[t.Name()]; exists {
		return fmt.Errorf("types: type %q already registered", t.Name())
	}
	r.types[t.Name()] = t
	return nil
}

// Lookup returns the SampleType registered under name.
func (r *Registry) Lookup(name string) (SampleType, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Names returns all registered type names.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.types))
	for n := range r.types {
		out = append(out, n)
	}
	return out
}
