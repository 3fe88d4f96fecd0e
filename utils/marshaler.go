package utils

import (
	"reflect"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v2"
)

// Kind is the interface a registered implementation satisfies
type Kind string

const (
	KindChain      Kind = "chain"
	KindEngine     Kind = "engine"
	KindSigner     Kind = "signer"
	KindEncoder    Kind = "encoder"
	KindDescriptor Kind = "descriptor"
)

// InterfaceRegistry maps type names to constructors of config implementations.
// Modules fill it at startup, and config sections are resolved against it.
type InterfaceRegistry struct {
	mu    sync.RWMutex
	impls map[Kind]map[string]func() any
}

func NewInterfaceRegistry() *InterfaceRegistry {
	return &InterfaceRegistry{impls: make(map[Kind]map[string]func() any)}
}

// RegisterImplementation registers a constructor under the given kind and type name.
// It panics on a duplicate registration.
func (r *InterfaceRegistry) RegisterImplementation(kind Kind, typeName string, factory func() any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	impls, ok := r.impls[kind]
	if !ok {
		impls = make(map[string]func() any)
		r.impls[kind] = impls
	}
	if _, ok := impls[typeName]; ok {
		panic(errors.Newf("%s implementation %q is already registered", kind, typeName))
	}
	impls[typeName] = factory
}

// ListImplementations returns the sorted type names registered for kind
func (r *InterfaceRegistry) ListImplementations(kind Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.impls[kind]))
	for name := range r.impls[kind] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Kinds returns the sorted kinds that have at least one registered implementation
func (r *InterfaceRegistry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, len(r.impls))
	for kind := range r.impls {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// New returns a fresh value of the given type
func (r *InterfaceRegistry) New(kind Kind, typeName string) (any, error) {
	r.mu.RLock()
	factory, ok := r.impls[kind][typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Newf("unknown %s type %q: registered=%v", kind, typeName, r.ListImplementations(kind))
	}
	return factory(), nil
}

// Any is a config section of a registered type. The value is kept raw until it is
// unpacked against a registry.
type Any struct {
	Type  string        `yaml:"type" json:"type"`
	Value yaml.MapSlice `yaml:"value,omitempty" json:"value,omitempty"`
}

// UnpackInterfacesMessage is implemented by sections holding nested sections. It is
// called by UnpackAny once the section itself is decoded.
type UnpackInterfacesMessage interface {
	UnpackInterfaces(r *InterfaceRegistry) error
}

// NewAny packs v as a section of the given type
func NewAny(typeName string, v any) (*Any, error) {
	bz, err := yaml.Marshal(v)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal %s", typeName)
	}
	var value yaml.MapSlice
	if err := yaml.Unmarshal(bz, &value); err != nil {
		return nil, errors.Wrapf(err, "failed to marshal %s", typeName)
	}
	return &Any{Type: typeName, Value: value}, nil
}

// UnpackAny decodes a into a fresh value of its registered type and stores it in
// iface, which must be a pointer to an interface the value implements.
//
// Ex:
//
//	var cfg core.EngineConfig
//	err := UnpackAny(registry, KindEngine, section, &cfg)
func UnpackAny(r *InterfaceRegistry, kind Kind, a *Any, iface any) error {
	if a == nil {
		return errors.Newf("%s section is missing", kind)
	}
	target := reflect.ValueOf(iface)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return errors.Newf("iface must be a non-nil pointer: %T", iface)
	}

	v, err := r.New(kind, a.Type)
	if err != nil {
		return err
	}
	if len(a.Value) > 0 {
		bz, err := yaml.Marshal(a.Value)
		if err != nil {
			return errors.Wrapf(err, "failed to read %s %q", kind, a.Type)
		}
		if err := yaml.UnmarshalStrict(bz, v); err != nil {
			return errors.Wrapf(err, "failed to decode %s %q", kind, a.Type)
		}
	}

	if m, ok := v.(UnpackInterfacesMessage); ok {
		if err := m.UnpackInterfaces(r); err != nil {
			return errors.Wrapf(err, "failed to unpack %s %q", kind, a.Type)
		}
	}

	value := reflect.ValueOf(v)
	if !value.Type().AssignableTo(target.Elem().Type()) {
		return errors.Newf("%s type %q is %T, which does not implement %s", kind, a.Type, v, target.Elem().Type())
	}
	target.Elem().Set(value)
	return nil
}
