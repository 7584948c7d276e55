// Package mapper converts between domain aggregates and their flat storage
// representation through compile-time-registered field bindings. There is no
// reflection: every mapped field is a named pair of conversion closures, so
// renaming a struct field breaks the build, not the runtime.
//
// A Mapper is configured once at startup with a builder chain and is
// immutable and goroutine-safe afterwards. Mapping is pure per call: the
// source object is never mutated, and mapping the same input twice yields
// value-equal output.
package mapper

import (
	"errors"
	"fmt"
	"sync"
)

type binding[D, S any] struct {
	name string
	fwd  func(*D, *S) error
	rev  func(*S, *D) error
}

// Mapper maps between a domain type D and a storage type S.
type Mapper[D, S any] struct {
	name     string
	fields   []binding[D, S]
	resolved []binding[D, S] // polymorphic + child resolvers, applied after fields

	only   []string
	ignore []string

	beforeMap     func(*D) error
	afterMap      func(*D, *S) error
	beforeReverse func(*S) error
	afterReverse  func(*S, *D) error

	newStorage func(*D) (S, error)
	newDomain  func(*S) (D, error)

	cfgErr error

	planOnce     sync.Once
	plan         []binding[D, S]
	planResolved []binding[D, S]
}

// New creates a mapper with the given name. The name appears in every
// MappingError produced by this mapper.
func New[D, S any](name string) *Mapper[D, S] {
	return &Mapper[D, S]{name: name}
}

// Field registers a named binding: fwd writes the field into the storage
// instance, rev writes it back into the domain instance. Either side may be
// nil for a one-way field.
func (m *Mapper[D, S]) Field(name string, fwd func(*D, *S) error, rev func(*S, *D) error) *Mapper[D, S] {
	for _, b := range m.fields {
		if b.name == name {
			m.fail(fmt.Errorf("field %q registered twice", name))
			return m
		}
	}
	m.fields = append(m.fields, binding[D, S]{name: name, fwd: fwd, rev: rev})
	return m
}

// Only restricts the mapping plan to the named bindings (allow-list).
func (m *Mapper[D, S]) Only(names ...string) *Mapper[D, S] {
	m.only = append(m.only, names...)
	return m
}

// Ignore removes the named bindings from the mapping plan (deny-list).
func (m *Mapper[D, S]) Ignore(names ...string) *Mapper[D, S] {
	m.ignore = append(m.ignore, names...)
	return m
}

// Override replaces the conversion functions of an already registered
// binding. Overriding an unknown field is a configuration error.
func (m *Mapper[D, S]) Override(name string, fwd func(*D, *S) error, rev func(*S, *D) error) *Mapper[D, S] {
	for i, b := range m.fields {
		if b.name == name {
			m.fields[i] = binding[D, S]{name: name, fwd: fwd, rev: rev}
			return m
		}
	}
	m.fail(fmt.Errorf("override of unknown field %q", name))
	return m
}

// BeforeMap runs before a domain instance is mapped to storage.
func (m *Mapper[D, S]) BeforeMap(fn func(*D) error) *Mapper[D, S] {
	m.beforeMap = fn
	return m
}

// AfterMap runs after all bindings, for cross-field synchronization on the
// produced storage instance.
func (m *Mapper[D, S]) AfterMap(fn func(*D, *S) error) *Mapper[D, S] {
	m.afterMap = fn
	return m
}

// BeforeReverse runs before a storage instance is mapped to domain. It sees
// the full source record, including fields the plan skips.
func (m *Mapper[D, S]) BeforeReverse(fn func(*S) error) *Mapper[D, S] {
	m.beforeReverse = fn
	return m
}

// AfterReverse runs after all bindings, for invariant enforcement on the
// produced domain instance.
func (m *Mapper[D, S]) AfterReverse(fn func(*S, *D) error) *Mapper[D, S] {
	m.afterReverse = fn
	return m
}

// StorageFactory replaces zero-value construction of the storage instance.
func (m *Mapper[D, S]) StorageFactory(fn func(*D) (S, error)) *Mapper[D, S] {
	m.newStorage = fn
	return m
}

// DomainFactory replaces zero-value construction of the domain instance.
// The factory sees the full source record, so invariants needing several
// fields at once can be enforced atomically before bindings run.
func (m *Mapper[D, S]) DomainFactory(fn func(*S) (D, error)) *Mapper[D, S] {
	m.newDomain = fn
	return m
}

func (m *Mapper[D, S]) fail(err error) {
	if m.cfgErr == nil {
		m.cfgErr = err
	}
}

func (m *Mapper[D, S]) addResolver(name string, fwd func(*D, *S) error, rev func(*S, *D) error) {
	m.resolved = append(m.resolved, binding[D, S]{name: name, fwd: fwd, rev: rev})
}

// buildPlan computes the active binding set once: the registered fields and
// resolvers filtered through Only/Ignore. Unknown names in either list are
// configuration errors.
func (m *Mapper[D, S]) buildPlan() {
	known := make(map[string]bool, len(m.fields)+len(m.resolved))
	for _, b := range m.fields {
		known[b.name] = true
	}
	for _, b := range m.resolved {
		known[b.name] = true
	}

	for _, n := range m.only {
		if !known[n] {
			m.fail(fmt.Errorf("only: unknown field %q", n))
		}
	}
	for _, n := range m.ignore {
		if !known[n] {
			m.fail(fmt.Errorf("ignore: unknown field %q", n))
		}
	}

	allowed := func(name string) bool {
		if len(m.only) > 0 {
			found := false
			for _, n := range m.only {
				if n == name {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		for _, n := range m.ignore {
			if n == name {
				return false
			}
		}
		return true
	}

	plan := make([]binding[D, S], 0, len(m.fields))
	for _, b := range m.fields {
		if allowed(b.name) {
			plan = append(plan, b)
		}
	}
	m.plan = plan

	resolved := make([]binding[D, S], 0, len(m.resolved))
	for _, b := range m.resolved {
		if allowed(b.name) {
			resolved = append(resolved, b)
		}
	}
	m.planResolved = resolved
}

func (m *Mapper[D, S]) ready() error {
	m.planOnce.Do(m.buildPlan)
	return m.cfgErr
}

// ToStorage maps a domain instance to a new storage instance.
func (m *Mapper[D, S]) ToStorage(d *D) (S, error) {
	var zero S
	if d == nil {
		return zero, &MappingError{Mapper: m.name, Err: errors.New("nil domain instance")}
	}
	if err := m.ready(); err != nil {
		return zero, &MappingError{Mapper: m.name, Err: err}
	}

	if m.beforeMap != nil {
		if err := m.beforeMap(d); err != nil {
			return zero, &MappingError{Mapper: m.name, Err: err}
		}
	}

	var s S
	if m.newStorage != nil {
		var err error
		s, err = m.newStorage(d)
		if err != nil {
			return zero, &MappingError{Mapper: m.name, Err: err}
		}
	}

	for _, b := range m.plan {
		if b.fwd == nil {
			continue
		}
		if err := b.fwd(d, &s); err != nil {
			return zero, m.fieldErr(b.name, err)
		}
	}
	for _, b := range m.planResolved {
		if err := b.fwd(d, &s); err != nil {
			return zero, m.fieldErr(b.name, err)
		}
	}

	if m.afterMap != nil {
		if err := m.afterMap(d, &s); err != nil {
			return zero, &MappingError{Mapper: m.name, Err: err}
		}
	}

	return s, nil
}

// ToDomain maps a storage instance to a new domain instance.
func (m *Mapper[D, S]) ToDomain(s *S) (D, error) {
	var zero D
	if s == nil {
		return zero, &MappingError{Mapper: m.name, Err: errors.New("nil storage instance")}
	}
	if err := m.ready(); err != nil {
		return zero, &MappingError{Mapper: m.name, Err: err}
	}

	if m.beforeReverse != nil {
		if err := m.beforeReverse(s); err != nil {
			return zero, &MappingError{Mapper: m.name, Err: err}
		}
	}

	var d D
	if m.newDomain != nil {
		var err error
		d, err = m.newDomain(s)
		if err != nil {
			return zero, &MappingError{Mapper: m.name, Err: err}
		}
	}

	for _, b := range m.plan {
		if b.rev == nil {
			continue
		}
		if err := b.rev(s, &d); err != nil {
			return zero, m.fieldErr(b.name, err)
		}
	}
	for _, b := range m.planResolved {
		if err := b.rev(s, &d); err != nil {
			return zero, m.fieldErr(b.name, err)
		}
	}

	if m.afterReverse != nil {
		if err := m.afterReverse(s, &d); err != nil {
			return zero, &MappingError{Mapper: m.name, Err: err}
		}
	}

	return d, nil
}

func (m *Mapper[D, S]) fieldErr(field string, err error) error {
	return &MappingError{Mapper: m.name, Field: field, Err: err}
}
