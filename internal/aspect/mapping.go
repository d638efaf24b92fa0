package aspect

import (
	"io"
	"log/slog"
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/roach88/facet/internal/adapter"
	"github.com/roach88/facet/internal/registry"
)

// ReadPolicy decides what Read does when a member fails to parse.
type ReadPolicy int

const (
	// AbortOnError returns the first failure. Members after it are left
	// untouched.
	AbortOnError ReadPolicy = iota
	// SkipInvalid logs each failure, keeps reading the remaining members,
	// and returns all failures joined.
	SkipInvalid
)

func (p ReadPolicy) String() string {
	switch p {
	case AbortOnError:
		return "abort"
	case SkipInvalid:
		return "skip"
	default:
		return "unknown"
	}
}

// Mapping is the ordered set of members describing one entity type's
// document shape.
type Mapping struct {
	owner    reflect.Type
	name     string
	members  []Member
	policy   ReadPolicy
	logger   *slog.Logger
	registry *registry.Registry
}

// Option configures a Mapping.
type Option func(*Mapping)

// WithRegistry sets the registry For uses to find adapters. Default:
// registry.Default().
func WithRegistry(r *registry.Registry) Option {
	return func(m *Mapping) {
		if r != nil {
			m.registry = r
		}
	}
}

// WithLogger sets the logger used to report skipped members.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mapping) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithReadPolicy sets how Read handles member failures.
func WithReadPolicy(p ReadPolicy) Option {
	return func(m *Mapping) {
		m.policy = p
	}
}

// WithName sets the document name. For defaults it to the type name.
func WithName(name string) Option {
	return func(m *Mapping) {
		if name != "" {
			m.name = name
		}
	}
}

// NewMapping builds a mapping from explicit members. Every member's
// accessor must belong to owner, and member names must be unique.
func NewMapping(owner reflect.Type, name string, members ...Member) (*Mapping, error) {
	if owner != nil && owner.Kind() == reflect.Pointer {
		owner = owner.Elem()
	}
	if owner == nil || owner.Kind() != reflect.Struct {
		return nil, errors.Newf("mapping %q: owner %v is not a struct type", name, owner)
	}
	seen := make(map[string]bool, len(members))
	for _, mem := range members {
		if mem == nil {
			return nil, errors.Newf("mapping %q: nil member", name)
		}
		if got := mem.Accessor().Owner(); got != owner {
			return nil, errors.Wrapf(ErrTypeMismatch, "mapping %q: member %q belongs to %s, not %s",
				name, mem.Name(), got, owner)
		}
		if seen[mem.Name()] {
			return nil, errors.Wrapf(ErrDuplicateMember, "mapping %q: %q", name, mem.Name())
		}
		seen[mem.Name()] = true
	}
	m := defaults(owner, name)
	m.members = append([]Member(nil), members...)
	return m, nil
}

func defaults(owner reflect.Type, name string) *Mapping {
	return &Mapping{
		owner:    owner,
		name:     name,
		policy:   AbortOnError,
		logger:   slog.Default(),
		registry: registry.Default(),
	}
}

// With returns a copy of m with the options applied.
func (m *Mapping) With(opts ...Option) *Mapping {
	c := *m
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// Owner returns the entity type.
func (m *Mapping) Owner() reflect.Type { return m.owner }

// Name returns the document name, used by callers for the root node.
func (m *Mapping) Name() string { return m.name }

// Policy returns the read policy.
func (m *Mapping) Policy() ReadPolicy { return m.policy }

// Members returns the members in declared order.
func (m *Mapping) Members() []Member {
	return append([]Member(nil), m.members...)
}

// Write adds every member's node to root in declared order. entity is a
// value or pointer of the mapping's owner type.
func (m *Mapping) Write(entity any, root Node, p *adapter.Provider) error {
	v, err := m.source(entity)
	if err != nil {
		return err
	}
	for _, mem := range m.members {
		mem.Write(v, root, p)
	}
	return nil
}

// Read assigns members from root in declared order. entity must be a
// non-nil pointer to the owner type.
func (m *Mapping) Read(entity any, root Node, p *adapter.Provider) error {
	v, err := m.target(entity)
	if err != nil {
		return err
	}
	var errs []error
	for _, mem := range m.members {
		err := mem.Read(v, root, p)
		if err == nil {
			continue
		}
		if m.policy == AbortOnError {
			return err
		}
		m.logger.Warn("skipping invalid member",
			"mapping", m.name,
			"member", mem.Name(),
			"error", err,
		)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// WriteBinary writes each member's binary encoding in declared order. The
// stream has no framing; readers need the same mapping.
func (m *Mapping) WriteBinary(w io.Writer, entity any) error {
	v, err := m.source(entity)
	if err != nil {
		return err
	}
	for _, mem := range m.members {
		if err := mem.WriteBinary(w, v); err != nil {
			return err
		}
	}
	return nil
}

// ReadBinary reads a stream written by WriteBinary into entity, which must
// be a non-nil pointer.
func (m *Mapping) ReadBinary(r io.Reader, entity any) error {
	v, err := m.target(entity)
	if err != nil {
		return err
	}
	for _, mem := range m.members {
		if err := mem.ReadBinary(r, v); err != nil {
			return err
		}
	}
	return nil
}

// source returns an addressable owner value for reading members. Values
// passed by value are copied so pointer-receiver getters can be called.
func (m *Mapping) source(entity any) (reflect.Value, error) {
	v := reflect.ValueOf(entity)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, errors.Wrapf(ErrInvalidEntity, "mapping %q: nil %s", m.name, v.Type())
		}
		v = v.Elem()
	}
	if !v.IsValid() || v.Type() != m.owner {
		return reflect.Value{}, errors.Wrapf(ErrInvalidEntity, "mapping %q: got %T, want %s", m.name, entity, m.owner)
	}
	if !v.CanAddr() {
		c := reflect.New(m.owner).Elem()
		c.Set(v)
		v = c
	}
	return v, nil
}

func (m *Mapping) target(entity any) (reflect.Value, error) {
	v := reflect.ValueOf(entity)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Type().Elem() != m.owner {
		return reflect.Value{}, errors.Wrapf(ErrInvalidEntity, "mapping %q: got %T, want non-nil *%s", m.name, entity, m.owner)
	}
	return v.Elem(), nil
}
