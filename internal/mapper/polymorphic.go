package mapper

// Variant describes one concrete alternative of a polymorphic field.
type Variant[D, S any] struct {
	// Tag is the discriminator value stored for this variant.
	Tag string
	// Matches reports whether the domain instance holds this variant.
	Matches func(*D) bool
	// Project writes the variant's columns onto the storage instance.
	// Columns of other variants are left at their zero (NULL) value.
	Project func(*D, *S) error
	// Present reports whether the variant's columns are populated on the
	// storage instance. Used to infer a missing discriminator.
	Present func(*S) bool
	// Restore constructs the domain variant from the storage columns.
	Restore func(*S, *D) error
}

// Polymorphic registers a resolver for a field that is one of several
// value-object variants, stored as a discriminator plus the union of all
// variants' columns.
//
// Forward: the concrete variant is matched, its tag and columns written;
// an empty slot writes a NULL discriminator. Reverse: the discriminator
// selects the variant; when it is absent the variant is inferred from
// which columns are populated, and if none are, the slot stays empty.
func Polymorphic[D, S any](m *Mapper[D, S], name string,
	tag func(*S) *string, setTag func(*S, *string),
	empty func(*D) bool,
	variants ...Variant[D, S],
) *Mapper[D, S] {
	m.addResolver(name,
		func(d *D, s *S) error {
			if empty(d) {
				setTag(s, nil)
				return nil
			}
			for _, v := range variants {
				if v.Matches(d) {
					t := v.Tag
					setTag(s, &t)
					return v.Project(d, s)
				}
			}
			return &ConversionError{Field: name, Value: nil, Reason: "no variant matches domain value"}
		},
		func(s *S, d *D) error {
			t := tag(s)
			if t == nil {
				// Discriminator absent: infer from populated columns.
				for _, v := range variants {
					if v.Present(s) {
						return v.Restore(s, d)
					}
				}
				return nil // slot is genuinely empty
			}
			for _, v := range variants {
				if v.Tag == *t {
					return v.Restore(s, d)
				}
			}
			return &ConversionError{Field: name, Value: *t, Reason: "unknown discriminator"}
		},
	)
	return m
}
