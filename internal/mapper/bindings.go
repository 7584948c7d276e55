package mapper

// Binding constructors for the common conversion shapes. Each takes typed
// accessors for both sides, so a renamed or retyped field is a compile
// error at the registration site.

// Bind registers a pass-through binding for a field with the same type on
// both sides.
func Bind[D, S, T any](m *Mapper[D, S], name string,
	getD func(*D) T, setD func(*D, T),
	getS func(*S) T, setS func(*S, T),
) *Mapper[D, S] {
	return m.Field(name,
		func(d *D, s *S) error {
			setS(s, getD(d))
			return nil
		},
		func(s *S, d *D) error {
			setD(d, getS(s))
			return nil
		},
	)
}

// Convert registers a binding with an explicit converter pair. Identifier
// wrapper types use this shape: unwrap to the raw scalar on the way to
// storage, wrap on the way back.
func Convert[D, S, DT, ST any](m *Mapper[D, S], name string,
	getD func(*D) DT, setD func(*D, DT),
	getS func(*S) ST, setS func(*S, ST),
	fwd func(DT) (ST, error), rev func(ST) (DT, error),
) *Mapper[D, S] {
	return m.Field(name,
		func(d *D, s *S) error {
			v, err := fwd(getD(d))
			if err != nil {
				return err
			}
			setS(s, v)
			return nil
		},
		func(s *S, d *D) error {
			v, err := rev(getS(s))
			if err != nil {
				return err
			}
			setD(d, v)
			return nil
		},
	)
}

// stringEnum is any string-backed enumeration with a validity check.
type stringEnum interface {
	~string
	IsValid() bool
}

// Enum registers a binding for a string-backed enumeration: unwrapped to
// its underlying string in storage, parsed and validated on the way back.
// A stored value with no matching domain variant is a ConversionError.
func Enum[D, S any, E stringEnum](m *Mapper[D, S], name string,
	getD func(*D) E, setD func(*D, E),
	getS func(*S) string, setS func(*S, string),
) *Mapper[D, S] {
	return m.Field(name,
		func(d *D, s *S) error {
			setS(s, string(getD(d)))
			return nil
		},
		func(s *S, d *D) error {
			v := E(getS(s))
			if !v.IsValid() {
				return &ConversionError{Field: name, Value: getS(s), Reason: "no matching domain variant"}
			}
			setD(d, v)
			return nil
		},
	)
}

// EnumPtr is Enum for optional enumeration fields; nil maps to NULL.
func EnumPtr[D, S any, E stringEnum](m *Mapper[D, S], name string,
	getD func(*D) *E, setD func(*D, *E),
	getS func(*S) *string, setS func(*S, *string),
) *Mapper[D, S] {
	return m.Field(name,
		func(d *D, s *S) error {
			v := getD(d)
			if v == nil {
				setS(s, nil)
				return nil
			}
			raw := string(*v)
			setS(s, &raw)
			return nil
		},
		func(s *S, d *D) error {
			raw := getS(s)
			if raw == nil {
				setD(d, nil)
				return nil
			}
			v := E(*raw)
			if !v.IsValid() {
				return &ConversionError{Field: name, Value: *raw, Reason: "no matching domain variant"}
			}
			setD(d, &v)
			return nil
		},
	)
}
