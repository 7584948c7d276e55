package mapper_test

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/oakmart/orders-backend/internal/mapper"
)

// ---------------------------------------------------------------------------
// Test fixture: a small domain/storage pair exercising every binding shape.
// ---------------------------------------------------------------------------

type tier string

func (t tier) IsValid() bool { return t == "GOLD" || t == "SILVER" }

type account struct {
	ID      string
	Name    string
	Tier    tier
	Backup  *tier
	Secret  string
	Contact contact
	Pets    []pet
}

type contact interface{ contactKind() string }

type emailContact struct{ Addr string }

func (emailContact) contactKind() string { return "EMAIL" }

type phoneContact struct{ Number string }

func (phoneContact) contactKind() string { return "PHONE" }

type pet struct {
	ID   string
	Name string
}

type accountRow struct {
	ID     string
	Name   string
	Tier   string
	Backup *string

	ContactKind *string
	Email       *string
	Phone       *string

	Pets []petRow
}

type petRow struct {
	ID      string
	OwnerID string
	Name    string
}

func newScalarMapper() *mapper.Mapper[account, accountRow] {
	m := mapper.New[account, accountRow]("account")
	mapper.Bind(m, "id",
		func(a *account) string { return a.ID },
		func(a *account, v string) { a.ID = v },
		func(r *accountRow) string { return r.ID },
		func(r *accountRow, v string) { r.ID = v },
	)
	mapper.Bind(m, "name",
		func(a *account) string { return a.Name },
		func(a *account, v string) { a.Name = v },
		func(r *accountRow) string { return r.Name },
		func(r *accountRow, v string) { r.Name = v },
	)
	mapper.Enum(m, "tier",
		func(a *account) tier { return a.Tier },
		func(a *account, v tier) { a.Tier = v },
		func(r *accountRow) string { return r.Tier },
		func(r *accountRow, v string) { r.Tier = v },
	)
	mapper.EnumPtr(m, "backup",
		func(a *account) *tier { return a.Backup },
		func(a *account, v *tier) { a.Backup = v },
		func(r *accountRow) *string { return r.Backup },
		func(r *accountRow, v *string) { r.Backup = v },
	)
	return m
}

func TestMapper_RoundTrip(t *testing.T) {
	t.Parallel()

	m := newScalarMapper()
	backup := tier("SILVER")
	in := account{ID: "a1", Name: "Ada", Tier: "GOLD", Backup: &backup}

	row, err := m.ToStorage(&in)
	if err != nil {
		t.Fatalf("ToStorage: %v", err)
	}
	if row.ID != "a1" || row.Name != "Ada" || row.Tier != "GOLD" {
		t.Fatalf("unexpected row: %+v", row)
	}
	if row.Backup == nil || *row.Backup != "SILVER" {
		t.Fatalf("backup not mapped: %+v", row.Backup)
	}

	out, err := m.ToDomain(&row)
	if err != nil {
		t.Fatalf("ToDomain: %v", err)
	}
	if out.ID != in.ID || out.Name != in.Name || out.Tier != in.Tier {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
	if out.Backup == nil || *out.Backup != backup {
		t.Fatalf("backup round trip mismatch: %+v", out.Backup)
	}
}

func TestMapper_MappingIsPure(t *testing.T) {
	t.Parallel()

	m := newScalarMapper()
	in := account{ID: "a1", Name: "Ada", Tier: "GOLD"}
	snapshot := in

	first, err := m.ToStorage(&in)
	if err != nil {
		t.Fatalf("ToStorage: %v", err)
	}
	second, err := m.ToStorage(&in)
	if err != nil {
		t.Fatalf("ToStorage second call: %v", err)
	}

	if !reflect.DeepEqual(in, snapshot) {
		t.Fatalf("source mutated: got %+v want %+v", in, snapshot)
	}
	if first.ID != second.ID || first.Name != second.Name || first.Tier != second.Tier {
		t.Fatalf("mapping not deterministic: %+v vs %+v", first, second)
	}
}

func TestMapper_Only(t *testing.T) {
	t.Parallel()

	m := newScalarMapper().Only("id", "name")
	in := account{ID: "a1", Name: "Ada", Tier: "GOLD"}

	row, err := m.ToStorage(&in)
	if err != nil {
		t.Fatalf("ToStorage: %v", err)
	}
	if row.ID != "a1" || row.Name != "Ada" {
		t.Fatalf("allow-listed fields missing: %+v", row)
	}
	if row.Tier != "" {
		t.Fatalf("tier mapped despite Only: %q", row.Tier)
	}
}

func TestMapper_Ignore(t *testing.T) {
	t.Parallel()

	m := newScalarMapper().Ignore("tier", "backup")
	in := account{ID: "a1", Name: "Ada", Tier: "GOLD"}

	row, err := m.ToStorage(&in)
	if err != nil {
		t.Fatalf("ToStorage: %v", err)
	}
	if row.Tier != "" {
		t.Fatalf("tier mapped despite Ignore: %q", row.Tier)
	}
	if row.ID != "a1" {
		t.Fatalf("id should still map: %+v", row)
	}
}

func TestMapper_OnlyUnknownFieldIsConfigError(t *testing.T) {
	t.Parallel()

	m := newScalarMapper().Only("id", "no_such_field")
	in := account{ID: "a1"}

	_, err := m.ToStorage(&in)
	var me *mapper.MappingError
	if !errors.As(err, &me) {
		t.Fatalf("want MappingError, got %v", err)
	}

	// The configuration error is sticky: every later call fails the same way.
	if _, err := m.ToDomain(&accountRow{}); err == nil {
		t.Fatal("want sticky config error on ToDomain")
	}
}

func TestMapper_DuplicateFieldIsConfigError(t *testing.T) {
	t.Parallel()

	m := mapper.New[account, accountRow]("account")
	noop := func(*account, *accountRow) error { return nil }
	revNoop := func(*accountRow, *account) error { return nil }
	m.Field("id", noop, revNoop)
	m.Field("id", noop, revNoop)

	_, err := m.ToStorage(&account{})
	if err == nil {
		t.Fatal("want config error for duplicate field")
	}
}

func TestMapper_Override(t *testing.T) {
	t.Parallel()

	m := newScalarMapper()
	m.Override("name",
		func(a *account, r *accountRow) error {
			r.Name = "redacted"
			return nil
		},
		func(r *accountRow, a *account) error {
			a.Name = r.Name
			return nil
		},
	)

	row, err := m.ToStorage(&account{Name: "Ada"})
	if err != nil {
		t.Fatalf("ToStorage: %v", err)
	}
	if row.Name != "redacted" {
		t.Fatalf("override not applied: %q", row.Name)
	}
}

func TestMapper_OverrideUnknownFieldIsConfigError(t *testing.T) {
	t.Parallel()

	m := newScalarMapper()
	m.Override("no_such_field", nil, nil)

	if _, err := m.ToStorage(&account{}); err == nil {
		t.Fatal("want config error for override of unknown field")
	}
}

func TestMapper_FieldErrorNamesMapperAndField(t *testing.T) {
	t.Parallel()

	m := mapper.New[account, accountRow]("account")
	mapper.Convert(m, "id",
		func(a *account) string { return a.ID },
		func(a *account, v string) { a.ID = v },
		func(r *accountRow) string { return r.ID },
		func(r *accountRow, v string) { r.ID = v },
		func(v string) (string, error) {
			if v == "" {
				return "", errors.New("missing id")
			}
			return v, nil
		},
		func(v string) (string, error) { return v, nil },
	)

	_, err := m.ToStorage(&account{})
	var me *mapper.MappingError
	if !errors.As(err, &me) {
		t.Fatalf("want MappingError, got %v", err)
	}
	if me.Mapper != "account" || me.Field != "id" {
		t.Fatalf("error lacks context: %+v", me)
	}
}

func TestMapper_EnumRejectsUnknownStoredValue(t *testing.T) {
	t.Parallel()

	m := newScalarMapper()
	row := accountRow{ID: "a1", Name: "Ada", Tier: "BRONZE"}

	_, err := m.ToDomain(&row)
	var ce *mapper.ConversionError
	if !errors.As(err, &ce) {
		t.Fatalf("want ConversionError, got %v", err)
	}
	if ce.Field != "tier" {
		t.Fatalf("wrong field: %q", ce.Field)
	}
}

func TestMapper_Hooks(t *testing.T) {
	t.Parallel()

	var calls []string
	m := newScalarMapper()
	m.BeforeMap(func(a *account) error {
		calls = append(calls, "before")
		return nil
	})
	m.AfterMap(func(a *account, r *accountRow) error {
		calls = append(calls, "after")
		r.Name = r.Name + "!"
		return nil
	})

	row, err := m.ToStorage(&account{Name: "Ada", Tier: "GOLD"})
	if err != nil {
		t.Fatalf("ToStorage: %v", err)
	}
	if row.Name != "Ada!" {
		t.Fatalf("after hook not applied: %q", row.Name)
	}
	if fmt.Sprint(calls) != "[before after]" {
		t.Fatalf("wrong hook order: %v", calls)
	}
}

func TestMapper_DomainFactory(t *testing.T) {
	t.Parallel()

	m := newScalarMapper()
	m.DomainFactory(func(r *accountRow) (account, error) {
		if r.ID == "" {
			return account{}, errors.New("row without id")
		}
		return account{Secret: "from-factory"}, nil
	})

	out, err := m.ToDomain(&accountRow{ID: "a1", Name: "Ada", Tier: "GOLD"})
	if err != nil {
		t.Fatalf("ToDomain: %v", err)
	}
	if out.Secret != "from-factory" {
		t.Fatalf("factory result not used: %+v", out)
	}

	if _, err := m.ToDomain(&accountRow{Tier: "GOLD"}); err == nil {
		t.Fatal("want factory error for row without id")
	}
}
