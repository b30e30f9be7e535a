package pgtype

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgpipe/pgwire"
)

// StructPlan is the decode plan for one destination struct type: the named
// fields in declared order, each with the codec for its Go type. A plan is
// computed once and reused for every resultset and row.
type StructPlan struct {
	typ    reflect.Type
	fields []planField
}

type planField struct {
	name  string // column name the field matches, lower case
	index int    // struct field index
	codec Codec
}

// ColumnBinding connects one destination field to the resultset column that
// feeds it.
type ColumnBinding struct {
	DBIndex int
	Desc    pgwire.FieldDescription
}

// PlanStruct builds the decode plan for t, which must be a struct type. Every
// exported field must have a codec registered in m. A field matches the
// column named by its `db` tag, or its own name compared case-insensitively.
// Fields tagged `db:"-"` are skipped.
func (m *Map) PlanStruct(t reflect.Type) (*StructPlan, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("destination must be a struct, got %s", t.Kind())
	}

	plan := &StructPlan{typ: t}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		name := sf.Tag.Get("db")
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}

		codec, ok := m.CodecFor(sf.Type)
		if !ok {
			return nil, fmt.Errorf("no codec registered for field %s of type %s", sf.Name, sf.Type)
		}

		plan.fields = append(plan.fields, planField{
			name:  strings.ToLower(name),
			index: i,
			codec: codec,
		})
	}

	return plan, nil
}

// NumFields returns the number of mapped destination fields.
func (p *StructPlan) NumFields() int { return len(p.fields) }

// BindColumns maps every destination field onto a column of the resultset and
// verifies type compatibility. A destination field with no matching column is
// pgwire.ErrFieldNotFound; extra columns are ignored. The first compatibility
// failure is returned, after all fields have been bound.
func (p *StructPlan) BindColumns(fds []pgwire.FieldDescription) ([]ColumnBinding, error) {
	const invalid = -1

	bindings := make([]ColumnBinding, len(p.fields))
	for i := range bindings {
		bindings[i].DBIndex = invalid
	}

	for dbIndex, fd := range fds {
		for i, f := range p.fields {
			if strings.EqualFold(f.name, fd.Name) {
				bindings[i] = ColumnBinding{DBIndex: dbIndex, Desc: fd}
				break
			}
		}
	}

	for _, b := range bindings {
		if b.DBIndex == invalid {
			return bindings, pgwire.ErrFieldNotFound
		}
	}

	var firstErr error
	for i, b := range bindings {
		if err := p.fields[i].codec.CompatibleWith(b.Desc); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return bindings, firstErr
}

// ScanRow decodes one row into dst, which must be a pointer to the planned
// struct type. cols holds the raw column values of the row; a nil element is
// NULL. The first error encountered wins, but every remaining field is still
// processed so the row is fully consumed.
func (p *StructPlan) ScanRow(bindings []ColumnBinding, cols [][]byte, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Type() != p.typ {
		return fmt.Errorf("cannot scan into %T, expected *%s", dst, p.typ)
	}
	sv := rv.Elem()

	var firstErr error
	for i, f := range p.fields {
		b := bindings[i]

		if b.DBIndex >= len(cols) {
			if firstErr == nil {
				firstErr = pgwire.ErrProtocolValueError
			}
			continue
		}

		err := f.codec.Scan(b.Desc, cols[b.DBIndex], sv.Field(f.index).Addr().Interface())
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
