// Package schema validates desired values against a file's declared schema
// and computes the effective values that the merge engine writes.
package schema

import (
	"fmt"
	"sort"

	"github.com/arthur-debert/confsynth/pkg/errors"
	"github.com/arthur-debert/confsynth/pkg/types"
)

// Validate checks values against s and returns the effective values.
//
// Checks run in a fixed order and stop at the first failure:
//  1. every key in values is declared in s
//  2. every value (and every default) matches its declared type, list
//     elements are checked against the item type
//  3. no two fields share a name
//
// Fields without an explicit value fall back to their default. Fields with
// neither are left out of the result.
func Validate(s types.Schema, values map[string]types.Value) (types.EffectiveValues, error) {
	for _, name := range sortedKeys(values) {
		if _, ok := s.Lookup(name); !ok {
			return nil, errors.Newf(errors.ErrValidation, "unknown field %q", name).
				WithDetail(errors.DetailField, name)
		}
	}

	for _, field := range s.Fields {
		if err := checkDeclaration(field); err != nil {
			return nil, err
		}
		if field.Default != nil {
			if err := CheckValue(field, *field.Default); err != nil {
				return nil, errors.Annotate(err, errors.ErrValidation, "source", "default")
			}
		}
	}
	for _, name := range sortedKeys(values) {
		field, _ := s.Lookup(name)
		if err := CheckValue(field, values[name]); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]bool, len(s.Fields))
	for _, field := range s.Fields {
		if seen[field.Name] {
			return nil, errors.Newf(errors.ErrValidation, "field %q declared more than once", field.Name).
				WithDetail(errors.DetailField, field.Name)
		}
		seen[field.Name] = true
	}

	effective := make(types.EffectiveValues, len(s.Fields))
	for _, field := range s.Fields {
		if v, ok := values[field.Name]; ok {
			effective[field.Name] = v
			continue
		}
		if field.Default != nil {
			effective[field.Name] = *field.Default
		}
	}
	return effective, nil
}

// CheckValue reports whether v satisfies the declared type of field.
func CheckValue(field types.FieldSchema, v types.Value) error {
	if !v.IsValid() {
		return mismatch(field.Name, field.Type, "invalid")
	}
	if v.Kind() != field.Type {
		return mismatch(field.Name, field.Type, string(v.Kind()))
	}
	if field.Type != types.TypeList {
		return nil
	}
	for i, item := range v.Items() {
		if item.Kind() != field.ItemType {
			return mismatch(fmt.Sprintf("%s[%d]", field.Name, i), field.ItemType, string(item.Kind()))
		}
	}
	return nil
}

func checkDeclaration(field types.FieldSchema) error {
	if field.Name == "" {
		return errors.New(errors.ErrValidation, "field with empty name")
	}
	if !field.Type.Valid() {
		return errors.Newf(errors.ErrValidation, "field %q has unknown type %q", field.Name, field.Type).
			WithDetail(errors.DetailField, field.Name)
	}
	if field.Type == types.TypeList && !field.ItemType.Valid() {
		return errors.Newf(errors.ErrValidation, "list field %q needs a valid item type", field.Name).
			WithDetail(errors.DetailField, field.Name).
			WithDetail(errors.DetailActual, string(field.ItemType))
	}
	return nil
}

func mismatch(field string, expected types.FieldType, actual string) error {
	return errors.Newf(errors.ErrValidation, "type mismatch for field %q", field).
		WithDetail(errors.DetailField, field).
		WithDetail(errors.DetailExpected, string(expected)).
		WithDetail(errors.DetailActual, actual)
}

func sortedKeys(values map[string]types.Value) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
