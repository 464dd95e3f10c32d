package schema

import (
	"testing"

	"github.com/arthur-debert/confsynth/pkg/errors"
	"github.com/arthur-debert/confsynth/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ghosttySchema() types.Schema {
	return types.NewSchema(
		types.FieldSchema{Name: "theme", Type: types.TypeString, Default: types.Default(types.String("Dark"))},
		types.FieldSchema{Name: "font-size", Type: types.TypeInteger, Default: types.Default(types.Integer(12))},
		types.FieldSchema{Name: "keybind", Type: types.TypeList, ItemType: types.TypeString},
		types.FieldSchema{Name: "confirm-close", Type: types.TypeBoolean},
	)
}

func TestValidate(t *testing.T) {
	t.Run("fills defaults and drops unset fields", func(t *testing.T) {
		eff, err := Validate(ghosttySchema(), map[string]types.Value{
			"theme": types.String("Mocha"),
		})
		require.NoError(t, err)

		assert.Len(t, eff, 2)
		assert.Equal(t, types.String("Mocha"), eff["theme"])
		assert.Equal(t, types.Integer(12), eff["font-size"])
		assert.NotContains(t, eff, "keybind")
		assert.NotContains(t, eff, "confirm-close")
	})

	t.Run("explicit values win over defaults", func(t *testing.T) {
		eff, err := Validate(ghosttySchema(), map[string]types.Value{
			"font-size":     types.Integer(14),
			"keybind":       types.Strings("ctrl+a=new_tab", "ctrl+w=close"),
			"confirm-close": types.Boolean(false),
		})
		require.NoError(t, err)
		assert.Equal(t, types.Integer(14), eff["font-size"])
		assert.Equal(t, types.Strings("ctrl+a=new_tab", "ctrl+w=close"), eff["keybind"])
		assert.Equal(t, types.Boolean(false), eff["confirm-close"])
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		_, err := Validate(ghosttySchema(), map[string]types.Value{
			"colour": types.String("red"),
		})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
		assert.Equal(t, "colour", errors.GetErrorDetails(err)[errors.DetailField])
	})

	t.Run("type mismatch names both types", func(t *testing.T) {
		_, err := Validate(ghosttySchema(), map[string]types.Value{
			"font-size": types.String("12"),
		})
		require.Error(t, err)
		details := errors.GetErrorDetails(err)
		assert.Equal(t, "font-size", details[errors.DetailField])
		assert.Equal(t, "integer", details[errors.DetailExpected])
		assert.Equal(t, "string", details[errors.DetailActual])
	})

	t.Run("list elements are checked against item type", func(t *testing.T) {
		_, err := Validate(ghosttySchema(), map[string]types.Value{
			"keybind": types.List(types.String("a"), types.Integer(2)),
		})
		require.Error(t, err)
		assert.Equal(t, "keybind[1]", errors.GetErrorDetails(err)[errors.DetailField])
	})

	t.Run("unknown field is reported before type errors", func(t *testing.T) {
		_, err := Validate(ghosttySchema(), map[string]types.Value{
			"font-size": types.String("x"),
			"zzz":       types.String("y"),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown field")
	})

	t.Run("default must satisfy type", func(t *testing.T) {
		s := types.NewSchema(types.FieldSchema{
			Name: "size", Type: types.TypeInteger, Default: types.Default(types.String("big")),
		})
		_, err := Validate(s, nil)
		require.Error(t, err)
		assert.Equal(t, "default", errors.GetErrorDetails(err)["source"])
	})

	t.Run("duplicate field names are rejected", func(t *testing.T) {
		s := types.NewSchema(
			types.FieldSchema{Name: "theme", Type: types.TypeString},
			types.FieldSchema{Name: "theme", Type: types.TypeString},
		)
		_, err := Validate(s, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "more than once")
	})

	t.Run("list without item type is rejected", func(t *testing.T) {
		s := types.NewSchema(types.FieldSchema{Name: "plugins", Type: types.TypeList})
		_, err := Validate(s, nil)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
	})

	t.Run("unknown declared type is rejected", func(t *testing.T) {
		s := types.NewSchema(types.FieldSchema{Name: "ratio", Type: "float"})
		_, err := Validate(s, nil)
		require.Error(t, err)
	})

	t.Run("zero value is rejected", func(t *testing.T) {
		_, err := Validate(ghosttySchema(), map[string]types.Value{"theme": {}})
		require.Error(t, err)
		assert.Equal(t, "invalid", errors.GetErrorDetails(err)[errors.DetailActual])
	})
}

func TestCheckValueNestedList(t *testing.T) {
	field := types.FieldSchema{Name: "matrix", Type: types.TypeList, ItemType: types.TypeList}
	assert.NoError(t, CheckValue(field, types.List(types.Strings("a"), types.Strings("b", "c"))))
	assert.Error(t, CheckValue(field, types.Strings("a")))
}
