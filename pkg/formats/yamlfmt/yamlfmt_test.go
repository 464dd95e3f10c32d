package yamlfmt

import (
	"testing"

	"github.com/arthur-debert/confsynth/pkg/errors"
	"github.com/arthur-debert/confsynth/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRead(t *testing.T) {
	t.Run("keeps mapping order", func(t *testing.T) {
		state, err := New().Read([]byte("zeta: 1\nalpha: x\nlist:\n  - a\n  - b\nnested:\n  k: true\n"))
		require.NoError(t, err)

		assert.Equal(t, []string{"zeta", "alpha", "list", "nested"}, state.Keys())
		assert.Equal(t, []string{"1"}, state.Entries[0].Tokens)
		assert.Equal(t, []string{"a", "b"}, state.Entries[2].Tokens)
		node, ok := state.Entries[3].Raw.(*yaml.Node)
		require.True(t, ok)
		assert.Equal(t, yaml.MappingNode, node.Kind)
	})

	t.Run("empty and null documents", func(t *testing.T) {
		for _, input := range []string{"", "\n", "---\n", "~\n"} {
			state, err := New().Read([]byte(input))
			require.NoError(t, err, input)
			assert.Empty(t, state.Entries, input)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := New().Read([]byte("a: [1, 2\n"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrParse))
	})

	t.Run("top level sequence", func(t *testing.T) {
		_, err := New().Read([]byte("- a\n- b\n"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrParse))
	})
}

func TestWrite(t *testing.T) {
	out, err := New().Write(types.MergedDocument{Entries: []types.MergedEntry{
		types.ManagedEntry("theme", types.String("Mocha")),
		types.ManagedEntry("font-size", types.Integer(12)),
		types.ManagedEntry("bold", types.Boolean(true)),
		types.ManagedEntry("version", types.String("1.0")),
	}})
	require.NoError(t, err)
	assert.Equal(t, "theme: Mocha\nfont-size: 12\nbold: true\nversion: \"1.0\"\n", string(out))
}

func TestWriteLists(t *testing.T) {
	out, err := New().Write(types.MergedDocument{Entries: []types.MergedEntry{
		types.ManagedEntry("plugins", types.Strings("a", "b")),
		types.ManagedEntry("empty", types.List()),
	}})
	require.NoError(t, err)

	var decoded map[string][]string
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, []string{"a", "b"}, decoded["plugins"])
	assert.Empty(t, decoded["empty"])
}

func TestWriteEmptyDocument(t *testing.T) {
	out, err := New().Write(types.MergedDocument{})
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(out))
}

func TestPassthroughKeepsStructure(t *testing.T) {
	p := New()
	state, err := p.Read([]byte("theme: Dark\nextra:\n  nested:\n    deep: [1, 2]\n"))
	require.NoError(t, err)

	extra, ok := state.Lookup("extra")
	require.True(t, ok)
	out, err := p.Write(types.MergedDocument{Entries: []types.MergedEntry{
		types.ManagedEntry("theme", types.String("Mocha")),
		types.PassthroughEntry(extra),
	}})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, "Mocha", decoded["theme"])
	assert.Equal(t, map[string]any{"nested": map[string]any{"deep": []any{1, 2}}}, decoded["extra"])
}

func TestRoundTripIsStable(t *testing.T) {
	p := New()
	first, err := p.Write(types.MergedDocument{Entries: []types.MergedEntry{
		types.ManagedEntry("theme", types.String("Mocha")),
		types.ManagedEntry("plugins", types.Strings("a", "b")),
		types.ManagedEntry("port", types.Integer(8080)),
	}})
	require.NoError(t, err)

	state, err := p.Read(first)
	require.NoError(t, err)
	doc := types.MergedDocument{}
	for _, e := range state.Entries {
		doc.Entries = append(doc.Entries, types.PassthroughEntry(e))
	}
	second, err := p.Write(doc)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestAliasesSurviveReplacingTheirAnchor(t *testing.T) {
	p := New()
	state, err := p.Read([]byte("base: &b 1\nother: *b\nlist: &l [x, y]\nref: *l\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, state.Entries[1].Tokens)
	assert.Equal(t, []string{"x", "y"}, state.Entries[3].Tokens)

	doc := types.MergedDocument{Entries: []types.MergedEntry{
		types.ManagedEntry("base", types.Integer(2)),
		types.PassthroughEntry(state.Entries[1]),
		types.PassthroughEntry(state.Entries[2]),
		types.PassthroughEntry(state.Entries[3]),
	}}
	out, err := p.Write(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "*")
	assert.NotContains(t, string(out), "&")

	reread, err := p.Read(out)
	require.NoError(t, err, string(out))
	assert.Equal(t, []string{"base", "other", "list", "ref"}, reread.Keys())
	assert.Equal(t, []string{"2"}, reread.Entries[0].Tokens)
	assert.Equal(t, []string{"1"}, reread.Entries[1].Tokens)
	assert.Equal(t, []string{"x", "y"}, reread.Entries[3].Tokens)
}

func TestSelfReferencingAnchorIsParseError(t *testing.T) {
	_, err := New().Read([]byte("a: &x [*x]\n"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrParse))
}
