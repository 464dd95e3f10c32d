package jsonfmt

import (
	"testing"

	"github.com/arthur-debert/confsynth/pkg/errors"
	"github.com/arthur-debert/confsynth/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestRead(t *testing.T) {
	t.Run("keeps document order", func(t *testing.T) {
		state, err := New().Read([]byte(`{"zeta": 1, "alpha": "x", "list": ["a", "b"], "nested": {"k": true}}`))
		require.NoError(t, err)

		assert.Equal(t, []string{"zeta", "alpha", "list", "nested"}, state.Keys())
		assert.Equal(t, []string{"1"}, state.Entries[0].Tokens)
		assert.Equal(t, []string{"a", "b"}, state.Entries[2].Tokens)
		assert.Equal(t, `{"k": true}`, state.Entries[3].Raw)
	})

	t.Run("last duplicate wins", func(t *testing.T) {
		state, err := New().Read([]byte(`{"a": 1, "a": 2}`))
		require.NoError(t, err)
		require.Len(t, state.Entries, 1)
		assert.Equal(t, []string{"2"}, state.Entries[0].Tokens)
	})

	t.Run("empty file", func(t *testing.T) {
		state, err := New().Read([]byte("  \n"))
		require.NoError(t, err)
		assert.Empty(t, state.Entries)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := New().Read([]byte(`{"a": `))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrParse))
	})

	t.Run("top level array", func(t *testing.T) {
		_, err := New().Read([]byte(`[1, 2]`))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrParse))
	})
}

func TestWrite(t *testing.T) {
	doc := types.MergedDocument{Entries: []types.MergedEntry{
		types.ManagedEntry("theme", types.String("Mocha")),
		types.PassthroughEntry(types.ExistingEntry{Key: "editor.fontSize", Raw: `{"a": [1, 2]}`}),
		types.ManagedEntry("font-size", types.Integer(12)),
		types.ManagedEntry("plugins", types.Strings("a", "b")),
		types.ManagedEntry("bold", types.Boolean(false)),
	}}

	out, err := New().Write(doc)
	require.NoError(t, err)

	parsed := gjson.ParseBytes(out)
	var keys []string
	parsed.ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	assert.Equal(t, []string{"theme", "editor.fontSize", "font-size", "plugins", "bold"}, keys)
	assert.Equal(t, "Mocha", parsed.Get("theme").String())
	assert.Equal(t, int64(12), parsed.Get("font-size").Int())
	assert.Equal(t, int64(2), parsed.Get(`editor\.fontSize.a.1`).Int())
	assert.False(t, parsed.Get("bold").Bool())
	assert.Equal(t, byte('\n'), out[len(out)-1])

	again, err := New().Write(doc)
	require.NoError(t, err)
	assert.Equal(t, out, again, "output must be deterministic")
}

func TestWriteEmptyDocument(t *testing.T) {
	out, err := New().Write(types.MergedDocument{})
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(out))
}

func TestRoundTripIsStable(t *testing.T) {
	p := New()
	first, err := p.Write(types.MergedDocument{Entries: []types.MergedEntry{
		types.ManagedEntry("theme", types.String("Mocha")),
		types.ManagedEntry("plugins", types.Strings("a", "b")),
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

func TestPassthroughFromTokens(t *testing.T) {
	out, err := New().Write(types.MergedDocument{Entries: []types.MergedEntry{
		types.PassthroughEntry(types.ExistingEntry{Key: "single", Tokens: []string{"x"}}),
		types.PassthroughEntry(types.ExistingEntry{Key: "multi", Tokens: []string{"a", "b"}}),
	}})
	require.NoError(t, err)
	parsed := gjson.ParseBytes(out)
	assert.Equal(t, "x", parsed.Get("single").String())
	assert.Equal(t, 2, len(parsed.Get("multi").Array()))
}

func TestKeysWithPathSyntaxArePreserved(t *testing.T) {
	p := New()
	state, err := p.Read([]byte(`{"a|b":1,"#":2,"0":3,"@this":4,"x=y":5,"k!":6,"a.b":7,"*?":8,":1":9,"%<>":10}`))
	require.NoError(t, err)
	keys := state.Keys()

	entries := []types.MergedEntry{types.ManagedEntry("-1", types.String("managed"))}
	for _, e := range state.Entries {
		entries = append(entries, types.PassthroughEntry(e))
	}
	out, err := p.Write(types.MergedDocument{Entries: entries})
	require.NoError(t, err)

	reread, err := p.Read(out)
	require.NoError(t, err, string(out))
	assert.Equal(t, append([]string{"-1"}, keys...), reread.Keys())
	for i, e := range state.Entries {
		assert.Equal(t, e.Tokens, reread.Entries[i+1].Tokens, e.Key)
	}

	again, err := p.Write(types.MergedDocument{Entries: entries})
	require.NoError(t, err)
	assert.Equal(t, string(out), string(again))
}

func TestWriteRejectsInvalidUTF8(t *testing.T) {
	cases := []types.MergedEntry{
		types.ManagedEntry("name", types.String("bad\xff")),
		types.ManagedEntry("list", types.Strings("ok", "bad\xfe")),
		types.ManagedEntry("bad\xff", types.Integer(1)),
	}
	for _, entry := range cases {
		_, err := New().Write(types.MergedDocument{Entries: []types.MergedEntry{entry}})
		require.Error(t, err, entry.Key)
		assert.True(t, errors.IsErrorCode(err, errors.ErrValidation), entry.Key)
	}
}
