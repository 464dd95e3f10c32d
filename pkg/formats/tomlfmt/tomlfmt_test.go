package tomlfmt

import (
	"strings"
	"testing"

	"github.com/arthur-debert/confsynth/pkg/errors"
	"github.com/arthur-debert/confsynth/pkg/types"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `title = "demo"
port = 8080
tags = ["a", "b"]

[server]
host = "localhost"

[[plugin]]
name = "one"

[server.tls]
enabled = true
`

func TestRead(t *testing.T) {
	t.Run("keeps top level order", func(t *testing.T) {
		state, err := New().Read([]byte(sample))
		require.NoError(t, err)

		assert.Equal(t, []string{"title", "port", "tags", "server", "plugin"}, state.Keys())
		assert.Equal(t, []string{"8080"}, state.Entries[1].Tokens)
		assert.Equal(t, []string{"a", "b"}, state.Entries[2].Tokens)

		server, ok := state.Lookup("server")
		require.True(t, ok)
		assert.Equal(t, map[string]any{
			"host": "localhost",
			"tls":  map[string]any{"enabled": true},
		}, server.Raw)
	})

	t.Run("dotted keys count once", func(t *testing.T) {
		state, err := New().Read([]byte("a.b = 1\na.c = 2\nz = 3\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "z"}, state.Keys())
	})

	t.Run("empty document", func(t *testing.T) {
		state, err := New().Read([]byte("\n\n"))
		require.NoError(t, err)
		assert.Empty(t, state.Entries)
	})

	t.Run("malformed toml reports the line", func(t *testing.T) {
		_, err := New().Read([]byte("a = 1\nb = = 2\n"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrParse))
		assert.Equal(t, 2, errors.GetErrorDetails(err)[errors.DetailLine])
	})
}

func TestWrite(t *testing.T) {
	out, err := New().Write(types.MergedDocument{Entries: []types.MergedEntry{
		types.PassthroughEntry(types.ExistingEntry{Key: "server", Raw: map[string]any{"host": "h"}}),
		types.ManagedEntry("theme", types.String("Mocha")),
		types.ManagedEntry("font-size", types.Integer(12)),
		types.ManagedEntry("bold", types.Boolean(true)),
		types.ManagedEntry("plugins", types.Strings("a", "b")),
	}})
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "font-size = 12\n")
	assert.Contains(t, text, "bold = true\n")
	assert.Less(t, strings.Index(text, "plugins"), strings.Index(text, "[server]"),
		"plain keys must precede tables")

	var decoded map[string]any
	require.NoError(t, toml.Unmarshal(out, &decoded))
	assert.Equal(t, "Mocha", decoded["theme"])
	assert.Equal(t, []any{"a", "b"}, decoded["plugins"])
	assert.Equal(t, map[string]any{"host": "h"}, decoded["server"])

	keys, err := topLevelKeys(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"theme", "font-size", "bold", "plugins", "server"}, keys)
}

func TestWriteEmptyList(t *testing.T) {
	out, err := New().Write(types.MergedDocument{Entries: []types.MergedEntry{
		types.ManagedEntry("plugins", types.List()),
	}})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, toml.Unmarshal(out, &decoded))
	require.Contains(t, decoded, "plugins")
	assert.Empty(t, decoded["plugins"])
}

func TestRoundTripIsStable(t *testing.T) {
	p := New()
	state, err := p.Read([]byte(sample))
	require.NoError(t, err)

	passthrough := func(s *types.ExistingFileState) types.MergedDocument {
		doc := types.MergedDocument{}
		for _, e := range s.Entries {
			doc.Entries = append(doc.Entries, types.PassthroughEntry(e))
		}
		return doc
	}

	first, err := p.Write(passthrough(state))
	require.NoError(t, err)
	again, err := p.Read(first)
	require.NoError(t, err)
	second, err := p.Write(passthrough(again))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestIsTable(t *testing.T) {
	assert.True(t, isTable(map[string]any{}))
	assert.True(t, isTable([]any{map[string]any{"a": 1}}))
	assert.False(t, isTable([]any{}))
	assert.False(t, isTable([]any{"a", map[string]any{}}))
	assert.False(t, isTable("x"))
}
