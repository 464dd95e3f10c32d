package xmlfmt

import (
	"strings"
	"testing"

	"github.com/arthur-debert/confsynth/pkg/errors"
	"github.com/arthur-debert/confsynth/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<config>
  <!-- generated -->
  <theme>Dark</theme>
  <plugin>a</plugin>
  <window>
    <width>80</width>
  </window>
  <plugin>b</plugin>
</config>
`

func TestRead(t *testing.T) {
	t.Run("collects repeated elements", func(t *testing.T) {
		state, err := New().Read([]byte(sample))
		require.NoError(t, err)

		assert.Equal(t, []string{"theme", "plugin", "window"}, state.Keys())
		assert.Equal(t, []string{"Dark"}, state.Entries[0].Tokens)
		assert.Equal(t, []string{"a", "b"}, state.Entries[1].Tokens)
	})

	t.Run("empty file", func(t *testing.T) {
		state, err := New().Read(nil)
		require.NoError(t, err)
		assert.Empty(t, state.Entries)
	})

	t.Run("wrong root element", func(t *testing.T) {
		_, err := New().Read([]byte("<settings><a>1</a></settings>"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrParse))
	})

	t.Run("malformed xml", func(t *testing.T) {
		_, err := New().Read([]byte("<config><a>1</b></config>"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrParse))
	})
}

func TestWrite(t *testing.T) {
	out, err := New().Write(types.MergedDocument{Entries: []types.MergedEntry{
		types.ManagedEntry("theme", types.String("Mocha & Co")),
		types.ManagedEntry("size", types.Integer(12)),
		types.ManagedEntry("plugin", types.Strings("a", "b")),
	}})
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.HasPrefix(text, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, text, "  <size>12</size>\n")
	assert.Contains(t, text, "  <plugin>a</plugin>\n  <plugin>b</plugin>\n")

	state, err := New().Read(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mocha & Co"}, state.Entries[0].Tokens)
}

func TestWriteEmptyDocument(t *testing.T) {
	out, err := New().Write(types.MergedDocument{})
	require.NoError(t, err)

	state, err := New().Read(out)
	require.NoError(t, err)
	assert.Empty(t, state.Entries)
}

func TestWriteRejects(t *testing.T) {
	cases := map[string]types.MergedEntry{
		"space in name":  types.ManagedEntry("a b", types.String("x")),
		"digit first":    types.ManagedEntry("1a", types.String("x")),
		"xml prefix":     types.ManagedEntry("xmlthing", types.String("x")),
		"nested list":    types.ManagedEntry("l", types.List(types.Strings("x"))),
		"control char":   types.ManagedEntry("b", types.String("x\x01y")),
		"escape in list": types.ManagedEntry("b", types.Strings("ok", "\x1b[0m")),
		"invalid utf8":   types.ManagedEntry("b", types.String("\xff")),
	}
	for name, entry := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New().Write(types.MergedDocument{Entries: []types.MergedEntry{entry}})
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
		})
	}
}

func TestPassthroughKeepsNestedElements(t *testing.T) {
	p := New()
	state, err := p.Read([]byte(sample))
	require.NoError(t, err)

	window, ok := state.Lookup("window")
	require.True(t, ok)
	out, err := p.Write(types.MergedDocument{Entries: []types.MergedEntry{
		types.ManagedEntry("theme", types.String("Mocha")),
		types.PassthroughEntry(window),
	}})
	require.NoError(t, err)
	assert.Contains(t, string(out), "<width>80</width>")
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

func TestValidText(t *testing.T) {
	assert.True(t, validText("tab\tnew\nline é 😀"))
	assert.False(t, validText("x\x01y"))
	assert.False(t, validText("\uFFFE"))
	assert.False(t, validText("\xff"))
}
