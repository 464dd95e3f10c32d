package merge

import (
	"fmt"
	"testing"

	"github.com/arthur-debert/confsynth/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func entry(key string, tokens ...string) types.ExistingEntry {
	return types.ExistingEntry{Key: key, Tokens: tokens}
}

func summary(doc types.MergedDocument) []string {
	out := make([]string, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		if e.Kind == types.Managed {
			out = append(out, fmt.Sprintf("M %s=%s", e.Key, e.Value.Text()))
			continue
		}
		out = append(out, fmt.Sprintf("P %s=%v", e.Key, e.Existing.Tokens))
	}
	return out
}

func TestMergeWithoutExistingFile(t *testing.T) {
	effective := types.EffectiveValues{
		"theme":     types.String("Mocha"),
		"font-size": types.Integer(12),
	}
	doc := Merge(nil, effective, []string{"theme", "font-family", "font-size"})

	assert.Equal(t, []string{"M theme=Mocha", "M font-size=12"}, summary(doc))
}

func TestMergeOverridesAndPreserves(t *testing.T) {
	existing := &types.ExistingFileState{Entries: []types.ExistingEntry{
		entry("theme", "Dark"),
		entry("custom", "x"),
	}}
	effective := types.EffectiveValues{
		"theme":     types.String("Mocha"),
		"font-size": types.Integer(12),
	}

	doc := Merge(existing, effective, []string{"theme", "font-size"})
	assert.Equal(t, []string{"M theme=Mocha", "P custom=[x]", "M font-size=12"}, summary(doc))
}

func TestManagedListReplacesAllOccurrences(t *testing.T) {
	existing := &types.ExistingFileState{Entries: []types.ExistingEntry{
		entry("keybind", "old1"),
		entry("theme", "Dark"),
		entry("keybind", "old2"),
	}}
	effective := types.EffectiveValues{"keybind": types.Strings("a", "b")}

	doc := Merge(existing, effective, []string{"keybind"})
	require.Len(t, doc.Entries, 2)
	assert.Equal(t, types.Managed, doc.Entries[0].Kind)
	assert.True(t, doc.Entries[0].Value.Equal(types.Strings("a", "b")))
	assert.Equal(t, "theme", doc.Entries[1].Key)
}

func TestDuplicatePassthroughKeysFold(t *testing.T) {
	existing := &types.ExistingFileState{Entries: []types.ExistingEntry{
		{Key: "extra", Tokens: []string{"a"}, Raw: "plugin data"},
		entry("theme", "Dark"),
		entry("extra", "b"),
	}}

	doc := Merge(existing, types.EffectiveValues{}, nil)
	assert.Equal(t, []string{"P extra=[a b]", "P theme=[Dark]"}, summary(doc))
	assert.Nil(t, doc.Entries[0].Existing.Raw)
}

func TestOpaqueEntriesPassThroughInPlace(t *testing.T) {
	existing := &types.ExistingFileState{Entries: []types.ExistingEntry{
		{Tokens: []string{"garbage"}, Opaque: true},
		entry("theme", "Dark"),
		{Tokens: []string{"more garbage"}, Opaque: true},
	}}
	doc := Merge(existing, types.EffectiveValues{"theme": types.String("Mocha")}, []string{"theme"})

	require.Len(t, doc.Entries, 3)
	assert.True(t, doc.Entries[0].Existing.Opaque)
	assert.Equal(t, types.Managed, doc.Entries[1].Kind)
	assert.True(t, doc.Entries[2].Existing.Opaque)
}

func TestUnsetFieldsAreNotWritten(t *testing.T) {
	existing := &types.ExistingFileState{Entries: []types.ExistingEntry{entry("font-family", "Iosevka")}}
	doc := Merge(existing, types.EffectiveValues{}, []string{"font-family"})

	assert.Equal(t, []string{"P font-family=[Iosevka]"}, summary(doc))
}

var keyPool = []string{"a", "b", "c", "d", "e", "f"}

func TestMergeProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		existing := &types.ExistingFileState{}
		n := rapid.IntRange(0, 10).Draw(t, "existing")
		for i := 0; i < n; i++ {
			key := rapid.SampledFrom(keyPool).Draw(t, "key")
			existing.Entries = append(existing.Entries, entry(key, fmt.Sprintf("disk%d", i)))
		}

		effective := types.EffectiveValues{}
		var order []string
		for _, key := range keyPool {
			if rapid.Bool().Draw(t, "declared-"+key) {
				order = append(order, key)
				effective[key] = types.Integer(int64(rapid.IntRange(0, 100).Draw(t, "value-"+key)))
			}
		}

		doc := Merge(existing, effective, order)

		seen := make(map[string]bool)
		for _, e := range doc.Entries {
			assert.False(t, seen[e.Key], "key %q emitted twice", e.Key)
			seen[e.Key] = true

			want, declared := effective[e.Key]
			if declared {
				assert.Equal(t, types.Managed, e.Kind)
				assert.True(t, want.Equal(e.Value), "declared value must win for %q", e.Key)
			} else {
				assert.Equal(t, types.Passthrough, e.Kind)
			}
		}
		for key := range effective {
			assert.True(t, seen[key], "declared key %q missing", key)
		}
		for _, e := range existing.Entries {
			assert.True(t, seen[e.Key], "existing key %q dropped", e.Key)
		}

		again := Merge(existing, effective, order)
		assert.Equal(t, summary(doc), summary(again))
	})
}
