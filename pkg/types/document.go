package types

// ExistingEntry is one top-level item read back from a target file.
type ExistingEntry struct {
	Key string
	// Tokens holds every textual occurrence of the key in file order.
	Tokens []string
	// Raw is plugin-private native data that lets the same plugin write the
	// entry back unchanged. Nil for formats that only need Tokens.
	Raw any
	// Opaque entries have no key: unparseable lines or structural elements
	// such as HCL blocks. They are always passed through.
	Opaque bool
}

// ExistingFileState is the ordered content of a target file as seen by its
// format plugin.
type ExistingFileState struct {
	Entries []ExistingEntry
}

// Keys returns the keys of non-opaque entries in file order.
func (s *ExistingFileState) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.Entries))
	for _, e := range s.Entries {
		if !e.Opaque {
			keys = append(keys, e.Key)
		}
	}
	return keys
}

// Lookup returns the entry for key.
func (s *ExistingFileState) Lookup(key string) (ExistingEntry, bool) {
	if s == nil {
		return ExistingEntry{}, false
	}
	for _, e := range s.Entries {
		if !e.Opaque && e.Key == key {
			return e, true
		}
	}
	return ExistingEntry{}, false
}

// EntryKind tags a merged entry with its ownership.
type EntryKind int

const (
	// Managed entries are declared in the schema and carry the desired value.
	Managed EntryKind = iota
	// Passthrough entries are copied verbatim from the existing file.
	Passthrough
)

func (k EntryKind) String() string {
	if k == Managed {
		return "managed"
	}
	return "passthrough"
}

// MergedEntry is one entry ready for serialization.
type MergedEntry struct {
	Key  string
	Kind EntryKind
	// Value is set for managed entries.
	Value Value
	// Existing is set for passthrough entries.
	Existing ExistingEntry
}

// MergedDocument is the merge engine's output.
type MergedDocument struct {
	Entries []MergedEntry
}

// ManagedEntry builds a managed entry.
func ManagedEntry(key string, v Value) MergedEntry {
	return MergedEntry{Key: key, Kind: Managed, Value: v}
}

// PassthroughEntry builds a passthrough entry from an existing one.
func PassthroughEntry(e ExistingEntry) MergedEntry {
	return MergedEntry{Key: e.Key, Kind: Passthrough, Existing: e}
}
