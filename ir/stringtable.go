package ir

// StringTable is an append-only, content-deduplicating arena of
// NUL-terminated strings. Offset 0 always holds the sentinel empty string
//.
type StringTable struct {
	bytes   []byte
	offsets map[string]uint32
}

// NewStringTable returns a table seeded with the offset-0 empty string.
func NewStringTable() *StringTable {
	t := &StringTable{
		bytes:   []byte{0},
		offsets: make(map[string]uint32),
	}
	t.offsets[""] = 0
	return t
}

// Add inserts s if not already present and returns its stable offset.
// add(t, s1) == add(t, s2) iff s1 == s2 (deduplication).
func (t *StringTable) Add(s string) uint32 {
	if off, ok := t.offsets[s]; ok {
		return off
	}
	off := uint32(len(t.bytes))
	t.bytes = append(t.bytes, []byte(s)...)
	t.bytes = append(t.bytes, 0)
	t.offsets[s] = off
	return off
}

// Get returns the string stored at offset off.
func (t *StringTable) Get(off uint32) (string, error) {
	if int(off) >= len(t.bytes) {
		return "", Errf(KindBufferOverflow, "string offset %d out of range", off)
	}
	end := off
	for end < uint32(len(t.bytes)) && t.bytes[end] != 0 {
		end++
	}
	if end >= uint32(len(t.bytes)) {
		return "", Errf(KindCorruptData, "unterminated string at offset %d", off)
	}
	return string(t.bytes[off:end]), nil
}

// Bytes returns the raw backing buffer (for serialization).
func (t *StringTable) Bytes() []byte { return t.bytes }

// Len returns the size of the backing buffer in bytes.
func (t *StringTable) Len() int { return len(t.bytes) }

// LoadStringTable reconstructs a StringTable from raw NUL-separated bytes
// (as read from a binary container or object file).
func LoadStringTable(raw []byte) (*StringTable, error) {
	if len(raw) == 0 || raw[0] != 0 {
		return nil, Errf(KindCorruptData, "string table missing sentinel empty string at offset 0")
	}
	t := &StringTable{
		bytes:   append([]byte(nil), raw...),
		offsets: make(map[string]uint32),
	}
	off := uint32(0)
	for off < uint32(len(t.bytes)) {
		start := off
		for off < uint32(len(t.bytes)) && t.bytes[off] != 0 {
			off++
		}
		if off >= uint32(len(t.bytes)) {
			return nil, Errf(KindCorruptData, "unterminated string at offset %d", start)
		}
		t.offsets[string(t.bytes[start:off])] = start
		off++ // skip NUL
	}
	return t, nil
}
