package rcontext

// Buffer is one vertex/element buffer object's backing storage (spec.md
// §6's BindBuffer/GenBuffers/BufferData/BufferSubData surface; modeled
// alongside Table (textures) since both are small-integer-id registries
// owned by the context, per spec.md §9's "explicit registries indexed by
// small integers" design note).
type Buffer struct {
	ID   uint32
	Data []byte
}

// BufferTable is a per-context buffer object table, indexed the same way
// Table (textures) is.
type BufferTable struct {
	slots []*Buffer
	next  uint32
}

// NewBufferTable creates an empty buffer table. Id 0 is reserved
// ("unbound"), matching GL ES's convention.
func NewBufferTable() *BufferTable {
	return &BufferTable{slots: make([]*Buffer, 1), next: 1}
}

// Gen allocates n sequential buffer ids.
func (t *BufferTable) Gen(n int) []uint32 {
	ids := make([]uint32, n)
	for i := 0; i < n; i++ {
		id := t.next
		t.next++
		ids[i] = id
		t.slots = append(t.slots, &Buffer{ID: id})
	}
	return ids
}

// Get returns the buffer for id, or nil if id is 0, out of range, or
// deleted.
func (t *BufferTable) Get(id uint32) *Buffer {
	if id == 0 || int(id) >= len(t.slots) {
		return nil
	}
	return t.slots[id]
}

// Delete nulls id's slot.
func (t *BufferTable) Delete(id uint32) {
	if id == 0 || int(id) >= len(t.slots) {
		return
	}
	t.slots[id] = nil
}

// Data replaces id's entire backing store (BufferData semantics).
func (t *BufferTable) Data(id uint32, data []byte) {
	if b := t.Get(id); b != nil {
		b.Data = data
	}
}

// SubData overwrites a byte range of id's backing store (BufferSubData
// semantics). Out-of-range writes are clipped silently; callers needing
// an InvalidValue error must check bounds themselves before calling.
func (t *BufferTable) SubData(id uint32, offset int, data []byte) {
	b := t.Get(id)
	if b == nil || offset < 0 || offset >= len(b.Data) {
		return
	}
	n := copy(b.Data[offset:], data)
	_ = n
}

// BufferBindings tracks which buffer id is bound to each of the two
// binding points the core's draw front-end consults (ArrayBuffer for
// client-array pointers, ElementArrayBuffer for DrawElements indices).
type BufferBindings struct {
	Array        uint32
	ElementArray uint32
}
