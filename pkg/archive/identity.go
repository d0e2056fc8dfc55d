package archive

import (
	"reflect"
	"strconv"
	"strings"
)

// Reference markers. A first occurrence is written as "#<slot>" followed by
// the object, later occurrences as "@<slot>" alone, and a nil reference as "~".
const (
	markNew  = '#'
	markBack = '@'
	markNil  = "~"
)

// identityTable assigns slots on the write path. Objects are keyed by
// pointer identity, never by value, so two distinct objects with equal
// fields always get separate slots.
type identityTable struct {
	ids  map[any]int
	next int
}

func newIdentityTable() *identityTable {
	return &identityTable{ids: make(map[any]int)}
}

// intern returns the slot for obj, allocating the next one on first sight.
func (t *identityTable) intern(obj any) (seen bool, slot int) {
	if id, ok := t.ids[obj]; ok {
		return true, id
	}
	slot = t.next
	t.ids[obj] = slot
	t.next++
	return false, slot
}

// slotTable mirrors identityTable on the read path. Slot ids are the
// positions of objects in first-visit order, so a new slot must always
// equal the number of slots seen so far.
type slotTable struct {
	objs []any
}

// claim registers obj under slot. It must be called before the object's
// fields are decoded, and fails if slot is not the next one in order.
func (t *slotTable) claim(slot int, obj any) bool {
	if slot != len(t.objs) {
		return false
	}
	t.objs = append(t.objs, obj)
	return true
}

// resolve returns the object previously claimed under slot.
func (t *slotTable) resolve(slot int) (any, bool) {
	if slot < 0 || slot >= len(t.objs) {
		return nil, false
	}
	return t.objs[slot], true
}

func (t *slotTable) len() int { return len(t.objs) }

func formatSlot(mark byte, slot int) string {
	return string(mark) + strconv.Itoa(slot)
}

// parseSlot splits a reference token into its marker and slot id.
func parseSlot(tok string) (mark byte, slot int, ok bool) {
	if len(tok) < 2 || (tok[0] != markNew && tok[0] != markBack) {
		return 0, 0, false
	}
	if strings.HasPrefix(tok[1:], "+") || strings.HasPrefix(tok[1:], "-") {
		return 0, 0, false
	}
	n, err := strconv.Atoi(tok[1:])
	if err != nil {
		return 0, 0, false
	}
	return tok[0], n, true
}

// isNil reports whether v is nil or a typed nil pointer.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// isPointer reports whether v has pointer identity.
func isPointer(v any) bool {
	return reflect.ValueOf(v).Kind() == reflect.Pointer
}
