package swarm

import (
	"github.com/RoaringBitmap/roaring"
)

// Set of piece indices, backed by a roaring bitmap. Used for peer bitfields
// by collaborator implementations and throughout the tests. Not safe for
// concurrent mutation.
type Bitfield struct {
	bm roaring.Bitmap
}

func (me *Bitfield) Set(i int) {
	me.bm.Add(uint32(i))
}

func (me *Bitfield) Clear(i int) {
	me.bm.Remove(uint32(i))
}

func (me *Bitfield) Get(i int) bool {
	return me.bm.Contains(uint32(i))
}

func (me *Bitfield) Len() int {
	return int(me.bm.GetCardinality())
}

func (me *Bitfield) Clone() *Bitfield {
	return &Bitfield{*me.bm.Clone()}
}
