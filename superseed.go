package swarm

import (
	"math/rand"
	"sort"
	"sync/atomic"

	"github.com/anacrolix/chansync"
	g "github.com/anacrolix/generics"
	"github.com/anacrolix/log"
	"github.com/anacrolix/missinggo/v2/panicif"
	"github.com/anacrolix/multiless"
	"github.com/anacrolix/sync"
)

// Each peer already being fed a piece deprioritizes that piece by this much,
// so super-seeding spreads distinct pieces across peers rather than piling
// onto one.
const superSeedAssignPenalty = 0.1

// Super-seeding (BEP 16): feed each peer one piece at a time, masking our
// bitfield, and only offer another piece once the peer's own bitfield shows
// it redistributed the last one. Bootstraps swarm distribution efficiently
// from a single seed, and stops a single fast peer from hoarding credit for
// every piece.
type SuperSeedMode struct {
	Logger log.Logger
	// Injectable for deterministic assignment in tests. Nil uses the global
	// source.
	Rand *rand.Rand

	mu sync.Mutex
	t  TorrentView
	// Piece each peer has been offered. A peer appears for at most one
	// piece at a time.
	assignedPeers map[Peer]int
	// piecePeerCounts[i] is the number of currently-assigned peers for
	// piece i. Maintained transactionally with assignedPeers under mu.
	piecePeerCounts []int
	stop            *chansync.SetOnce

	// Collapses concurrent Update calls to a no-op rather than queue them:
	// freshness over completeness of every triggering event.
	updating atomic.Bool
	wake     chansync.BroadcastCond

	// Scratch reused across updates, only touched while updating.
	eligible []Peer
}

func NewSuperSeedMode() *SuperSeedMode {
	return &SuperSeedMode{
		Logger: log.Default,
	}
}

func (me *SuperSeedMode) RequestAllPeersForSameBlock() bool { return false }

// Peers must believe they discovered each piece normally, so the usual
// everything-bitfield and have-piece flood are suppressed.
func (me *SuperSeedMode) MaskBitfields() bool { return true }

func (me *SuperSeedMode) Bind(t TorrentView) error {
	me.mu.Lock()
	defer me.mu.Unlock()
	if t == nil {
		me.detachLocked()
		return nil
	}
	if me.t == t {
		return nil
	}
	if me.t != nil {
		return ErrModeBound
	}
	me.t = t
	g.MakeMap(&me.assignedPeers)
	me.piecePeerCounts = make([]int, t.NumPieces())
	me.stop = new(chansync.SetOnce)
	go me.evaluator(me.stop)
	return nil
}

func (me *SuperSeedMode) Detach() {
	me.mu.Lock()
	defer me.mu.Unlock()
	me.detachLocked()
}

func (me *SuperSeedMode) detachLocked() {
	if me.t == nil {
		return
	}
	me.stop.Set()
	me.stop = nil
	me.t = nil
	me.assignedPeers = nil
	me.piecePeerCounts = nil
	me.eligible = nil
}

// Any peer event may invalidate assignments or free up an eligible peer;
// the evaluator re-runs the full recomputation, so the event itself carries
// no data. Bursts collapse into one pass.
func (me *SuperSeedMode) NotePeerEvent(PeerEvent) {
	me.wake.Broadcast()
	superSeedEventWakes.Add(1)
}

// Reacts to peer events without a polling thread. One goroutine per binding;
// stops on detach.
func (me *SuperSeedMode) evaluator(stop *chansync.SetOnce) {
	for {
		signaled := me.wake.Signaled()
		select {
		case <-stop.Done():
			return
		case <-signaled:
		}
		me.Update()
	}
}

// The piece this peer is currently assigned, if any.
func (me *SuperSeedMode) AssignedPiece(p Peer) (ret g.Option[int]) {
	me.mu.Lock()
	defer me.mu.Unlock()
	if i, ok := me.assignedPeers[p]; ok {
		ret = g.Some(i)
	}
	return
}

// Recomputes assignments. Invoked from the tick scheduler and from the
// event evaluator; overlapping calls collapse to one.
func (me *SuperSeedMode) Update() {
	if !me.updating.CompareAndSwap(false, true) {
		superSeedUpdatesCollapsed.Add(1)
		return
	}
	defer me.updating.Store(false)
	me.mu.Lock()
	defer me.mu.Unlock()
	if me.t == nil {
		return
	}
	me.sweepAssignmentsLocked()
	for _, i := range me.rankedPiecesLocked() {
		me.assignPieceLocked(i)
	}
}

// Drops assignments whose peer disconnected or whose bitfield now contains
// the assigned piece (redistribution proven, the peer is free for another
// piece on this same pass).
func (me *SuperSeedMode) sweepAssignmentsLocked() {
	for p, i := range me.assignedPeers {
		if p.Connected() && !p.HasPiece(i) {
			continue
		}
		delete(me.assignedPeers, p)
		me.piecePeerCounts[i]--
		panicif.False(me.piecePeerCounts[i] >= 0)
		me.Logger.Levelf(log.Debug, "released piece %v from %v (connected=%v, redistributed=%v)",
			i, p, p.Connected(), p.HasPiece(i))
	}
}

// Verified pieces ordered descending by rarity less the assignment penalty.
// Only verified pieces can be offered: we must actually have the data.
func (me *SuperSeedMode) rankedPiecesLocked() []int {
	type scored struct {
		index int
		key   float64
	}
	var pieces []scored
	n := me.t.NumPieces()
	for i := 0; i < n; i++ {
		p := me.t.Piece(i)
		if !p.Verified {
			continue
		}
		pieces = append(pieces, scored{
			index: i,
			key:   p.Rarity - superSeedAssignPenalty*float64(me.piecePeerCounts[i]),
		})
	}
	sort.Slice(pieces, func(i, j int) bool {
		return multiless.New().Cmp(
			cmpFloat(pieces[j].key, pieces[i].key),
		).Int(
			pieces[i].index, pieces[j].index,
		).Less()
	})
	ret := make([]int, len(pieces))
	for i, p := range pieces {
		ret[i] = p.index
	}
	return ret
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Offers piece i to one random connected peer that lacks it and holds no
// assignment. The synthesized have-piece makes the peer request the piece as
// if it discovered it normally.
func (me *SuperSeedMode) assignPieceLocked(i int) {
	me.eligible = me.t.AppendPeersWithoutPiece(i, me.eligible[:0])
	eligible := me.eligible[:0]
	for _, p := range me.eligible {
		if !p.Connected() {
			continue
		}
		if _, ok := me.assignedPeers[p]; ok {
			continue
		}
		eligible = append(eligible, p)
	}
	if len(eligible) == 0 {
		return
	}
	p := eligible[me.intn(len(eligible))]
	p.ReportHavePiece(i)
	me.assignedPeers[p] = i
	me.piecePeerCounts[i]++
	superSeedAssignments.Add(1)
	me.Logger.Levelf(log.Debug, "assigned piece %v to %v (%v eligible)", i, p, len(eligible))
}

func (me *SuperSeedMode) intn(n int) int {
	if me.Rand != nil {
		return me.Rand.Intn(n)
	}
	return rand.Intn(n)
}
