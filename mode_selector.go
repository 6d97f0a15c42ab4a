package swarm

import (
	"github.com/anacrolix/sync"

	pieceOrder "github.com/kalorn/swarm/piece-order"
)

// Shared implementation for the modes that just rank pieces and hand the
// ranking to the request planner (Normal and EndGame).
type selectorMode struct {
	selector pieceOrder.Selector
	// May be nil, in which case rankings are computed and dropped (useful
	// before the issuance surface is wired up).
	Planner RequestPlanner

	mu sync.Mutex
	t  TorrentView
	// Reused between ticks to keep per-tick allocation flat.
	scratch []PieceState
}

func (me *selectorMode) Bind(t TorrentView) error {
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
	return nil
}

func (me *selectorMode) Detach() {
	me.mu.Lock()
	defer me.mu.Unlock()
	me.detachLocked()
}

func (me *selectorMode) detachLocked() {
	me.t = nil
	me.scratch = nil
}

func (me *selectorMode) Update() {
	me.mu.Lock()
	defer me.mu.Unlock()
	if me.t == nil {
		return
	}
	me.scratch = snapshotPieces(me.t, me.scratch)
	ranked := me.selector.Order(torrentState(me.scratch), me.scratch)
	if me.Planner != nil {
		me.Planner.PlanRequests(ranked, me.selector.MaxDuplicateRequests())
	}
}

// Selection is recomputed wholesale every tick, so peer events don't need to
// force anything here.
func (me *selectorMode) NotePeerEvent(PeerEvent) {}

// Steady-state downloading. Pieces the swarm hasn't reported on yet are
// deprioritized until the first piece verifies, then rarest-first takes over.
type NormalMode struct {
	selectorMode
}

func NewNormalMode() *NormalMode {
	m := new(NormalMode)
	m.selector = pieceOrder.NewAvailableThenRarestFirst()
	return m
}

// Replaces the default piece selector. Not safe once the mode is in use.
func (me *NormalMode) SetSelector(s pieceOrder.Selector) {
	me.selector = s
}

func (me *NormalMode) RequestAllPeersForSameBlock() bool { return false }

func (me *NormalMode) MaskBitfields() bool { return false }

// Final download phase: remaining blocks are requested redundantly from every
// eligible peer so a slow holder can't stall completion. First response wins,
// duplicates are discarded by the receiving side.
type EndGameMode struct {
	selectorMode
}

func NewEndGameMode() *EndGameMode {
	m := new(EndGameMode)
	m.selector = pieceOrder.NewEndGame()
	return m
}

func (me *EndGameMode) RequestAllPeersForSameBlock() bool { return true }

func (me *EndGameMode) MaskBitfields() bool { return false }
