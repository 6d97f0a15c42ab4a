package swarm

import (
	"errors"
)

// Returned when binding a mode that is already bound to a different torrent.
var ErrModeBound = errors.New("mode already bound to another torrent")

// A torrent's interaction policy. Exactly one mode is active per torrent at a
// time; an external policy switches between them as the swarm state evolves
// (e.g. to end-game when few unverified pieces remain).
type Mode interface {
	// Whether request issuance may ask every eligible peer for the same
	// outstanding block, racing completion.
	RequestAllPeersForSameBlock() bool
	// Whether outbound have-piece announcements are suppressed and a
	// leecher-like bitfield presented (super-seeding).
	MaskBitfields() bool
	// Associates the mode with a torrent. Binding while bound to a
	// different torrent returns ErrModeBound; rebinding the same torrent is
	// a no-op; a nil view detaches and clears per-torrent state.
	Bind(t TorrentView) error
	Detach()
	// Invoked once per scheduling tick.
	Update()
	// Peer-state-change notification from the connection layer. Must not
	// block.
	NotePeerEvent(ev PeerEvent)
}

// Issues and withdraws block requests to peers given a fresh piece ranking.
// Implemented by the peer-request bookkeeping outside this engine, which
// consults maxDuplicateRequests before asking several peers for one block.
type RequestPlanner interface {
	PlanRequests(ranked []PieceState, maxDuplicateRequests int)
}
