package swarm

import (
	"sync"
)

// Peer fake with a mutable bitfield and a record of synthesized have-piece
// announcements.
type fakePeer struct {
	mu        sync.Mutex
	connected bool
	bitfield  Bitfield
	reported  []int
}

func newFakePeer() *fakePeer {
	return &fakePeer{connected: true}
}

func (me *fakePeer) Connected() bool {
	me.mu.Lock()
	defer me.mu.Unlock()
	return me.connected
}

func (me *fakePeer) setConnected(b bool) {
	me.mu.Lock()
	defer me.mu.Unlock()
	me.connected = b
}

func (me *fakePeer) HasPiece(i int) bool {
	me.mu.Lock()
	defer me.mu.Unlock()
	return me.bitfield.Get(i)
}

func (me *fakePeer) givePiece(i int) {
	me.mu.Lock()
	defer me.mu.Unlock()
	me.bitfield.Set(i)
}

func (me *fakePeer) ReportHavePiece(i int) {
	me.mu.Lock()
	defer me.mu.Unlock()
	me.reported = append(me.reported, i)
}

func (me *fakePeer) reportedPieces() []int {
	me.mu.Lock()
	defer me.mu.Unlock()
	return append([]int(nil), me.reported...)
}

type fakeTorrent struct {
	mu     sync.Mutex
	pieces []PieceState
	peers  []*fakePeer
	// Called at the top of AppendPeersWithoutPiece when set. Lets tests
	// park an update mid-recomputation.
	onAppendPeers func()
}

func newFakeTorrent(pieces []PieceState, peers ...*fakePeer) *fakeTorrent {
	return &fakeTorrent{pieces: pieces, peers: peers}
}

func (me *fakeTorrent) NumPieces() int {
	me.mu.Lock()
	defer me.mu.Unlock()
	return len(me.pieces)
}

func (me *fakeTorrent) Piece(i int) PieceState {
	me.mu.Lock()
	defer me.mu.Unlock()
	return me.pieces[i]
}

func (me *fakeTorrent) setPiece(i int, p PieceState) {
	me.mu.Lock()
	defer me.mu.Unlock()
	me.pieces[i] = p
}

func (me *fakeTorrent) AppendPeersWithoutPiece(i int, to []Peer) []Peer {
	me.mu.Lock()
	hook := me.onAppendPeers
	peers := append([]*fakePeer(nil), me.peers...)
	me.mu.Unlock()
	if hook != nil {
		hook()
	}
	for _, p := range peers {
		if p.Connected() && !p.HasPiece(i) {
			to = append(to, p)
		}
	}
	return to
}
