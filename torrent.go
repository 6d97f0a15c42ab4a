package swarm

import (
	pieceOrder "github.com/kalorn/swarm/piece-order"
)

// Snapshot of a piece as seen by the selectors.
type PieceState = pieceOrder.Piece

// Read-only view of a torrent's piece table and connected peers, implemented
// by the torrent bookkeeping that owns them. Modes hold one of these while
// bound.
type TorrentView interface {
	NumPieces() int
	// Snapshot of piece i. i must be in [0, NumPieces).
	Piece(i int) PieceState
	// Appends connected peers whose reported bitfield lacks piece i. The
	// caller filters further (e.g. for its own assignment bookkeeping).
	AppendPeersWithoutPiece(i int, to []Peer) []Peer
}

// Materializes the current piece table. Selector input is always a copy.
func snapshotPieces(t TorrentView, to []PieceState) []PieceState {
	n := t.NumPieces()
	to = to[:0]
	for i := 0; i < n; i++ {
		to = append(to, t.Piece(i))
	}
	return to
}

func torrentState(pieces []PieceState) (s pieceOrder.TorrentState) {
	for i := range pieces {
		if pieces[i].Verified {
			s.HaveAnyVerified = true
			break
		}
	}
	return
}
