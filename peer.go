package swarm

// The slice of a peer connection this engine needs. Implementations are owned
// by the connection subsystem; the engine holds non-owning references and may
// use them as map keys, so implementations must be comparable (pointers are
// fine).
type Peer interface {
	Connected() bool
	// Whether the peer's reported bitfield contains the piece.
	HasPiece(pieceIndex int) bool
	// Queues an outbound have-piece message to this peer only. Must not
	// block and must not call back into the engine synchronously.
	ReportHavePiece(pieceIndex int)
}

type PeerEventKind int

const (
	PeerDisconnected PeerEventKind = iota
	PeerBitfieldReceived
	PeerHavePieceReceived
)

// Peer-state-change notification delivered by the connection layer. Events
// carry no payload beyond identity: consumers re-read live peer state, so a
// burst of events collapses into a single recomputation.
type PeerEvent struct {
	Peer Peer
	Kind PeerEventKind
}
