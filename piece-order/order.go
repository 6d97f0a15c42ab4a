package pieceOrder

import (
	"math"
	"math/rand"
	"sort"

	"github.com/anacrolix/multiless"
)

// Snapshot of the per-piece state a Selector ranks on. Selectors only ever see
// copies, they never reach back into live torrent state.
type Piece struct {
	Index int
	// Set once by hash verification, never reverts.
	Verified bool
	// Number of peers lacking the piece, or a derived metric. +Inf when no
	// swarm availability data has arrived yet.
	Rarity float64
	// Strategy-defined composite rank weight.
	Importance float64
	// Fraction of blocks received, not necessarily verified.
	Progress float64
}

type TorrentState struct {
	HaveAnyVerified bool
}

// Ranks candidate pieces for request issuance. Order returns pieces in
// descending priority and must exclude verified pieces. Implementations must
// not mutate their inputs.
type Selector interface {
	Order(state TorrentState, pieces []Piece) []Piece
	// How many peers may hold an outstanding request for the same block at
	// once. 1 for everything except end-game.
	MaxDuplicateRequests() int
}

const (
	// Substituted for infinite rarity when ranking by availability, so pieces
	// nobody has reported yet sort below everything with real data.
	unknownRarity = 10.0

	rarestNoiseAmplitude = 0.05
	randomNoiseAmplitude = 0.2
)

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

func effectiveRarity(r float64) float64 {
	if math.IsInf(r, 1) {
		return unknownRarity
	}
	return r
}

type scoredPiece struct {
	piece Piece
	key   float64
}

// Filter verified pieces out and stable-sort the rest descending by key. Ties
// keep input order, which makes zero-noise orderings deterministic.
func orderByKey(pieces []Piece, key func(Piece) float64) []Piece {
	scored := make([]scoredPiece, 0, len(pieces))
	for _, p := range pieces {
		if p.Verified {
			continue
		}
		scored = append(scored, scoredPiece{p, key(p)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return multiless.New().Cmp(
			cmpFloat(scored[j].key, scored[i].key),
		).Less()
	})
	out := make([]Piece, len(scored))
	for i, sp := range scored {
		out[i] = sp.piece
	}
	return out
}

// Shared noise source plumbing. A nil Rand falls back to the global source.
// Avoids request herding when several peers evaluate near-identical state.
type noiseSource struct {
	Rand *rand.Rand
}

func (me *noiseSource) noise(amplitude float64) float64 {
	if amplitude == 0 {
		return 0
	}
	if me.Rand != nil {
		return me.Rand.Float64() * amplitude
	}
	return rand.Float64() * amplitude
}
