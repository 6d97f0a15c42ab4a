package pieceOrder

import (
	"math"
)

// Ranks by Importance with a little uniform noise per piece per call to break
// ties between peers evaluating similar swarm state.
type RarestFirst struct {
	noiseSource
	// Overrides the default when non-zero. Tests set this to kill the noise
	// term entirely via NewDeterministicRarestFirst.
	NoiseAmplitude float64
	zeroNoise      bool
}

func NewRarestFirst() *RarestFirst {
	return &RarestFirst{}
}

// A RarestFirst whose ranking is a pure function of Importance.
func NewDeterministicRarestFirst() *RarestFirst {
	return &RarestFirst{zeroNoise: true}
}

func (me *RarestFirst) amplitude() float64 {
	if me.zeroNoise {
		return 0
	}
	if me.NoiseAmplitude != 0 {
		return me.NoiseAmplitude
	}
	return rarestNoiseAmplitude
}

func (me *RarestFirst) Order(_ TorrentState, pieces []Piece) []Piece {
	amp := me.amplitude()
	return orderByKey(pieces, func(p Piece) float64 {
		return p.Importance + me.noise(amp)
	})
}

func (me *RarestFirst) MaxDuplicateRequests() int { return 1 }

// Until the first piece verifies, biases selection toward high-availability
// pieces so the client has something to reciprocate with quickly. After that
// it is exactly RarestFirst.
type AvailableThenRarestFirst struct {
	RarestFirst
}

func NewAvailableThenRarestFirst() *AvailableThenRarestFirst {
	return &AvailableThenRarestFirst{}
}

func (me *AvailableThenRarestFirst) Order(state TorrentState, pieces []Piece) []Piece {
	if state.HaveAnyVerified {
		return me.RarestFirst.Order(state, pieces)
	}
	return orderByKey(pieces, func(p Piece) float64 {
		return p.Progress + (1 - effectiveRarity(p.Rarity))
	})
}

// Ignores rarity entirely. Progress plus a large noise term.
type Random struct {
	noiseSource
}

func NewRandom() *Random {
	return &Random{}
}

func (me *Random) Order(_ TorrentState, pieces []Piece) []Piece {
	return orderByKey(pieces, func(p Piece) float64 {
		return p.Progress + me.noise(randomNoiseAmplitude)
	})
}

func (me *Random) MaxDuplicateRequests() int { return 1 }

// Deterministic Importance ordering for the final pieces. Reports unbounded
// request duplication: every eligible peer gets asked for the same block and
// the first response wins.
type EndGame struct{}

func NewEndGame() *EndGame {
	return &EndGame{}
}

func (me *EndGame) Order(_ TorrentState, pieces []Piece) []Piece {
	return orderByKey(pieces, func(p Piece) float64 {
		return p.Importance
	})
}

func (me *EndGame) MaxDuplicateRequests() int { return math.MaxInt }
