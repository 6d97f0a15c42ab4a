package swarm

import (
	"math"
	"testing"

	qt "github.com/go-quicktest/qt"

	pieceOrder "github.com/kalorn/swarm/piece-order"
)

type recordingPlanner struct {
	ranked  [][]PieceState
	maxDups []int
}

func (me *recordingPlanner) PlanRequests(ranked []PieceState, maxDuplicateRequests int) {
	me.ranked = append(me.ranked, append([]PieceState(nil), ranked...))
	me.maxDups = append(me.maxDups, maxDuplicateRequests)
}

func TestNormalModeFlags(t *testing.T) {
	m := NewNormalMode()
	qt.Check(t, qt.IsFalse(m.RequestAllPeersForSameBlock()))
	qt.Check(t, qt.IsFalse(m.MaskBitfields()))
}

func TestEndGameModeFlags(t *testing.T) {
	m := NewEndGameMode()
	qt.Check(t, qt.IsTrue(m.RequestAllPeersForSameBlock()))
	qt.Check(t, qt.IsFalse(m.MaskBitfields()))
}

func TestNormalModePlansRankedRequests(t *testing.T) {
	tor := newFakeTorrent([]PieceState{
		{Index: 0, Rarity: 2},
		{Index: 1, Rarity: 5},
		{Index: 2, Rarity: 1, Progress: 0.5},
	})
	planner := new(recordingPlanner)
	m := NewNormalMode()
	m.Planner = planner
	qt.Assert(t, qt.IsNil(m.Bind(tor)))
	defer m.Detach()

	m.Update()
	qt.Assert(t, qt.HasLen(planner.ranked, 1))
	qt.Assert(t, qt.DeepEquals(planner.maxDups, []int{1}))
	// No verified piece yet: the availability-biased phase is fully
	// deterministic. Keys are Progress + (1 - rarity).
	qt.Assert(t, qt.Equals(planner.ranked[0][0].Index, 2))
	qt.Assert(t, qt.Equals(planner.ranked[0][1].Index, 0))
	qt.Assert(t, qt.Equals(planner.ranked[0][2].Index, 1))
}

func TestEndGameModeUnboundedDuplication(t *testing.T) {
	tor := newFakeTorrent([]PieceState{
		{Index: 0, Importance: 1},
		{Index: 1, Importance: 2},
	})
	planner := new(recordingPlanner)
	m := NewEndGameMode()
	m.Planner = planner
	qt.Assert(t, qt.IsNil(m.Bind(tor)))
	defer m.Detach()

	m.Update()
	qt.Assert(t, qt.DeepEquals(planner.maxDups, []int{math.MaxInt}))
	qt.Assert(t, qt.Equals(planner.ranked[0][0].Index, 1))
}

func TestSelectorModeBindContract(t *testing.T) {
	t1 := newFakeTorrent(nil)
	t2 := newFakeTorrent(nil)
	m := NewNormalMode()
	qt.Assert(t, qt.IsNil(m.Bind(t1)))
	qt.Assert(t, qt.IsNil(m.Bind(t1)))
	qt.Assert(t, qt.ErrorIs(m.Bind(t2), ErrModeBound))
	qt.Assert(t, qt.IsNil(m.Bind(nil)))
	qt.Assert(t, qt.IsNil(m.Bind(t2)))
}

func TestSelectorModeUpdateUnboundIsNoop(t *testing.T) {
	planner := new(recordingPlanner)
	m := NewNormalMode()
	m.Planner = planner
	m.Update()
	qt.Assert(t, qt.HasLen(planner.ranked, 0))
}

func TestNormalModeCustomSelector(t *testing.T) {
	tor := newFakeTorrent([]PieceState{
		{Index: 0, Progress: 0.1},
		{Index: 1, Progress: 0.9},
	})
	planner := new(recordingPlanner)
	m := NewNormalMode()
	m.SetSelector(pieceOrder.NewRandom())
	m.Planner = planner
	qt.Assert(t, qt.IsNil(m.Bind(tor)))
	defer m.Detach()
	m.Update()
	qt.Assert(t, qt.HasLen(planner.ranked, 1))
	qt.Assert(t, qt.HasLen(planner.ranked[0], 2))
}
