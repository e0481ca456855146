package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestState places the human at the origin, the rook at (2,0) and the
// bishop at (0,2) on an empty grid.
func newTestState() *GameState {
	return newGameState(NewEmptyGrid(), map[Role]Position{
		RoleHuman:  Origin,
		RoleRook:   {X: 2, Y: 0},
		RoleBishop: {X: 0, Y: 2},
	})
}

func apply(t *testing.T, gs *GameState, a Action) Result {
	t.Helper()
	res, err := gs.Apply(a)
	require.NoError(t, err)
	return res
}

func pass(t *testing.T, gs *GameState, roles ...Role) {
	t.Helper()
	for _, r := range roles {
		apply(t, gs, Action{Actor: r, Verb: VerbPass})
	}
}

func TestApply_TurnOrder(t *testing.T) {
	gs := newTestState()
	pass(t, gs, RoleHuman, RoleRook)
	assert.Equal(t, RoleBishop, gs.Current())
	pass(t, gs, RoleBishop)
	assert.Equal(t, RoleHuman, gs.Current())
}

func TestApply_NotYourTurn(t *testing.T) {
	gs := newTestState()
	before := gs.Clone()

	_, err := gs.Apply(Action{Actor: RoleRook, Verb: VerbMove, Direction: North})
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.Equal(t, before, gs)
}

func TestApply_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		setup func(gs *GameState)
		act   Action
		want  error
	}{
		{
			name: "unknown verb",
			act:  Action{Actor: RoleHuman, Verb: "dance"},
			want: ErrUnknownVerb,
		},
		{
			name: "move without direction",
			act:  Action{Actor: RoleHuman, Verb: VerbMove, Direction: -1},
			want: ErrInvalidDirection,
		},
		{
			name: "move into boundary",
			act:  Action{Actor: RoleHuman, Verb: VerbMove, Direction: South},
			want: ErrDoorLocked,
		},
		{
			name:  "move through locked interior door",
			setup: func(gs *GameState) { gs.Grid.SetDoor(Origin, North, true) },
			act:   Action{Actor: RoleHuman, Verb: VerbMove, Direction: North},
			want:  ErrDoorLocked,
		},
		{
			name: "lock without key",
			act:  Action{Actor: RoleHuman, Verb: VerbLockDoor, Direction: North},
			want: ErrNoKey,
		},
		{
			name: "unlock without key",
			act:  Action{Actor: RoleHuman, Verb: VerbUnlockDoor, Direction: North},
			want: ErrNoKey,
		},
		{
			name: "pickup in empty room",
			act:  Action{Actor: RoleHuman, Verb: VerbPickup},
			want: ErrNothingToPickUp,
		},
		{
			name:  "pickup wrong item",
			setup: func(gs *GameState) { gs.Grid.PlaceItem(Origin, Key) },
			act:   Action{Actor: RoleHuman, Verb: VerbPickup, Item: Screwdriver},
			want:  ErrNothingToPickUp,
		},
		{
			name: "pickup while carrying",
			setup: func(gs *GameState) {
				gs.Grid.PlaceItem(Origin, Key)
				gs.Players[RoleHuman].Inventory = []Item{Screwdriver}
			},
			act:  Action{Actor: RoleHuman, Verb: VerbPickup, Item: Key},
			want: ErrAlreadyCarrying,
		},
		{
			name: "drop with empty hands",
			act:  Action{Actor: RoleHuman, Verb: VerbDrop},
			want: ErrNothingToDrop,
		},
		{
			name:  "drop item not held",
			setup: func(gs *GameState) { gs.Players[RoleHuman].Inventory = []Item{Key} },
			act:   Action{Actor: RoleHuman, Verb: VerbDrop, Item: Screwdriver},
			want:  ErrNothingToDrop,
		},
		{
			name:  "guard pickup",
			setup: func(gs *GameState) { gs.CurrentTurn = 1 },
			act:   Action{Actor: RoleRook, Verb: VerbPickup},
			want:  ErrNoInventory,
		},
		{
			name:  "guard locks without key",
			setup: func(gs *GameState) { gs.CurrentTurn = 2 },
			act:   Action{Actor: RoleBishop, Verb: VerbLockDoor, Direction: East},
			want:  ErrNoKey,
		},
		{
			name: "disabled guard",
			setup: func(gs *GameState) {
				gs.CurrentTurn = 1
				gs.Players[RoleRook].Disabled = true
			},
			act:  Action{Actor: RoleRook, Verb: VerbPass},
			want: ErrActorDisabled,
		},
		{
			name:  "disabled guard cannot sense",
			setup: func(gs *GameState) { gs.Players[RoleBishop].Disabled = true },
			act:   Action{Actor: RoleBishop, Verb: VerbAutoSense},
			want:  ErrActorDisabled,
		},
		{
			name: "human cannot sense",
			act:  Action{Actor: RoleHuman, Verb: VerbAutoSense},
			want: ErrUnknownVerb,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := newTestState()
			if tt.setup != nil {
				tt.setup(gs)
			}
			before := gs.Clone()
			_, err := gs.Apply(tt.act)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, gs)
		})
	}
}

func TestApply_MoveClampsForRook(t *testing.T) {
	gs := newTestState()
	gs.Grid.SetDoor(Position{X: 2, Y: 0}, North, true)
	pass(t, gs, RoleHuman)

	// rook ignores doors
	apply(t, gs, Action{Actor: RoleRook, Verb: VerbMove, Direction: North})
	assert.Equal(t, Position{X: 2, Y: 1}, gs.Players[RoleRook].Position)

	pass(t, gs, RoleBishop, RoleHuman)
	gs.Players[RoleRook].Position = Position{X: 4, Y: 1}
	apply(t, gs, Action{Actor: RoleRook, Verb: VerbMove, Direction: East})
	assert.Equal(t, Position{X: 4, Y: 1}, gs.Players[RoleRook].Position)
	assert.Equal(t, RoleBishop, gs.Current())
}

func TestApply_LockUnlockRoundTrip(t *testing.T) {
	gs := newTestState()
	gs.Players[RoleHuman].Inventory = []Item{Key}
	before := gs.Grid.Clone()

	apply(t, gs, Action{Actor: RoleHuman, Verb: VerbLockDoor, Direction: East})
	assert.True(t, gs.Grid.DoorState(Origin, East).Locked)
	assert.True(t, gs.Grid.DoorState(Position{X: 1, Y: 0}, West).Locked)

	pass(t, gs, RoleRook, RoleBishop)
	apply(t, gs, Action{Actor: RoleHuman, Verb: VerbUnlockDoor, Direction: East})
	assert.Equal(t, before.Rooms, gs.Grid.Rooms)
}

func TestApply_LockBoundaryIsNoop(t *testing.T) {
	gs := newTestState()
	gs.Players[RoleHuman].Inventory = []Item{Key}

	apply(t, gs, Action{Actor: RoleHuman, Verb: VerbUnlockDoor, Direction: West})
	assert.Equal(t, Door{Locked: true, Permanent: true}, gs.Grid.DoorState(Origin, West))
}

func TestApply_PickupAndDrop(t *testing.T) {
	gs := newTestState()
	gs.Grid.PlaceItem(Origin, Key)
	gs.Grid.PlaceItem(Origin, Screwdriver)

	apply(t, gs, Action{Actor: RoleHuman, Verb: VerbPickup, Item: Key})
	assert.Equal(t, []Item{Key}, gs.Players[RoleHuman].Inventory)
	assert.Equal(t, []Item{Screwdriver}, gs.Grid.ItemsAt(Origin))

	pass(t, gs, RoleRook, RoleBishop)
	_, err := gs.Apply(Action{Actor: RoleHuman, Verb: VerbPickup})
	assert.ErrorIs(t, err, ErrAlreadyCarrying)
	assert.Len(t, gs.Players[RoleHuman].Inventory, 1)

	apply(t, gs, Action{Actor: RoleHuman, Verb: VerbDrop, Item: Key})
	assert.Empty(t, gs.Players[RoleHuman].Inventory)
	assert.Equal(t, []Item{Screwdriver, Key}, gs.Grid.ItemsAt(Origin))
}

func TestApply_SearchConsumesTurn(t *testing.T) {
	gs := newTestState()
	gs.Grid.PlaceItem(Origin, Key)

	res := apply(t, gs, Action{Actor: RoleHuman, Verb: VerbSearch})
	require.NotNil(t, res.Search)
	assert.True(t, res.TurnConsumed)
	assert.Equal(t, []Item{Key}, res.Search.Items)
	assert.Equal(t, RoleRook, gs.Current())
}

func TestApply_MapDoesNotConsumeTurn(t *testing.T) {
	gs := newTestState()
	res := apply(t, gs, Action{Actor: RoleHuman, Verb: VerbMap})
	assert.True(t, res.ShowMap)
	assert.False(t, res.TurnConsumed)
	assert.Equal(t, RoleHuman, gs.Current())
}

func TestApply_AutoSenseOutOfTurn(t *testing.T) {
	gs := newTestState()
	res := apply(t, gs, Action{Actor: RoleBishop, Verb: VerbAutoSense})
	require.NotNil(t, res.Sense)
	assert.False(t, res.TurnConsumed)
	assert.Nil(t, res.Over)
	assert.Equal(t, 0, gs.CurrentTurn)
}

func TestApply_SeekerCaptured(t *testing.T) {
	gs := newTestState()
	gs.Players[RoleBishop].Position = Position{X: 0, Y: 1}

	res := apply(t, gs, Action{Actor: RoleHuman, Verb: VerbMove, Direction: North})
	require.NotNil(t, res.Over)
	assert.Equal(t, SeekerCaptured, res.Over.Reason)
	assert.Equal(t, RoleHuman, gs.Current())
}

func TestApply_BishopCapturesOnItsMove(t *testing.T) {
	gs := newTestState()
	gs.Players[RoleBishop].Position = Position{X: 0, Y: 1}
	pass(t, gs, RoleHuman, RoleRook)

	res := apply(t, gs, Action{Actor: RoleBishop, Verb: VerbMove, Direction: South})
	require.NotNil(t, res.Over)
	assert.Equal(t, SeekerCaptured, res.Over.Reason)
}

func TestApply_ScrewdriverDisablesBishop(t *testing.T) {
	gs := newTestState()
	gs.Players[RoleHuman].Inventory = []Item{Screwdriver}
	gs.Players[RoleBishop].Position = Position{X: 0, Y: 1}

	res := apply(t, gs, Action{Actor: RoleHuman, Verb: VerbMove, Direction: North})
	assert.Nil(t, res.Over)
	assert.True(t, gs.Players[RoleBishop].Disabled)
	assert.Equal(t, RoleRook, gs.Current())

	// the bishop is skipped from now on
	pass(t, gs, RoleRook)
	assert.Equal(t, RoleHuman, gs.Current())
	pass(t, gs, RoleHuman, RoleRook)
	assert.Equal(t, RoleHuman, gs.Current())
}

func TestApply_RookNeverEndsTheGame(t *testing.T) {
	gs := newTestState()
	gs.Players[RoleRook].Position = Position{X: 1, Y: 0}

	res := apply(t, gs, Action{Actor: RoleHuman, Verb: VerbMove, Direction: East})
	assert.Nil(t, res.Over)
	assert.False(t, gs.Players[RoleRook].Disabled)

	gs.Players[RoleHuman].Inventory = []Item{Screwdriver}
	res = apply(t, gs, Action{Actor: RoleRook, Verb: VerbPass})
	assert.Nil(t, res.Over)
	assert.True(t, gs.Players[RoleRook].Disabled)
	assert.Equal(t, RoleBishop, gs.Current())

	pass(t, gs, RoleBishop)
	assert.Equal(t, RoleHuman, gs.Current())
	pass(t, gs, RoleHuman)
	assert.Equal(t, RoleBishop, gs.Current())
}

func TestApply_SeekerEscaped(t *testing.T) {
	gs := newTestState()
	gs.Players[RoleHuman].Position = Position{X: 3, Y: 4}
	gs.Players[RoleRook].Position = Goal

	res := apply(t, gs, Action{Actor: RoleHuman, Verb: VerbMove, Direction: East})
	require.NotNil(t, res.Over)
	assert.Equal(t, SeekerEscaped, res.Over.Reason)
}

func TestApply_CaptureBeatsEscape(t *testing.T) {
	gs := newTestState()
	gs.Players[RoleHuman].Position = Position{X: 3, Y: 4}
	gs.Players[RoleBishop].Position = Goal

	res := apply(t, gs, Action{Actor: RoleHuman, Verb: VerbMove, Direction: East})
	require.NotNil(t, res.Over)
	assert.Equal(t, SeekerCaptured, res.Over.Reason)
}

func TestApply_GuardsNeutralized(t *testing.T) {
	gs := newTestState()
	gs.Players[RoleHuman].Inventory = []Item{Screwdriver}
	gs.Players[RoleRook].Position = Position{X: 0, Y: 1}
	gs.Players[RoleBishop].Position = Position{X: 0, Y: 1}

	res := apply(t, gs, Action{Actor: RoleHuman, Verb: VerbMove, Direction: North})
	require.NotNil(t, res.Over)
	assert.Equal(t, GuardsNeutralized, res.Over.Reason)
	assert.True(t, gs.Players[RoleRook].Disabled)
	assert.True(t, gs.Players[RoleBishop].Disabled)
}

func TestApply_TurnNeverLandsOnDisabled(t *testing.T) {
	gs := newTestState()
	gs.Players[RoleHuman].Inventory = []Item{Screwdriver}
	gs.Players[RoleBishop].Position = Position{X: 0, Y: 1}
	apply(t, gs, Action{Actor: RoleHuman, Verb: VerbMove, Direction: North})

	for i := 0; i < 10; i++ {
		cur := gs.Players[gs.Current()]
		require.False(t, cur.Disabled)
		res := apply(t, gs, Action{Actor: cur.Role, Verb: VerbPass})
		require.Nil(t, res.Over)
	}
}
