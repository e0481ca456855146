package model

type Verb string

const (
	VerbMove       Verb = "move"
	VerbLockDoor   Verb = "lockDoor"
	VerbUnlockDoor Verb = "unlockDoor"
	VerbPickup     Verb = "pickup"
	VerbDrop       Verb = "drop"
	VerbSearch     Verb = "search"
	VerbPass       Verb = "pass"
	VerbAutoSense  Verb = "autoSense"
	VerbMap        Verb = "map"
)

type Action struct {
	Actor     Role
	Verb      Verb
	Direction Direction
	// Item filters pickup and drop; empty matches any item.
	Item Item
}

type Reason string

const (
	SeekerCaptured    Reason = "SeekerCaptured"
	SeekerEscaped     Reason = "SeekerEscaped"
	GuardsNeutralized Reason = "GuardsNeutralized"
)

type Termination struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

var (
	captured    = &Termination{SeekerCaptured, "Bishop has caught the human and the human has no screwdriver!"}
	escaped     = &Termination{SeekerEscaped, "The human has won by reaching the far corner."}
	neutralized = &Termination{GuardsNeutralized, "Both rook and bishop are disabled. The human has won the game!"}
)

// Result tells the caller what to deliver. Sense, Search and ShowMap are
// replies for the actor only; Over is set when the room must be torn down.
type Result struct {
	Sense  *AutoSenseResult
	Search *SearchResult
	Over   *Termination
	// ShowMap asks for the full state to be sent to the actor only.
	ShowMap bool
	// TurnConsumed is false for autoSense and map.
	TurnConsumed bool
}

// Apply validates and applies one action. A returned error means nothing
// changed.
func (gs *GameState) Apply(a Action) (Result, error) {
	actor, ok := gs.Players[a.Actor]
	if !ok {
		return Result{}, ErrNotYourTurn
	}
	if a.Actor.IsGuard() && actor.Disabled {
		return Result{}, ErrActorDisabled
	}
	if a.Verb == VerbAutoSense && a.Actor.Can().Senses {
		sense := gs.AutoSense(a.Actor)
		return Result{Sense: &sense}, nil
	}
	if gs.Current() != a.Actor {
		return Result{}, ErrNotYourTurn
	}

	res := Result{TurnConsumed: true}
	var err error
	switch a.Verb {
	case VerbMove:
		err = gs.move(actor, a.Direction)
	case VerbLockDoor:
		err = gs.setDoor(actor, a.Direction, true)
	case VerbUnlockDoor:
		err = gs.setDoor(actor, a.Direction, false)
	case VerbPickup:
		err = gs.pickup(actor, a.Item)
	case VerbDrop:
		err = gs.drop(actor, a.Item)
	case VerbSearch:
		search := gs.Search(a.Actor)
		res.Search = &search
	case VerbPass:
	case VerbMap:
		return Result{ShowMap: true}, nil
	default:
		err = ErrUnknownVerb
	}
	if err != nil {
		return Result{}, err
	}

	if over := gs.checkCollisions(); over != nil {
		res.Over = over
		return res, nil
	}
	res.Over = gs.advanceTurn()
	return res, nil
}

// move clamps at the grid edge. Roles that respect doors are stopped by a
// locked door first, which covers every boundary.
func (gs *GameState) move(p *Player, d Direction) error {
	if !d.Valid() {
		return ErrInvalidDirection
	}
	if p.Role.Can().RespectsDoors && gs.Grid.DoorState(p.Position, d).Locked {
		return ErrDoorLocked
	}
	if next := p.Position.Step(d); next.InBounds() {
		p.Position = next
	}
	return nil
}

func (gs *GameState) setDoor(p *Player, d Direction, locked bool) error {
	if !d.Valid() {
		return ErrInvalidDirection
	}
	if !p.Holds(Key) {
		return ErrNoKey
	}
	gs.Grid.SetDoor(p.Position, d, locked)
	return nil
}

func (gs *GameState) pickup(p *Player, want Item) error {
	if !p.Role.Can().Carries {
		return ErrNoInventory
	}
	if len(p.Inventory) > 0 {
		return ErrAlreadyCarrying
	}
	items := gs.Grid.ItemsAt(p.Position)
	if len(items) == 0 || (want != "" && items[0] != want) {
		return ErrNothingToPickUp
	}
	item, err := gs.Grid.TakeTopItem(p.Position)
	if err != nil {
		return ErrNothingToPickUp
	}
	p.Inventory = append(p.Inventory, item)
	return nil
}

func (gs *GameState) drop(p *Player, want Item) error {
	if !p.Role.Can().Carries {
		return ErrNoInventory
	}
	if len(p.Inventory) == 0 || (want != "" && p.Inventory[0] != want) {
		return ErrNothingToDrop
	}
	item := p.Inventory[0]
	p.Inventory = p.Inventory[:0]
	gs.Grid.PlaceItem(p.Position, item)
	return nil
}

// checkCollisions runs the capture, secondary guard and goal checks in that
// order. Meeting the secondary guard never ends the game.
func (gs *GameState) checkCollisions() *Termination {
	seeker := gs.seeker()
	armed := seeker.Holds(Screwdriver)
	var over *Termination
	for _, role := range gs.TurnOrder {
		guard := gs.Players[role]
		if !role.IsGuard() || guard.Position != seeker.Position {
			continue
		}
		switch {
		case armed:
			guard.Disabled = true
		case role.Can().Captures && over == nil:
			over = captured
		}
	}
	if over != nil {
		return over
	}
	if seeker.Position == Goal {
		return escaped
	}
	return nil
}

// advanceTurn moves to the next role that is able to act, at most once
// around the table. Reaching the disabled capturing guard while every other
// guard is disabled too ends the game.
// A disabled bishop alone is only skipped; the rook keeps playing.
func (gs *GameState) advanceTurn() *Termination {
	n := len(gs.TurnOrder)
	for i := 0; i < n; i++ {
		gs.CurrentTurn = (gs.CurrentTurn + 1) % n
		p := gs.Players[gs.Current()]
		if !p.Disabled {
			return nil
		}
		if p.Role.Can().Captures && gs.guardsDisabled() {
			return neutralized
		}
	}
	return nil
}

func (gs *GameState) guardsDisabled() bool {
	for _, p := range gs.Players {
		if p.Role.IsGuard() && !p.Disabled {
			return false
		}
	}
	return true
}

func (gs *GameState) seeker() *Player {
	for _, p := range gs.Players {
		if p.Role.Can().Carries {
			return p
		}
	}
	return nil
}
