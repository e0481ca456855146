package model

import (
	"bufio"
	"fmt"
	"io"
)

// Layout is a fixed board read from a text file. Every room dealt from it
// starts from a deep copy.
type Layout struct {
	Grid   *Grid
	Starts map[Role]Position
}

var startMarks = map[byte]Role{
	'H': RoleHuman,
	'R': RoleRook,
	'B': RoleBishop,
}

// ReadLayout parses GridSize cell lines interleaved with wall lines, the
// first line being y=0.
//
//	cell line: even columns are rooms ('.' empty, 'K' key, 'S' screwdriver,
//	           'H', 'R', 'B' start positions), odd columns are the east door
//	           of the room on the left (' ' open, ':' locked)
//	wall line: even columns are the north door of the room below
//	           (' ' open, '~' locked)
func ReadLayout(reader io.Reader) (*Layout, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanLines)
	l := &Layout{Grid: NewEmptyGrid(), Starts: make(map[Role]Position)}
	lines := 0
	for scanner.Scan() {
		s := scanner.Text()
		if lines >= 2*GridSize-1 {
			if s == "" {
				continue
			}
			return nil, fmt.Errorf("layout line %d: too many lines", lines+1)
		}
		y := lines / 2
		if lines%2 == 0 {
			// real line
			for x := 0; x < GridSize; x++ {
				pos := Position{X: x, Y: y}
				switch c := charAt(s, 2*x); c {
				case '.', ' ':
				case 'K':
					l.Grid.PlaceItem(pos, Key)
				case 'S':
					l.Grid.PlaceItem(pos, Screwdriver)
				case 'H', 'R', 'B':
					role := startMarks[c]
					if _, dup := l.Starts[role]; dup {
						return nil, fmt.Errorf("layout line %d: %s placed twice", lines+1, role)
					}
					l.Starts[role] = pos
				default:
					return nil, fmt.Errorf("layout line %d: unknown room %q", lines+1, c)
				}
				if x == GridSize-1 {
					continue
				}
				switch c := charAt(s, 2*x+1); c {
				case ':':
					l.Grid.SetDoor(pos, East, true)
				case ' ':
				default:
					return nil, fmt.Errorf("layout line %d: unknown door %q", lines+1, c)
				}
			}
		} else {
			// wall between y and y+1
			for x := 0; x < GridSize; x++ {
				switch c := charAt(s, 2*x); c {
				case '~':
					l.Grid.SetDoor(Position{X: x, Y: y}, North, true)
				case ' ':
				default:
					return nil, fmt.Errorf("layout line %d: unknown wall %q", lines+1, c)
				}
			}
		}
		lines++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	if lines != 2*GridSize-1 {
		return nil, fmt.Errorf("layout has %d lines, want %d", lines, 2*GridSize-1)
	}
	for _, role := range Roles {
		if _, ok := l.Starts[role]; !ok {
			return nil, fmt.Errorf("layout has no start for %s", role)
		}
	}
	return l, nil
}

func charAt(s string, i int) byte {
	if i < len(s) {
		return s[i]
	}
	return ' '
}

func (l *Layout) NewGameState() *GameState {
	starts := make(map[Role]Position, len(l.Starts))
	for role, pos := range l.Starts {
		starts[role] = pos
	}
	return newGameState(l.Grid.Clone(), starts)
}
