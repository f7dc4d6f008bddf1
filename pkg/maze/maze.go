// Package maze holds the square wall/path grids the game is played on and
// the generator that carves them.
package maze

import (
	"errors"
	"fmt"
)

// Cell is a single grid square. The numeric values are part of the wire
// format: clients render 1 as wall and 0 as path.
type Cell int

const (
	Path Cell = 0
	Wall Cell = 1
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) Step(d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

var Directions = []Direction{Up, Down, Left, Right}

// ParseDirection validates a direction received from a client.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Up, Down, Left, Right:
		return d, nil
	default:
		return "", fmt.Errorf("unknown direction: %q", s)
	}
}

func (d Direction) Delta() (int, int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	default:
		return 0, 0
	}
}

// Maze is indexed Cells[y][x].
type Maze struct {
	Size  int      `json:"size"`
	Cells [][]Cell `json:"cells"`
}

// New returns a size x size maze made entirely of walls.
func New(size int) *Maze {
	cells := make([][]Cell, size)
	for y := range cells {
		row := make([]Cell, size)
		for x := range row {
			row[x] = Wall
		}
		cells[y] = row
	}
	return &Maze{Size: size, Cells: cells}
}

func (m *Maze) InBounds(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.Size && p.Y < m.Size
}

// IsPath reports whether p is inside the maze and open.
func (m *Maze) IsPath(p Position) bool {
	return m.InBounds(p) && m.Cells[p.Y][p.X] == Path
}

// StartTopLeft is the first joiner's corner.
func (m *Maze) StartTopLeft() Position {
	return Position{X: 1, Y: 1}
}

// StartBottomRight is the second joiner's corner.
func (m *Maze) StartBottomRight() Position {
	return Position{X: m.Size - 2, Y: m.Size - 2}
}

func (m *Maze) Clone() *Maze {
	if m == nil {
		return nil
	}
	cells := make([][]Cell, len(m.Cells))
	for y, row := range m.Cells {
		cells[y] = append([]Cell(nil), row...)
	}
	return &Maze{Size: m.Size, Cells: cells}
}

// OpenCells lists every path cell in row-major order.
func (m *Maze) OpenCells() []Position {
	var open []Position
	for y, row := range m.Cells {
		for x, c := range row {
			if c == Path {
				open = append(open, Position{X: x, Y: y})
			}
		}
	}
	return open
}

// Reachable flood fills from p across path cells and returns the visited set
// indexed [y][x]. A wall or out of bounds origin reaches nothing.
func (m *Maze) Reachable(p Position) [][]bool {
	seen := make([][]bool, m.Size)
	for y := range seen {
		seen[y] = make([]bool, m.Size)
	}
	if !m.IsPath(p) {
		return seen
	}
	seen[p.Y][p.X] = true
	queue := []Position{p}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range Directions {
			next := cur.Step(d)
			if !m.IsPath(next) || seen[next.Y][next.X] {
				continue
			}
			seen[next.Y][next.X] = true
			queue = append(queue, next)
		}
	}
	return seen
}

func (m *Maze) Connected(a, b Position) bool {
	if !m.IsPath(a) || !m.IsPath(b) {
		return false
	}
	return m.Reachable(a)[b.Y][b.X]
}

var ErrMalformed = errors.New("malformed maze")

// Validate checks a maze that did not come from the generator, such as one
// read back from storage: square cells of Size, only wall or path values, a
// solid border, and open, connected start corners.
func (m *Maze) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: missing", ErrMalformed)
	}
	if m.Size < MinSize || m.Size > MaxSize {
		return fmt.Errorf("%w: size %d out of range", ErrMalformed, m.Size)
	}
	if len(m.Cells) != m.Size {
		return fmt.Errorf("%w: %d rows for size %d", ErrMalformed, len(m.Cells), m.Size)
	}
	last := m.Size - 1
	for y, row := range m.Cells {
		if len(row) != m.Size {
			return fmt.Errorf("%w: row %d has %d cells for size %d", ErrMalformed, y, len(row), m.Size)
		}
		for x, c := range row {
			if c != Path && c != Wall {
				return fmt.Errorf("%w: unknown cell %d at (%d,%d)", ErrMalformed, c, x, y)
			}
			border := x == 0 || y == 0 || x == last || y == last
			if border && c != Wall {
				return fmt.Errorf("%w: open border at (%d,%d)", ErrMalformed, x, y)
			}
		}
	}
	if !m.Connected(m.StartTopLeft(), m.StartBottomRight()) {
		return fmt.Errorf("%w: start corners are not connected", ErrMalformed)
	}
	return nil
}
