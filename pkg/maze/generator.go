package maze

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

const (
	// MinSize is the smallest maze with two distinct start corners and a seed cell.
	MinSize = 5
	// MaxSize bounds memory for a single room.
	MaxSize = 101
)

var ErrInvalidSize = errors.New("invalid maze size")

var defaultGenerator = NewGenerator(time.Now().UnixNano())

// Generate carves a maze using the package level generator.
func Generate(size int) (*Maze, error) {
	return defaultGenerator.Generate(size)
}

// Generator carves mazes from a private random source. It is safe for
// concurrent use.
type Generator struct {
	lock sync.Mutex
	rng  *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate returns a size x size maze whose border is solid wall and whose
// two start corners are open and connected. Every path cell is reachable
// from every other.
func (g *Generator) Generate(size int) (*Maze, error) {
	if size < MinSize || size > MaxSize {
		return nil, ErrInvalidSize
	}

	g.lock.Lock()
	defer g.lock.Unlock()

	c := newCarver(size, g.rng)
	c.carveSeeds()

	start := Position{X: 2, Y: 2}
	end := Position{X: c.n - 3, Y: c.n - 3}
	c.open(start)
	c.open(end)
	c.bridge(end)

	c.repair(start)
	c.addLoops(size / 3)

	return c.trim(), nil
}

// carver works on a grid one cell larger than the requested maze on every
// side. Lattice cells sit on even coordinates of that grid, which become the
// odd coordinates of the trimmed maze.
type carver struct {
	rng     *rand.Rand
	size    int
	n       int
	cells   [][]Cell
	visited [][]bool
}

func newCarver(size int, rng *rand.Rand) *carver {
	n := size + 2
	cells := make([][]Cell, n)
	visited := make([][]bool, n)
	for y := 0; y < n; y++ {
		cells[y] = make([]Cell, n)
		visited[y] = make([]bool, n)
		for x := 0; x < n; x++ {
			cells[y][x] = Wall
		}
	}
	return &carver{rng: rng, size: size, n: n, cells: cells, visited: visited}
}

func (c *carver) interior(p Position) bool {
	return p.X >= 2 && p.Y >= 2 && p.X <= c.n-3 && p.Y <= c.n-3
}

func (c *carver) lattice(p Position) bool {
	return c.interior(p) && p.X%2 == 0 && p.Y%2 == 0
}

func (c *carver) isOpen(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < c.n && p.Y < c.n && c.cells[p.Y][p.X] == Path
}

func (c *carver) open(p Position) {
	c.cells[p.Y][p.X] = Path
}

func (c *carver) latticeCells() []Position {
	var cells []Position
	for y := 2; y <= c.n-3; y += 2 {
		for x := 2; x <= c.n-3; x += 2 {
			cells = append(cells, Position{X: x, Y: y})
		}
	}
	return cells
}

// carveSeeds grows several depth first trees, each from a random unvisited
// lattice cell and each limited to an equal share of the lattice.
func (c *carver) carveSeeds() {
	lattice := c.latticeCells()
	seeds := 1 + c.size/10
	budget := (len(lattice) + seeds - 1) / seeds

	for i := 0; i < seeds; i++ {
		var candidates []Position
		for _, p := range lattice {
			if !c.visited[p.Y][p.X] {
				candidates = append(candidates, p)
			}
		}
		if len(candidates) == 0 {
			return
		}
		c.carve(candidates[c.rng.Intn(len(candidates))], budget)
	}
}

func (c *carver) carve(from Position, budget int) {
	c.open(from)
	c.visited[from.Y][from.X] = true
	carved := 1

	stack := []Position{from}
	for len(stack) > 0 && carved < budget {
		cur := stack[len(stack)-1]
		next, ok := c.randomUnvisitedNeighbor(cur)
		if !ok {
			stack = stack[:len(stack)-1]
			continue
		}
		c.open(midpoint(cur, next))
		c.open(next)
		c.visited[next.Y][next.X] = true
		carved++
		stack = append(stack, next)
	}
}

func (c *carver) randomUnvisitedNeighbor(p Position) (Position, bool) {
	var options []Position
	for _, d := range Directions {
		dx, dy := d.Delta()
		next := Position{X: p.X + 2*dx, Y: p.Y + 2*dy}
		if c.lattice(next) && !c.visited[next.Y][next.X] {
			options = append(options, next)
		}
	}
	if len(options) == 0 {
		return Position{}, false
	}
	return options[c.rng.Intn(len(options))], true
}

// bridge joins an off-lattice cell (the far corner of an even sized maze)
// to the nearest lattice cell up and to the left of it.
func (c *carver) bridge(p Position) {
	target := Position{X: p.X - p.X%2, Y: p.Y - p.Y%2}
	for p.X != target.X {
		p.X--
		c.open(p)
	}
	for p.Y != target.Y {
		p.Y--
		c.open(p)
	}
}

// repair connects every lattice cell to the region reachable from start,
// opening the wall between a stranded cell and a reached neighbor until
// nothing changes.
func (c *carver) repair(start Position) {
	reached := make([][]bool, c.n)
	for y := range reached {
		reached[y] = make([]bool, c.n)
	}
	c.flood(reached, start)

	lattice := c.latticeCells()
	for changed := true; changed; {
		changed = false
		for _, p := range lattice {
			if reached[p.Y][p.X] {
				continue
			}
			for _, d := range Directions {
				dx, dy := d.Delta()
				q := Position{X: p.X + 2*dx, Y: p.Y + 2*dy}
				if !c.lattice(q) || !reached[q.Y][q.X] {
					continue
				}
				c.open(p)
				c.open(midpoint(p, q))
				c.flood(reached, midpoint(p, q))
				changed = true
				break
			}
		}
	}
}

func (c *carver) flood(reached [][]bool, from Position) {
	if !c.isOpen(from) || reached[from.Y][from.X] {
		return
	}
	reached[from.Y][from.X] = true
	stack := []Position{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range Directions {
			next := cur.Step(d)
			if !c.isOpen(next) || reached[next.Y][next.X] {
				continue
			}
			reached[next.Y][next.X] = true
			stack = append(stack, next)
		}
	}
}

// addLoops knocks out up to count walls that separate two open lattice
// cells. A wall qualifies only while its four diagonal neighbors are all
// wall so openings never merge into rooms.
func (c *carver) addLoops(count int) {
	for attempts := 0; count > 0 && attempts < count*20; attempts++ {
		p := Position{X: 2 + c.rng.Intn(c.n-4), Y: 2 + c.rng.Intn(c.n-4)}
		if c.isOpen(p) || !c.separatesLattice(p) || !c.diagonalsClosed(p) {
			continue
		}
		c.open(p)
		count--
	}
}

func (c *carver) separatesLattice(p Position) bool {
	horizontal := Position{X: p.X - 1, Y: p.Y}
	vertical := Position{X: p.X, Y: p.Y - 1}
	switch {
	case c.lattice(horizontal) && c.lattice(Position{X: p.X + 1, Y: p.Y}):
		return c.isOpen(horizontal) && c.isOpen(Position{X: p.X + 1, Y: p.Y})
	case c.lattice(vertical) && c.lattice(Position{X: p.X, Y: p.Y + 1}):
		return c.isOpen(vertical) && c.isOpen(Position{X: p.X, Y: p.Y + 1})
	default:
		return false
	}
}

func (c *carver) diagonalsClosed(p Position) bool {
	for _, dy := range []int{-1, 1} {
		for _, dx := range []int{-1, 1} {
			if c.isOpen(Position{X: p.X + dx, Y: p.Y + dy}) {
				return false
			}
		}
	}
	return true
}

func (c *carver) trim() *Maze {
	m := New(c.size)
	for y := 0; y < c.size; y++ {
		copy(m.Cells[y], c.cells[y+1][1:c.size+1])
	}
	return m
}

func midpoint(a, b Position) Position {
	return Position{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
