package maze

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate(t *testing.T) {
	g := NewGenerator(42)
	for size := MinSize; size <= 41; size++ {
		for i := 0; i < 5; i++ {
			t.Run(fmt.Sprintf("size %d run %d", size, i), func(t *testing.T) {
				m, err := g.Generate(size)
				require.NoError(t, err)
				require.Equal(t, size, m.Size)
				require.Len(t, m.Cells, size)

				for i := 0; i < size; i++ {
					assert.Equal(t, Wall, m.Cells[0][i], "top border")
					assert.Equal(t, Wall, m.Cells[size-1][i], "bottom border")
					assert.Equal(t, Wall, m.Cells[i][0], "left border")
					assert.Equal(t, Wall, m.Cells[i][size-1], "right border")
				}

				start, end := m.StartTopLeft(), m.StartBottomRight()
				assert.True(t, m.IsPath(start))
				assert.True(t, m.IsPath(end))
				assert.True(t, m.Connected(start, end))

				reached := m.Reachable(start)
				for _, p := range m.OpenCells() {
					assert.True(t, reached[p.Y][p.X], "open cell %v is isolated", p)
				}
			})
		}
	}
}

func TestGenerator_GenerateLarge(t *testing.T) {
	m, err := NewGenerator(7).Generate(MaxSize)
	require.NoError(t, err)
	assert.True(t, m.Connected(m.StartTopLeft(), m.StartBottomRight()))
}

func TestGenerator_Generate_loopsKeepCorridors(t *testing.T) {
	g := NewGenerator(11)
	for _, size := range []int{9, 15, 21, 31, 41} {
		t.Run(fmt.Sprintf("size %d", size), func(t *testing.T) {
			m, err := g.Generate(size)
			require.NoError(t, err)
			for y := 0; y+1 < size; y++ {
				for x := 0; x+1 < size; x++ {
					open := m.Cells[y][x] == Path && m.Cells[y][x+1] == Path &&
						m.Cells[y+1][x] == Path && m.Cells[y+1][x+1] == Path
					assert.False(t, open, "open 2x2 block at (%d,%d)", x, y)
				}
			}
		})
	}
}

func TestGenerate_invalidSize(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{name: "zero", size: 0},
		{name: "below minimum", size: MinSize - 1},
		{name: "above maximum", size: MaxSize + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Generate(tt.size)
			assert.ErrorIs(t, err, ErrInvalidSize)
			assert.Nil(t, m)
		})
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{in: "up", want: Up},
		{in: "down", want: Down},
		{in: "left", want: Left},
		{in: "right", want: Right},
		{in: "north", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDirection(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMaze_Clone(t *testing.T) {
	m := New(MinSize)
	m.Cells[1][1] = Path
	c := m.Clone()
	c.Cells[1][1] = Wall
	assert.Equal(t, Path, m.Cells[1][1])
	assert.Equal(t, Position{X: 3, Y: 3}, c.StartBottomRight())
}

func TestMaze_Reachable(t *testing.T) {
	m := New(MinSize)
	for _, p := range []Position{{1, 1}, {2, 1}, {3, 1}, {3, 3}} {
		m.Cells[p.Y][p.X] = Path
	}
	assert.True(t, m.Connected(Position{1, 1}, Position{3, 1}))
	assert.False(t, m.Connected(Position{1, 1}, Position{3, 3}))
	assert.False(t, m.Connected(Position{0, 0}, Position{1, 1}))
}

func TestMaze_Validate(t *testing.T) {
	generated, err := NewGenerator(7).Generate(9)
	require.NoError(t, err)

	tests := []struct {
		name    string
		maze    func() *Maze
		wantErr bool
	}{
		{name: "generated", maze: func() *Maze { return generated.Clone() }},
		{name: "nil", maze: func() *Maze { return nil }, wantErr: true},
		{name: "too few rows", maze: func() *Maze { return &Maze{Size: 9, Cells: [][]Cell{{Wall}}} }, wantErr: true},
		{name: "size too small", maze: func() *Maze { return New(3) }, wantErr: true},
		{
			name: "short row",
			maze: func() *Maze {
				m := generated.Clone()
				m.Cells[4] = m.Cells[4][:5]
				return m
			},
			wantErr: true,
		},
		{
			name: "unknown cell value",
			maze: func() *Maze {
				m := generated.Clone()
				m.Cells[1][1] = 7
				return m
			},
			wantErr: true,
		},
		{
			name: "open border",
			maze: func() *Maze {
				m := generated.Clone()
				m.Cells[0][4] = Path
				return m
			},
			wantErr: true,
		},
		{
			name: "closed start",
			maze: func() *Maze {
				m := generated.Clone()
				m.Cells[1][1] = Wall
				return m
			},
			wantErr: true,
		},
		{name: "all walls", maze: func() *Maze { return New(9) }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.maze().Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformed)
				return
			}
			assert.NoError(t, err)
		})
	}
}
