package entity

import "fmt"

// Token is the mark held by a cell: a ball color for line98 or a player symbol for row games.
type Token int

const (
	Empty Token = 0

	TokenX Token = 1
	TokenO Token = 2
)

// Symbol renders row-game tokens the way clients display them.
func (t Token) Symbol() string {
	switch t {
	case TokenX:
		return "X"
	case TokenO:
		return "O"
	case Empty:
		return ""
	default:
		return fmt.Sprintf("%d", int(t))
	}
}

// Coord addresses a cell by row and column.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Coord) String() string {
	return fmt.Sprintf("(%d,%d)", that.Row, that.Col)
}

// Move is a move request. Row games only use To; line98 moves a ball From -> To.
type Move struct {
	From *Coord `json:"from,omitempty"`
	To   Coord  `json:"to"`
}

// Board is a square grid of tokens. Accessing a cell outside [0, Size) is a programming
// error and panics.
type Board struct {
	Size  int       `json:"size"`
	Cells [][]Token `json:"cells"`
}

func NewBoard(size int) *Board {
	cells := make([][]Token, size)
	for row := range cells {
		cells[row] = make([]Token, size)
	}

	return &Board{Size: size, Cells: cells}
}

func (that *Board) InBounds(at Coord) bool {
	return at.Row >= 0 && at.Row < that.Size && at.Col >= 0 && at.Col < that.Size
}

func (that *Board) Get(at Coord) Token {
	that.mustBeInBounds(at)
	return that.Cells[at.Row][at.Col]
}

func (that *Board) Set(at Coord, token Token) {
	that.mustBeInBounds(at)
	that.Cells[at.Row][at.Col] = token
}

func (that *Board) Clear(at Coord) {
	that.Set(at, Empty)
}

func (that *Board) IsEmpty(at Coord) bool {
	return that.Get(at) == Empty
}

// EmptyCells lists empty cells in row-major order.
func (that *Board) EmptyCells() []Coord {
	cells := make([]Coord, 0, that.Size*that.Size)
	for row := 0; row < that.Size; row++ {
		for col := 0; col < that.Size; col++ {
			if that.Cells[row][col] == Empty {
				cells = append(cells, Coord{Row: row, Col: col})
			}
		}
	}

	return cells
}

// OccupiedCells lists non-empty cells in row-major order.
func (that *Board) OccupiedCells() []Coord {
	cells := make([]Coord, 0, that.Size*that.Size)
	for row := 0; row < that.Size; row++ {
		for col := 0; col < that.Size; col++ {
			if that.Cells[row][col] != Empty {
				cells = append(cells, Coord{Row: row, Col: col})
			}
		}
	}

	return cells
}

func (that *Board) IsFull() bool {
	for _, row := range that.Cells {
		for _, cell := range row {
			if cell == Empty {
				return false
			}
		}
	}

	return true
}

func (that *Board) Clone() *Board {
	clone := &Board{Size: that.Size, Cells: make([][]Token, len(that.Cells))}
	for row := range that.Cells {
		clone.Cells[row] = append([]Token(nil), that.Cells[row]...)
	}

	return clone
}

func (that *Board) mustBeInBounds(at Coord) {
	if !that.InBounds(at) {
		panic(fmt.Sprintf("board: coordinate %s out of bounds for size %d", at, that.Size))
	}
}
