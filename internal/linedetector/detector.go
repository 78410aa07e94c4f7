// Package linedetector finds runs of identical tokens along the four board axes.
//
// Two scan strategies share one direction table: FindRuns walks the whole board and is used
// by line98 after every placement, RunThrough only looks at lines crossing one cell and is
// used for row-game win checks and hint simulation.
package linedetector

import "github.com/rocketscienceinc/linegames-backend/internal/entity"

const DefaultMinLength = 5

// horizontal, vertical, diagonal \, diagonal /
var directions = [4]entity.Coord{
	{Row: 0, Col: 1},
	{Row: 1, Col: 0},
	{Row: 1, Col: 1},
	{Row: 1, Col: -1},
}

// Run is a maximal sequence of identical tokens, ordered along its direction.
type Run struct {
	Token entity.Token   `json:"token"`
	Cells []entity.Coord `json:"cells"`
}

func (that Run) Len() int {
	return len(that.Cells)
}

// Result holds every qualifying run plus the de-duplicated set of their cells.
// A cell shared by two runs appears in both runs but only once in Cells.
type Result struct {
	Runs  []Run
	Cells []entity.Coord
}

func (that Result) Found() bool {
	return len(that.Runs) > 0
}

// FindRuns scans the whole board and reports every maximal run of length >= minLength.
// The board is not modified.
func FindRuns(board *entity.Board, minLength int) Result {
	var result Result
	seen := make(map[entity.Coord]struct{})

	for _, d := range directions {
		for row := 0; row < board.Size; row++ {
			for col := 0; col < board.Size; col++ {
				start := entity.Coord{Row: row, Col: col}
				token := board.Get(start)
				if token == entity.Empty {
					continue
				}

				// only start counting at the first cell of a run
				prev := entity.Coord{Row: row - d.Row, Col: col - d.Col}
				if board.InBounds(prev) && board.Get(prev) == token {
					continue
				}

				run := extend(board, start, d, token)
				if run.Len() < minLength {
					continue
				}

				result.Runs = append(result.Runs, run)
				for _, cell := range run.Cells {
					if _, ok := seen[cell]; ok {
						continue
					}
					seen[cell] = struct{}{}
					result.Cells = append(result.Cells, cell)
				}
			}
		}
	}

	return result
}

// Remove clears every cell of the result exactly once and returns how many were cleared.
func Remove(board *entity.Board, result Result) int {
	removed := 0
	for _, cell := range result.Cells {
		if board.Get(cell) == entity.Empty {
			continue
		}
		board.Clear(cell)
		removed++
	}

	return removed
}

// RunThrough checks the four lines crossing `at`, counting matching neighbours forward and
// backward, and returns the first run that qualifies. With exact set only a run of exactly
// minLength qualifies, so overlines are ignored.
func RunThrough(board *entity.Board, at entity.Coord, minLength int, exact bool) (Run, bool) {
	token := board.Get(at)
	if token == entity.Empty {
		return Run{}, false
	}

	for _, d := range directions {
		start := at
		for {
			prev := entity.Coord{Row: start.Row - d.Row, Col: start.Col - d.Col}
			if !board.InBounds(prev) || board.Get(prev) != token {
				break
			}
			start = prev
		}

		run := extend(board, start, d, token)
		if exact && run.Len() != minLength {
			continue
		}

		if run.Len() >= minLength {
			return run, true
		}
	}

	return Run{}, false
}

// WouldQualify reports whether placing token at `at` completes a qualifying run.
// The board is left unchanged.
func WouldQualify(board *entity.Board, at entity.Coord, token entity.Token, minLength int) bool {
	previous := board.Get(at)
	board.Set(at, token)
	defer board.Set(at, previous)

	_, ok := RunThrough(board, at, minLength, false)

	return ok
}

func extend(board *entity.Board, start, d entity.Coord, token entity.Token) Run {
	run := Run{Token: token}
	for at := start; board.InBounds(at) && board.Get(at) == token; at = (entity.Coord{Row: at.Row + d.Row, Col: at.Col + d.Col}) {
		run.Cells = append(run.Cells, at)
	}

	return run
}
