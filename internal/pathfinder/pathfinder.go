// Package pathfinder answers reachability questions over the empty cells of a board.
package pathfinder

import "github.com/rocketscienceinc/linegames-backend/internal/entity"

// up, right, down, left
var directions = [4]entity.Coord{
	{Row: -1, Col: 0},
	{Row: 0, Col: 1},
	{Row: 1, Col: 0},
	{Row: 0, Col: -1},
}

// Find returns a shortest 4-connected path from -> to through empty cells, including both
// ends. The source cell may be occupied; every other cell on the path, destination included,
// must be empty. Callers never ask for from == to.
func Find(board *entity.Board, from, to entity.Coord) ([]entity.Coord, bool) {
	if from == to || !board.InBounds(from) || !board.InBounds(to) || !board.IsEmpty(to) {
		return nil, false
	}

	parents, _ := search(board, from, &to)
	if _, ok := parents[to]; !ok {
		return nil, false
	}

	path := []entity.Coord{to}
	for at := to; at != from; {
		at = parents[at]
		path = append(path, at)
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path, true
}

// Exists is Find without returning the path.
func Exists(board *entity.Board, from, to entity.Coord) bool {
	_, ok := Find(board, from, to)
	return ok
}

// Reachable lists every empty cell reachable from `from`, nearest first.
func Reachable(board *entity.Board, from entity.Coord) []entity.Coord {
	if !board.InBounds(from) {
		return nil
	}

	_, order := search(board, from, nil)

	return order[1:]
}

// search runs BFS from `from` and returns the parent of every visited cell plus the visit
// order (starting with `from`). It stops early once stopAt is discovered.
func search(board *entity.Board, from entity.Coord, stopAt *entity.Coord) (map[entity.Coord]entity.Coord, []entity.Coord) {
	parents := map[entity.Coord]entity.Coord{from: from}
	order := []entity.Coord{from}

	queue := []entity.Coord{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, d := range directions {
			next := entity.Coord{Row: current.Row + d.Row, Col: current.Col + d.Col}
			if !board.InBounds(next) || !board.IsEmpty(next) {
				continue
			}

			if _, seen := parents[next]; seen {
				continue
			}

			parents[next] = current
			order = append(order, next)

			if stopAt != nil && next == *stopAt {
				return parents, order
			}

			queue = append(queue, next)
		}
	}

	return parents, order
}
