package domain

import "sort"

// TileID identifies a tile of the board graph.
type TileID string

// Board is the spatial tile graph, stored as an undirected adjacency list.
// Pathfinding lives outside the kernel; the board only answers distance queries
// used by range checks.
type Board struct {
	ID    string              `json:"id"`
	Tiles map[TileID][]TileID `json:"tiles"`
}

// NewBoard creates an empty board.
func NewBoard(id string, tiles ...TileID) Board {
	b := Board{ID: id, Tiles: make(map[TileID][]TileID, len(tiles))}
	for _, t := range tiles {
		b.Tiles[t] = nil
	}
	return b
}

// Connect returns a copy of the board with an edge between a and c.
func (b Board) Connect(a, c TileID) Board {
	next := Board{ID: b.ID, Tiles: make(map[TileID][]TileID, len(b.Tiles)+2)}
	for k, v := range b.Tiles {
		next.Tiles[k] = append([]TileID(nil), v...)
	}
	next.Tiles[a] = appendUnique(next.Tiles[a], c)
	next.Tiles[c] = appendUnique(next.Tiles[c], a)
	return next
}

func appendUnique(list []TileID, t TileID) []TileID {
	for _, x := range list {
		if x == t {
			return list
		}
	}
	list = append(list, t)
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

// Has reports whether the tile exists.
func (b Board) Has(t TileID) bool {
	_, ok := b.Tiles[t]
	return ok
}

// Neighbors returns the tiles adjacent to t.
func (b Board) Neighbors(t TileID) []TileID {
	return append([]TileID(nil), b.Tiles[t]...)
}

// Adjacent reports whether a and c share an edge.
func (b Board) Adjacent(a, c TileID) bool {
	for _, n := range b.Tiles[a] {
		if n == c {
			return true
		}
	}
	return false
}

// Distance returns the number of edges between a and c, or -1 if unreachable.
func (b Board) Distance(a, c TileID) int {
	if !b.Has(a) || !b.Has(c) {
		return -1
	}
	if a == c {
		return 0
	}
	dist := map[TileID]int{a: 0}
	queue := []TileID{a}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range b.Tiles[cur] {
			if _, seen := dist[n]; seen {
				continue
			}
			dist[n] = dist[cur] + 1
			if n == c {
				return dist[n]
			}
			queue = append(queue, n)
		}
	}
	return -1
}
