package pathfind

import (
	"container/heap"
	"fmt"
	"math"
	"sort"

	"droneplan/internal/geo"
	"droneplan/internal/model"
	"droneplan/internal/progress"
)

// heuristicWeight trades optimality for speed. Weighted A* with w > 1 can
// return paths up to w times longer than optimal but explores far fewer
// nodes on open ground.
const heuristicWeight = 1.3

// maxNodes bounds the search when the destination is unreachable, since
// the grid itself is unbounded.
const maxNodes = 200000

// Drones turn in 22.5 degree increments.
var compassAngles = [16]float64{
	0, 22.5, 45, 67.5, 90, 112.5, 135, 157.5,
	180, 202.5, 225, 247.5, 270, 292.5, 315, 337.5,
}

// Pathfinder runs A* over the implicit move grid, steering around
// restricted areas and reporting progress to an optional sink.
type Pathfinder struct {
	sink progress.Sink
}

func New(sink progress.Sink) *Pathfinder {
	if sink == nil {
		sink = progress.NopSink{}
	}
	return &Pathfinder{sink: sink}
}

// FlightPath returns a sequence of positions from from to within one step
// of to, or nil when no route exists. The first element is always from.
func (p *Pathfinder) FlightPath(from, to model.Position, areas []model.RestrictedArea) []model.Position {
	return p.search(from, to, areas, nil)
}

// FlightPathFor is FlightPath with a delivery id attached to progress
// events.
func (p *Pathfinder) FlightPathFor(deliveryID int, from, to model.Position, areas []model.RestrictedArea) []model.Position {
	return p.search(from, to, areas, &deliveryID)
}

// keyScale quantizes positions onto a lattice of 1e-5 degree cells,
// about one fifteenth of a move. The 16 headings produce a continuum of
// float positions; without merging nearby states onto one node the
// frontier behind an obstacle grows combinatorially. Cells are still
// fine enough that the distinct neighbours of a node never share one.
const keyScale = 1e5

// nodeKey identifies the lattice cell a position falls in.
type nodeKey struct {
	lng, lat int64
}

func keyOf(pos model.Position) nodeKey {
	return nodeKey{
		lng: int64(math.Round(pos.Lng * keyScale)),
		lat: int64(math.Round(pos.Lat * keyScale)),
	}
}

type node struct {
	pos model.Position
	g   float64
	f   float64
}

type openSet []*node

func (s openSet) Len() int { return len(s) }
func (s openSet) Less(i, j int) bool {
	if s[i].f != s[j].f {
		return s[i].f < s[j].f
	}
	return s[i].g < s[j].g
}
func (s openSet) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s *openSet) Push(x any)   { *s = append(*s, x.(*node)) }
func (s *openSet) Pop() any {
	old := *s
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*s = old[:n-1]
	return it
}

func (p *Pathfinder) search(from, to model.Position, areas []model.RestrictedArea, deliveryID *int) []model.Position {
	if geo.IsClose(from, to) {
		return []model.Position{from, to}
	}

	open := &openSet{{pos: from, g: 0, f: heuristicWeight * heuristic(from, to)}}
	heap.Init(open)
	cameFrom := map[nodeKey]model.Position{}
	gScore := map[nodeKey]float64{keyOf(from): 0}
	closed := map[nodeKey]bool{}

	nodesExplored := 0
	for open.Len() > 0 && nodesExplored < maxNodes {
		cur := heap.Pop(open).(*node)
		nodesExplored++

		if nodesExplored%10 == 0 && p.sink.Active() {
			p.sink.Broadcast(progress.NodeExplored(cur.pos, nodesExplored))
		}

		if geo.IsClose(cur.pos, to) {
			path := reconstruct(cameFrom, cur.pos)
			if p.sink.Active() {
				p.sink.Broadcast(progress.PathFound(deliveryID, nodesExplored, len(path)))
			}
			return path
		}

		key := keyOf(cur.pos)
		if closed[key] {
			continue
		}
		closed[key] = true

		for _, angle := range sortedAngles(cur.pos, to) {
			next := geo.NextPosition(cur.pos, angle)
			nextKey := keyOf(next)
			if closed[nextKey] {
				continue
			}
			if geo.PointBlocked(next, areas) || geo.SegmentBlocked(cur.pos, next, areas) {
				continue
			}
			// The first arrival claims a cell, so every cameFrom link
			// is a move that passed the blocking checks above.
			if _, seen := gScore[nextKey]; seen {
				continue
			}
			tentative := cur.g + 1.0
			gScore[nextKey] = tentative
			cameFrom[nextKey] = cur.pos
			heap.Push(open, &node{
				pos: next,
				g:   tentative,
				f:   tentative + heuristicWeight*heuristic(next, to),
			})
		}
	}

	if p.sink.Active() {
		p.sink.Broadcast(progress.ErrorEvent(fmt.Sprintf("No path found after exploring %d nodes", nodesExplored)))
	}
	return nil
}

func reconstruct(cameFrom map[nodeKey]model.Position, end model.Position) []model.Position {
	path := []model.Position{end}
	cur := end
	for {
		prev, ok := cameFrom[keyOf(cur)]
		if !ok {
			break
		}
		path = append(path, prev)
		cur = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// heuristic estimates remaining moves. Takes the smaller of the straight
// line estimate and an octile estimate; both are admissible on this grid
// before weighting.
func heuristic(from, to model.Position) float64 {
	dLng := math.Abs(to.Lng - from.Lng)
	dLat := math.Abs(to.Lat - from.Lat)
	euclid := math.Sqrt(dLng*dLng+dLat*dLat) / geo.MoveStep
	octile := math.Min(dLng, dLat)/geo.MoveStep*math.Sqrt2 + math.Abs(dLng-dLat)/geo.MoveStep
	return math.Min(euclid, octile)
}

// sortedAngles orders the 16 headings by closeness to the bearing toward
// the target, so promising moves are expanded first.
func sortedAngles(from, to model.Position) []float64 {
	target := math.Atan2(to.Lat-from.Lat, to.Lng-from.Lng) * 180 / math.Pi
	if target < 0 {
		target += 360
	}
	angles := make([]float64, len(compassAngles))
	copy(angles, compassAngles[:])
	sort.Slice(angles, func(i, j int) bool {
		return angularDiff(angles[i], target) < angularDiff(angles[j], target)
	})
	return angles
}

func angularDiff(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}
