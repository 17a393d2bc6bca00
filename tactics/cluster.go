package tactics

import "github.com/nstehr/vimy/vimy-tactics/model"

// Cluster is a set of units gathered around an integer centroid.
type Cluster struct {
	Members []model.Object
	X, Y    int
}

func (c Cluster) Center() model.Position { return model.Position{X: c.X, Y: c.Y} }

// findClusters assigns each unit to the first cluster whose running
// centroid is closer than size, or starts a new one. It returns the
// clusters and the index of the largest; on ties, the one that reached
// that size first.
func findClusters(units []model.Object, size int) ([]Cluster, int) {
	var clusters []Cluster
	largest := 0
	for _, u := range units {
		placed := false
		for i := range clusters {
			c := &clusters[i]
			if model.Dist(c.Center(), u.Pos()) >= float64(size) {
				continue
			}
			n := len(c.Members)
			c.X = floorDiv(n*c.X+u.X, n+1)
			c.Y = floorDiv(n*c.Y+u.Y, n+1)
			c.Members = append(c.Members, u)
			if len(c.Members) > len(clusters[largest].Members) {
				largest = i
			}
			placed = true
			break
		}
		if !placed {
			clusters = append(clusters, Cluster{Members: []model.Object{u}, X: u.X, Y: u.Y})
		}
	}
	return clusters, largest
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// centroid is the floored average member position.
func centroid(units []model.Object) (model.Position, bool) {
	if len(units) == 0 {
		return model.Position{}, false
	}
	var sx, sy int
	for _, u := range units {
		sx += u.X
		sy += u.Y
	}
	n := len(units)
	return model.Position{X: floorDiv(sx, n), Y: floorDiv(sy, n)}, true
}
