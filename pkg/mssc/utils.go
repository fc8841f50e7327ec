package mssc

import "sort"

func sortFloats(xs []float64) { sort.Float64s(xs) }

func squaredDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func centroid(inst *Instance, members []int) []float64 {
	c := make([]float64, inst.S)
	if len(members) == 0 {
		return c
	}
	for _, i := range members {
		for s := 0; s < inst.S; s++ {
			c[s] += inst.Coords[i][s]
		}
	}
	for s := 0; s < inst.S; s++ {
		c[s] /= float64(len(members))
	}
	return c
}
