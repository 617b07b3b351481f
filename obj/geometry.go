package obj

import "github.com/jakecoffman/cp"

// transformPoly rotates then translates vertices.
func transformPoly(verts []cp.Vector, offset cp.Vector, angle float64) []cp.Vector {
	rot := cp.ForAngle(angle)
	out := make([]cp.Vector, len(verts))
	for i, v := range verts {
		out[i] = offset.Add(v.Rotate(rot))
	}
	return out
}
