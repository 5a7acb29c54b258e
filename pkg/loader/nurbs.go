package loader

import (
	"go.uber.org/zap"

	"github.com/Faultbox/fbxscene/internal/logger"
	"github.com/Faultbox/fbxscene/pkg/fbx"
	fmath "github.com/Faultbox/fbxscene/pkg/math"
	"github.com/Faultbox/fbxscene/pkg/scene"
)

// samplesPerControlPoint is how densely NURBS curves are sampled.
const samplesPerControlPoint = 7

// NurbsCurve describes a curve for a CurveEvaluator. A StartKnot or
// EndKnot of -1 means the full knot range.
type NurbsCurve struct {
	Degree        int
	Knots         []float64
	ControlPoints [][4]float32
	StartKnot     int
	EndKnot       int
}

// CurveEvaluator samples NURBS curves. The loader does not evaluate them.
type CurveEvaluator interface {
	// Points returns divisions+1 points along the curve.
	Points(curve NurbsCurve, divisions int) []fmath.Vec3
}

func (d *document) buildNurbs(id int64, n *fbx.Node) *scene.Geometry {
	geo := &scene.Geometry{ID: id, Name: d.names.Decode(n.AttrName)}

	if d.curves == nil {
		logger.Error("NURBS geometry needs a curve evaluator", zap.Int64("id", id))
		return geo
	}

	order, ok := intProp(n, "Order")
	if !ok || order < 1 {
		logger.Error("invalid NURBS order", zap.Int64("id", id))
		return geo
	}
	degree := int(order - 1)

	curve := NurbsCurve{Degree: degree, StartKnot: -1, EndKnot: -1}
	if knots, ok := n.Array("KnotVector"); ok {
		curve.Knots = knots.Float64s()
	}
	if points, ok := n.Array("Points"); ok {
		values := points.Float64s()
		for i := 0; i+3 < len(values); i += 4 {
			curve.ControlPoints = append(curve.ControlPoints, [4]float32{
				float32(values[i]), float32(values[i+1]), float32(values[i+2]), float32(values[i+3]),
			})
		}
	}
	if len(curve.ControlPoints) == 0 {
		logger.Error("NURBS geometry has no control points", zap.Int64("id", id))
		return geo
	}

	form, _ := textProp(n, "Form")
	switch form {
	case "Closed":
		curve.ControlPoints = append(curve.ControlPoints, curve.ControlPoints[0])
	case "Periodic":
		curve.StartKnot = degree
		curve.EndKnot = len(curve.Knots) - 1 - degree
		for i := 0; i < degree && i < len(curve.ControlPoints); i++ {
			curve.ControlPoints = append(curve.ControlPoints, curve.ControlPoints[i])
		}
	}

	points := d.curves.Points(curve, len(curve.ControlPoints)*samplesPerControlPoint)
	geo.Positions = make([]float32, 0, len(points)*3)
	for _, p := range points {
		geo.Positions = append(geo.Positions, p.X, p.Y, p.Z)
	}
	return geo
}
