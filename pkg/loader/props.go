package loader

import (
	"github.com/Faultbox/fbxscene/pkg/fbx"
	fmath "github.com/Faultbox/fbxscene/pkg/math"
)

func floatProp(n *fbx.Node, name string) (float32, bool) {
	v, ok := n.Prop(name)
	if !ok {
		return 0, false
	}
	f, ok := v.Float()
	return float32(f), ok
}

func vec3Prop(n *fbx.Node, name string) (fmath.Vec3, bool) {
	v, ok := n.Prop(name)
	if !ok {
		return fmath.Vec3{}, false
	}
	return v.Vec3()
}

// colorProp reads name, falling back to a ColorRGB-typed fallback.
func colorProp(n *fbx.Node, name, fallback string) (fmath.Vec3, bool) {
	if c, ok := vec3Prop(n, name); ok {
		return c, true
	}
	v, ok := n.Prop(fallback)
	if !ok {
		return fmath.Vec3{}, false
	}
	if tp, typed := v.Typed(); typed && tp.Type != "ColorRGB" && tp.Type != "Color" {
		return fmath.Vec3{}, false
	}
	return v.Color()
}

func intProp(n *fbx.Node, name string) (int64, bool) {
	v, ok := n.Prop(name)
	if !ok {
		return 0, false
	}
	return v.Int()
}
