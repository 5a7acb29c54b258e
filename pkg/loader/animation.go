package loader

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/fbxscene/internal/logger"
	"github.com/Faultbox/fbxscene/pkg/encoding"
	"github.com/Faultbox/fbxscene/pkg/fbx"
	fmath "github.com/Faultbox/fbxscene/pkg/math"
	"github.com/Faultbox/fbxscene/pkg/scene"
)

const (
	// ticksPerSecond is the FBX time unit.
	ticksPerSecond = 46186158000
	// clipFPS is the rate clips are resampled at.
	clipFPS = 30
)

// curve is one scalar channel. Times are seconds.
type curve struct {
	times  []float64
	values []float64
	flags  []int64
	data   []float64
}

func (c *curve) value(frame int) (float64, bool) {
	if c == nil || frame < 0 || frame >= len(c.values) {
		return 0, false
	}
	return c.values[frame], true
}

// curveNode bundles the x/y/z curves of one T, R or S channel of a bone.
type curveNode struct {
	id     int64
	attr   string
	curves [3]*curve
	// bone indexes the bone list; pre is its PreRotation in radians.
	bone int
	pre  *fmath.Vec3
}

// complete reports whether all three axes have curves.
func (c *curveNode) complete() bool {
	return c != nil && c.curves[0] != nil && c.curves[1] != nil && c.curves[2] != nil
}

// channels holds the T, R and S curve nodes of one bone in a layer.
type channels map[string]*curveNode

// animLayer maps bone index to its channels.
type animLayer map[int]channels

type animStack struct {
	name   string
	layers []animLayer
	length float64
	frames float64
}

// parseAnimations rebuilds clips for bones from the animation stacks.
func (d *document) parseAnimations(bones []*scene.Node) []*scene.AnimationClip {
	if d.objects.Bucket("AnimationCurve").Len() == 0 {
		return nil
	}

	nodes := d.parseCurveNodes(bones)
	d.attachCurves(nodes)
	for _, n := range nodes {
		if n.attr == "R" {
			rotationCurves(n)
		}
	}

	layers := d.parseLayers(nodes)
	stacks := d.parseStacks(layers)

	clips := make([]*scene.AnimationClip, 0, len(stacks))
	for _, st := range stacks {
		clips = append(clips, buildClip(st, bones))
	}
	logger.Debug("parsed animations",
		zap.Int("curveNodes", len(nodes)),
		zap.Int("clips", len(clips)))
	return clips
}

func (d *document) parseCurveNodes(bones []*scene.Node) map[int64]*curveNode {
	out := make(map[int64]*curveNode)
	d.eachObject("AnimationCurveNode", func(id int64, n *fbx.Node) {
		attr := d.names.Decode(n.AttrName)
		if attr != "T" && attr != "R" && attr != "S" {
			return
		}

		cn := &curveNode{id: id, attr: attr, bone: -1}
		parents := d.graph.Parents(id)
		for i := len(parents) - 1; i >= 0 && cn.bone < 0; i-- {
			for bi, bone := range bones {
				if bone.FBXID != parents[i].ID {
					continue
				}
				cn.bone = bi
				if v, ok := vec3Prop(d.object("Model", bone.FBXID), "PreRotation"); ok {
					pre := fmath.DegToRadVec(v)
					cn.pre = &pre
				}
				break
			}
		}
		if cn.bone < 0 {
			logger.Debug("curve node drives no bone", zap.Int64("id", id))
			return
		}
		out[id] = cn
	})
	return out
}

// attachCurves assigns every AnimationCurve to an axis of its curve node
// using the relationship label of its first parent connection.
func (d *document) attachCurves(nodes map[int64]*curveNode) {
	d.eachObject("AnimationCurve", func(id int64, n *fbx.Node) {
		parents := d.graph.Parents(id)
		if len(parents) == 0 {
			return
		}

		var axis int
		rel := parents[0].Relationship
		switch {
		case strings.Contains(rel, "X"):
			axis = 0
		case strings.Contains(rel, "Y"):
			axis = 1
		case strings.Contains(rel, "Z"):
			axis = 2
		default:
			return
		}

		cn := nodes[parents[0].ID]
		if cn == nil {
			return
		}
		cn.curves[axis] = readCurve(n)
	})
}

func readCurve(n *fbx.Node) *curve {
	c := &curve{}
	if v, ok := n.Array("KeyTime"); ok {
		for _, t := range v.Float64s() {
			c.times = append(c.times, t/ticksPerSecond)
		}
	}
	if v, ok := n.Array("KeyValueFloat"); ok {
		c.values = v.Float64s()
	}
	if v, ok := n.Array("KeyAttrFlags"); ok {
		c.flags = v.Int64s()
	}
	if v, ok := n.Array("KeyAttrDataFloat"); ok {
		c.data = v.Float64s()
	}
	return c
}

// rotationCurves fills missing axes with a constant zero, converts degrees
// to radians and folds the owning model's pre-rotation into every key.
func rotationCurves(n *curveNode) {
	for i := range n.curves {
		if n.curves[i] == nil {
			n.curves[i] = &curve{times: []float64{0}, values: []float64{0}}
		}
		for k, v := range n.curves[i].values {
			n.curves[i].values[k] = v * math.Pi / 180
		}
	}
	if n.pre == nil {
		return
	}

	pre := fmath.QuatFromEuler(fmath.EulerFromVec3(*n.pre, fmath.OrderZYX))
	x, y, z := n.curves[0], n.curves[1], n.curves[2]
	for frame := range x.values {
		ex, _ := x.value(frame)
		ey, _ := y.value(frame)
		ez, _ := z.value(frame)
		current := fmath.QuatFromEuler(fmath.Euler{X: float32(ex), Y: float32(ey), Z: float32(ez), Order: fmath.OrderZYX})
		e := fmath.EulerFromQuat(pre.Mul(current), fmath.OrderZYX)

		x.values[frame] = float64(e.X)
		y.values = setAt(y.values, frame, float64(e.Y))
		z.values = setAt(z.values, frame, float64(e.Z))
	}
}

func setAt(s []float64, i int, v float64) []float64 {
	for len(s) <= i {
		s = append(s, 0)
	}
	s[i] = v
	return s
}

func (d *document) parseLayers(nodes map[int64]*curveNode) map[int64]animLayer {
	out := make(map[int64]animLayer)
	d.eachObject("AnimationLayer", func(id int64, _ *fbx.Node) {
		layer := make(animLayer)
		for _, c := range d.graph.Children(id) {
			cn := nodes[c.ID]
			if cn == nil {
				continue
			}
			if layer[cn.bone] == nil {
				layer[cn.bone] = make(channels)
			}
			layer[cn.bone][cn.attr] = cn
		}
		out[id] = layer
	})
	return out
}

// parseStacks keeps the stacks whose layers span a positive time range.
func (d *document) parseStacks(layers map[int64]animLayer) []*animStack {
	var out []*animStack
	d.eachObject("AnimationStack", func(id int64, n *fbx.Node) {
		st := &animStack{name: d.names.Decode(n.AttrName)}
		for _, c := range d.graph.Children(id) {
			if l, ok := layers[c.ID]; ok {
				st.layers = append(st.layers, l)
			}
		}

		lo, hi := math.Inf(1), math.Inf(-1)
		for _, l := range st.layers {
			for _, ch := range l {
				for _, cn := range ch {
					for _, c := range cn.curves {
						if c == nil || len(c.times) == 0 {
							continue
						}
						lo = math.Min(lo, c.times[0])
						hi = math.Max(hi, c.times[len(c.times)-1])
					}
				}
			}
		}
		if !(hi > lo) {
			logger.Debug("dropping animation stack with empty time span", zap.String("name", st.name))
			return
		}
		st.length = hi - lo
		st.frames = st.length * clipFPS
		out = append(out, st)
	})
	return out
}

// buildClip resamples a stack at clipFPS. Bones without curves on a frame
// keep their static transform.
func buildClip(st *animStack, bones []*scene.Node) *scene.AnimationClip {
	clip := &scene.AnimationClip{
		Name:     st.name,
		FPS:      clipFPS,
		Duration: float32(st.length),
		Tracks:   make([]scene.Track, len(bones)),
	}

	index := make(map[*scene.Node]int, len(bones))
	for i, b := range bones {
		index[b] = i
	}
	for i, b := range bones {
		parent := -1
		if p, ok := index[b.Parent]; ok && b.Parent != nil {
			parent = p
		}
		clip.Tracks[i] = scene.Track{Name: encoding.TrackName(b.Name), ParentIndex: parent}
	}

	var first animLayer
	if len(st.layers) > 0 {
		first = st.layers[0]
	}
	for frame := 0; float64(frame) <= st.frames; frame++ {
		for i, b := range bones {
			clip.Tracks[i].Keys = append(clip.Tracks[i].Keys, frameKey(first[i], b, frame))
		}
	}
	return clip
}

func frameKey(ch channels, bone *scene.Node, frame int) scene.Keyframe {
	key := scene.Keyframe{
		Time:     float32(frame) / clipFPS,
		Position: bone.Position,
		Rotation: bone.Quaternion,
		Scale:    bone.Scale,
	}
	if ch == nil {
		return key
	}
	if v, ok := ch.sample("T", frame); ok {
		key.Position = v
	}
	if v, ok := ch.sample("R", frame); ok {
		key.Rotation = fmath.QuatFromEuler(fmath.EulerFromVec3(v, fmath.OrderZYX))
	}
	if v, ok := ch.sample("S", frame); ok {
		key.Scale = v
	}
	return key
}

// sample returns the three axis values of attr at frame when every axis
// has a key there.
func (ch channels) sample(attr string, frame int) (fmath.Vec3, bool) {
	cn := ch[attr]
	if !cn.complete() {
		return fmath.Vec3{}, false
	}
	x, okx := cn.curves[0].value(frame)
	y, oky := cn.curves[1].value(frame)
	z, okz := cn.curves[2].value(frame)
	if !okx || !oky || !okz {
		return fmath.Vec3{}, false
	}
	return fmath.Vec3{X: float32(x), Y: float32(y), Z: float32(z)}, true
}
