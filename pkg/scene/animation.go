package scene

import (
	fmath "github.com/Faultbox/fbxscene/pkg/math"
)

// Keyframe is the full local transform of one bone at one time.
type Keyframe struct {
	Time     float32
	Position fmath.Vec3
	Rotation fmath.Quat
	Scale    fmath.Vec3
}

// Track animates one bone.
type Track struct {
	Name string
	// ParentIndex is the track index of the bone's parent, or -1.
	ParentIndex int
	Keys        []Keyframe
}

// AnimationClip is a set of tracks sampled at a fixed rate.
type AnimationClip struct {
	Name     string
	FPS      float32
	Duration float32
	Tracks   []Track
}

// Sample interpolates the track at time t. Times outside the key range
// clamp to the first or last key.
func (t *Track) Sample(time float32) Keyframe {
	if len(t.Keys) == 0 {
		return Keyframe{Time: time, Rotation: fmath.QuatIdentity(), Scale: fmath.Vec3{X: 1, Y: 1, Z: 1}}
	}

	var prev, next int
	for i := range t.Keys {
		if t.Keys[i].Time > time {
			next = i
			break
		}
		prev = i
		next = i
	}

	if prev == next {
		k := t.Keys[prev]
		k.Time = time
		return k
	}

	k0, k1 := t.Keys[prev], t.Keys[next]
	f := float32(0)
	if k1.Time != k0.Time {
		f = (time - k0.Time) / (k1.Time - k0.Time)
	}
	return Keyframe{
		Time:     time,
		Position: k0.Position.Lerp(k1.Position, f),
		Rotation: k0.Rotation.Slerp(k1.Rotation, f),
		Scale:    k0.Scale.Lerp(k1.Scale, f),
	}
}
