package scene

import (
	fmath "github.com/Faultbox/fbxscene/pkg/math"
)

// Skeleton is an ordered bone list with inverse bind matrices.
type Skeleton struct {
	Bones        []*Node
	BoneInverses []fmath.Mat4
}

// NewSkeleton captures the inverse of every bone's current world matrix.
// Nil entries keep an identity inverse.
func NewSkeleton(bones []*Node) *Skeleton {
	s := &Skeleton{
		Bones:        bones,
		BoneInverses: make([]fmath.Mat4, len(bones)),
	}
	for i, b := range bones {
		if b == nil {
			s.BoneInverses[i] = fmath.Identity()
			continue
		}
		s.BoneInverses[i] = b.MatrixWorld.Inverse()
	}
	return s
}

// BoneIndex returns the position of bone, or -1.
func (s *Skeleton) BoneIndex(bone *Node) int {
	for i, b := range s.Bones {
		if b == bone {
			return i
		}
	}
	return -1
}
