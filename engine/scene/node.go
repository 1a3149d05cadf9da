package scene

import (
	"github.com/google/uuid"

	"github.com/spaghettifunk/lumina/engine/math"
)

/** @brief The closed set of node variants understood by the preparation pass. */
type NodeKind uint8

const (
	NodeKindTransform NodeKind = iota
	NodeKindModel
	NodeKindLight
	NodeKindCamera
	NodeKindParticles
	NodeKindItem2D
	NodeKindReflectionProbe
	NodeKindSkeleton
	NodeKindJoint
)

func (k NodeKind) String() string {
	switch k {
	case NodeKindTransform:
		return "transform"
	case NodeKindModel:
		return "model"
	case NodeKindLight:
		return "light"
	case NodeKindCamera:
		return "camera"
	case NodeKindParticles:
		return "particles"
	case NodeKindItem2D:
		return "item2d"
	case NodeKindReflectionProbe:
		return "reflection_probe"
	case NodeKindSkeleton:
		return "skeleton"
	case NodeKindJoint:
		return "joint"
	}
	return "unknown"
}

/** @brief Dirty flags tracked per node. */
type DirtyFlag uint8

const (
	/** @brief The authored local transform changed since the last frame. */
	DirtyTransform DirtyFlag = 1 << iota
	/** @brief The cached global transform/opacity must be recomputed. */
	DirtyGlobal
)

/**
 * @brief A scene graph node. Exactly one payload pointer matching Kind is
 * non-nil; ownership flows parent to child, and Parent is a plain
 * back-reference that never owns.
 *
 * The global transform is derived state: it is valid only after an
 * ancestor-first recomputation and must never be authored directly.
 */
type Node struct {
	Name string
	Kind NodeKind

	/** @brief Authored local transform (position, rotation, scale). */
	Local *math.Transform
	/** @brief Derived world transform, valid once DirtyGlobal is cleared. */
	Global math.Mat4

	/** @brief Authored opacity, inherited multiplicatively by descendants. */
	LocalOpacity float32
	/** @brief Derived world opacity. */
	GlobalOpacity float32

	/** @brief Authored activity. Inactive subtrees are skipped entirely. */
	Active bool

	/** @brief Depth-first index assigned during classification. */
	DFSIndex uint32

	Parent   *Node
	Children []*Node

	dirty DirtyFlag

	Model     *Model
	Light     *Light
	Camera    *Camera
	Particles *Particles
	Item2D    *Item2D
	Probe     *ReflectionProbe
	Skeleton  *Skeleton
	Joint     *Joint
}

/** @brief Creates a node of the given kind with an identity transform. */
func NewNode(name string, kind NodeKind) *Node {
	n := &Node{
		Name:          name,
		Kind:          kind,
		Local:         math.TransformCreate(),
		Global:        math.NewMat4Identity(),
		LocalOpacity:  1.0,
		GlobalOpacity: 1.0,
		Active:        true,
		dirty:         DirtyTransform | DirtyGlobal,
	}
	switch kind {
	case NodeKindModel:
		n.Model = &Model{LevelOfDetailBias: 1.0}
	case NodeKindLight:
		n.Light = &Light{Brightness: 1.0, ShadowMapResolution: DefaultShadowMapResolution}
	case NodeKindCamera:
		n.Camera = NewCamera()
	case NodeKindParticles:
		n.Particles = &Particles{}
	case NodeKindItem2D:
		n.Item2D = &Item2D{}
	case NodeKindReflectionProbe:
		n.Probe = &ReflectionProbe{BoxSize: math.NewVec3One(), CaptureID: uuid.New()}
	case NodeKindSkeleton:
		n.Skeleton = &Skeleton{}
	case NodeKindJoint:
		n.Joint = &Joint{}
	}
	return n
}

/** @brief Attaches child to n, detaching it from any previous parent. */
func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	child.MarkDirty(DirtyGlobal)
}

func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			child.MarkDirty(DirtyGlobal)
			return
		}
	}
}

func (n *Node) IsDirty(flag DirtyFlag) bool {
	return n.dirty&flag != 0
}

/**
 * @brief Sets the given flags on this node. DirtyGlobal additionally
 * propagates to every descendant, since their cached globals derive from
 * this node's.
 */
func (n *Node) MarkDirty(flag DirtyFlag) {
	n.dirty |= flag
	if flag&DirtyGlobal != 0 {
		for _, c := range n.Children {
			c.MarkDirty(DirtyGlobal)
		}
	}
}

func (n *Node) ClearDirty(flag DirtyFlag) {
	n.dirty &^= flag
}

/** @brief Updates the authored position and dirties the subtree. */
func (n *Node) SetPosition(p math.Vec3) {
	n.Local.SetPosition(p)
	n.MarkDirty(DirtyTransform | DirtyGlobal)
}

/** @brief Updates the authored rotation and dirties the subtree. */
func (n *Node) SetRotation(q math.Quaternion) {
	n.Local.SetRotation(q)
	n.MarkDirty(DirtyTransform | DirtyGlobal)
}

/** @brief Updates the authored scale and dirties the subtree. */
func (n *Node) SetScale(s math.Vec3) {
	n.Local.SetScale(s)
	n.MarkDirty(DirtyTransform | DirtyGlobal)
}

/** @brief Updates the authored opacity and dirties the subtree. */
func (n *Node) SetOpacity(o float32) {
	n.LocalOpacity = o
	n.MarkDirty(DirtyGlobal)
}

/**
 * @brief Recomputes the cached global transform and opacity from the
 * parent's cached values composed with the local transform. The parent's
 * globals must already be up to date (guaranteed by ancestor-first
 * traversal). Clears the dirty flags and reports whether the cached value
 * actually changed.
 */
func (n *Node) CalculateGlobalVariables() bool {
	local := n.Local.GetLocal()

	global := local
	opacity := n.LocalOpacity
	if n.Parent != nil {
		global = local.Mul(n.Parent.Global)
		opacity *= n.Parent.GlobalOpacity
	}

	changed := global != n.Global || opacity != n.GlobalOpacity
	n.Global = global
	n.GlobalOpacity = opacity
	n.ClearDirty(DirtyTransform | DirtyGlobal)
	return changed
}

/** @brief World-space position from the cached global transform. */
func (n *Node) GlobalPosition() math.Vec3 {
	return n.Global.Translation()
}

/**
 * @brief Indicates if this node and every ancestor is active. Inactive
 * ancestors hide the whole subtree.
 */
func (n *Node) GloballyActive() bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if !cur.Active {
			return false
		}
	}
	return true
}

/** @brief Indicates if n sits on other's ancestor chain (excluding other itself). */
func (n *Node) IsAncestorOf(other *Node) bool {
	if other == nil {
		return false
	}
	for cur := other.Parent; cur != nil; cur = cur.Parent {
		if cur == n {
			return true
		}
	}
	return false
}

/**
 * @brief World-space forward direction, corrected for non-uniform scale
 * by pushing the local forward axis through the inverse-transpose of the
 * global transform.
 */
func (n *Node) ScalingCorrectDirection() math.Vec3 {
	normalMatrix := math.NewMat4Transposed(n.Global.Inverse())
	return normalMatrix.TransformDirection(math.NewVec3Forward())
}
