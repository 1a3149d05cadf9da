package renderer

import (
	"github.com/spaghettifunk/lumina/engine/math"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
	"github.com/spaghettifunk/lumina/engine/scene"
)

/**
 * @brief Assigns every reflection-receiving record the nearest reflection
 * probe whose box contains or overlaps it. A record ends the frame with at
 * most one probe; a later probe steals an assignment only when strictly
 * closer to the record's center. Particle records never take a probe.
 *
 * Probes with a baked texture register for the reflection pass no matter
 * what; probes captured live register only when something was actually
 * assigned to them, so empty probes cost no capture work.
 */
func (ld *LayerData) injectReflectionProbes() {
	probes := ld.reflectionProbes.Items()
	if len(probes) == 0 {
		return
	}

	for _, probeNode := range probes {
		probe := probeNode.Probe
		center := probeCenter(probeNode)
		box := math.NewExtents3DCenterExtents(center, probe.BoxSize.MulScalar(0.5))

		ld.assignProbe(probeNode, center, box, ld.transparentObjects)
		ld.assignProbe(probeNode, center, box, ld.opaqueObjects)
	}

	assigned := make(map[*scene.Node]int, len(probes))
	countAssignments(assigned, ld.transparentObjects)
	countAssignments(assigned, ld.opaqueObjects)

	for _, probeNode := range probes {
		if probeNode.Probe.TextureName != "" {
			ld.texturedProbes = append(ld.texturedProbes, probeNode)
		} else if assigned[probeNode] > 0 {
			ld.liveProbes = append(ld.liveProbes, probeNode)
		}
	}
}

func (ld *LayerData) assignProbe(probeNode *scene.Node, center math.Vec3, box math.Extents3D, handles []metadata.RenderableHandle) {
	for _, handle := range handles {
		record := handle.Record
		if record.Kind == metadata.RenderableKindParticles {
			continue
		}
		if !record.Flags.Has(metadata.RenderableReceivesReflections) {
			continue
		}
		if !box.Intersects(record.Bounds) {
			continue
		}
		distance := record.Bounds.Center().Sub(center).LengthSquared()
		if record.Probe != nil {
			held := record.Bounds.Center().Sub(probeCenter(record.Probe)).LengthSquared()
			if distance >= held {
				continue
			}
		}
		record.Probe = probeNode
		record.ShaderKey.SetFeature(metadata.ShaderFeatureReflectionProbe, true)
	}
}

func countAssignments(counts map[*scene.Node]int, handles []metadata.RenderableHandle) {
	for _, handle := range handles {
		if handle.Record.Probe != nil {
			counts[handle.Record.Probe]++
		}
	}
}

func probeCenter(probeNode *scene.Node) math.Vec3 {
	return probeNode.GlobalPosition().Add(probeNode.Probe.BoxOffset)
}
