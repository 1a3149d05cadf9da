/*
Sample application: builds a small scene with the shapes the preparation
pass cares about (shadowed lights, instancing, a probe, overlay items) and
runs it through the engine frame loop.
*/
package testbed

import (
	"github.com/chewxy/math32"
	"golang.org/x/exp/rand"

	"github.com/spaghettifunk/lumina/engine"
	"github.com/spaghettifunk/lumina/engine/core"
	"github.com/spaghettifunk/lumina/engine/math"
	"github.com/spaghettifunk/lumina/engine/renderer"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
	"github.com/spaghettifunk/lumina/engine/scene"
	"github.com/spaghettifunk/lumina/engine/systems"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	worldRoot *scene.Node
	spinner   *scene.Node
	rocks     *scene.Node

	worldLayer *renderer.LayerData
	frameCount uint64
}

func NewTestGame(configPath string) (*TestGame, error) {
	config, err := engine.LoadEngineConfig(configPath)
	if err != nil {
		return nil, err
	}

	tg := &TestGame{
		Game: &engine.Game{
			Config: config,
			State:  &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

/**
 * @brief Registers the demo meshes and assembles the scene graph, then
 * creates the layers named in the configuration over it (or a default
 * world layer when the file names none).
 */
func (g *TestGame) Initialize() error {
	core.LogInfo("initializing testbed scene...")
	state := g.State.(*gameState)

	if err := g.registerMeshes(g.SystemManager.BufferManager); err != nil {
		return err
	}

	state.worldRoot = g.buildScene(state)

	layerConfigs := g.Config.Layers
	if len(layerConfigs) == 0 {
		layerConfigs = []renderer.LayerConfig{{
			Name:                "world",
			DepthTestEnabled:    true,
			DepthPrePassEnabled: true,
			SsaoEnabled:         true,
			ClearColour:         [4]float32{0.05, 0.05, 0.1, 1.0},
		}}
	}
	for _, layerConfig := range layerConfigs {
		ld, err := g.Renderer.CreateLayer(layerConfig, state.worldRoot)
		if err != nil {
			return err
		}
		if state.worldLayer == nil {
			state.worldLayer = ld
		}
	}

	return nil
}

func (g *TestGame) registerMeshes(buffers *systems.BufferManager) error {
	meshes := []*metadata.MeshConfig{
		systems.GenerateCubeConfig(2.0, 2.0, 2.0, 1.0, 1.0, "demo_crate", "crate"),
		systems.GenerateCubeConfig(0.8, 0.8, 0.8, 1.0, 1.0, "demo_rock", "rock"),
		systems.GenerateCubeConfig(3.0, 2.0, 0.2, 1.0, 1.0, "demo_pane", "glass"),
		systems.GeneratePlaneConfig(40.0, 40.0, 4, 4, 8.0, 8.0, "demo_ground", "ground"),
	}
	for _, config := range meshes {
		if err := buffers.RegisterMeshConfig(config); err != nil {
			return err
		}
	}
	return nil
}

func (g *TestGame) buildScene(state *gameState) *scene.Node {
	root := scene.NewNode("world_root", scene.NodeKindTransform)

	camera := scene.NewNode("orbit_camera", scene.NodeKindCamera)
	camera.SetPosition(math.NewVec3(0, 4, 24))
	root.AddChild(camera)

	sun := scene.NewNode("sun", scene.NodeKindLight)
	sun.Light.Type = scene.LightTypeDirectional
	sun.Light.CastShadow = true
	sun.SetRotation(math.NewQuatFromAxisAngle(math.NewVec3(1, 0, 0), math.DegToRad(-50), true))
	root.AddChild(sun)

	lamp := scene.NewNode("lamp", scene.NodeKindLight)
	lamp.Light.Type = scene.LightTypePoint
	lamp.Light.Brightness = 2.0
	lamp.SetPosition(math.NewVec3(5, 6, 2))
	root.AddChild(lamp)

	ground := scene.NewNode("ground", scene.NodeKindModel)
	ground.Model.MeshName = "demo_ground"
	ground.Model.MaterialNames = []string{"ground"}
	ground.Model.ReceivesShadows = true
	ground.Model.ReceivesReflections = true
	ground.SetRotation(math.NewQuatFromAxisAngle(math.NewVec3(1, 0, 0), math.DegToRad(-90), true))
	root.AddChild(ground)

	crates := scene.NewNode("crates", scene.NodeKindTransform)
	root.AddChild(crates)

	crateA := scene.NewNode("crate_a", scene.NodeKindModel)
	crateA.Model.MeshName = "demo_crate"
	crateA.Model.MaterialNames = []string{"crate"}
	crateA.Model.CastsShadows = true
	crateA.Model.ReceivesShadows = true
	crateA.Model.Pickable = true
	crateA.SetPosition(math.NewVec3(-3, 1, 0))
	crates.AddChild(crateA)

	crateB := scene.NewNode("crate_b", scene.NodeKindModel)
	crateB.Model.MeshName = "demo_crate"
	crateB.Model.MaterialNames = []string{"crate"}
	crateB.Model.CastsShadows = true
	crateB.SetPosition(math.NewVec3(-3, 2.6, 0.4))
	crateB.SetScale(math.NewVec3(0.5, 0.5, 0.5))
	crates.AddChild(crateB)

	// Illuminates the crate stack only; everything else ignores it.
	glow := scene.NewNode("crate_glow", scene.NodeKindLight)
	glow.Light.Type = scene.LightTypePoint
	glow.Light.Brightness = 1.5
	glow.Light.Scope = crates
	glow.SetPosition(math.NewVec3(-3, 4, 1))
	root.AddChild(glow)

	spinner := scene.NewNode("spinner", scene.NodeKindModel)
	spinner.Model.MeshName = "demo_crate"
	spinner.Model.MaterialNames = []string{"crate"}
	spinner.Model.CastsShadows = true
	spinner.SetPosition(math.NewVec3(3, 1.5, 0))
	root.AddChild(spinner)
	state.spinner = spinner

	// Lands in the transparent bucket and is sorted back to front.
	pane := scene.NewNode("glass_pane", scene.NodeKindModel)
	pane.Model.MeshName = "demo_pane"
	pane.Model.MaterialNames = []string{"glass"}
	pane.Model.ReceivesReflections = true
	pane.SetPosition(math.NewVec3(0, 1.5, 6))
	root.AddChild(pane)

	rocks := scene.NewNode("rocks", scene.NodeKindModel)
	rocks.Model.MeshName = "demo_rock"
	rocks.Model.MaterialNames = []string{"rock"}
	rocks.Model.CastsShadows = true
	rocks.Model.InstanceTable = buildRockRing()
	root.AddChild(rocks)
	state.rocks = rocks

	sparks := scene.NewNode("sparks", scene.NodeKindParticles)
	sparks.Particles.ParticleCount = 256
	sparks.Particles.HasTransparency = true
	sparks.Particles.Bounds = math.NewExtents3DCenterExtents(math.NewVec3(0, 0, 0), math.NewVec3(1.5, 3, 1.5))
	sparks.Particles.Seed = rand.Uint64()
	sparks.SetPosition(math.NewVec3(5, 0.5, -4))
	root.AddChild(sparks)

	probe := scene.NewNode("center_probe", scene.NodeKindReflectionProbe)
	probe.Probe.BoxSize = math.NewVec3(20, 10, 20)
	probe.Probe.ParallaxCorrection = true
	probe.SetPosition(math.NewVec3(0, 2, 0))
	root.AddChild(probe)

	hud := scene.NewNode("hud_marker", scene.NodeKindItem2D)
	hud.Item2D.ZOrder = 10
	root.AddChild(hud)

	// Renders only when a matching font is configured; otherwise the item
	// is skipped for the frame and retried.
	title := scene.NewNode("hud_title", scene.NodeKindItem2D)
	title.Item2D.ZOrder = 20
	title.Item2D.Text = "lumina testbed"
	title.Item2D.FontName = "UbuntuMono21px"
	root.AddChild(title)

	return root
}

/** @brief A ring of instanced rocks around the scene center. */
func buildRockRing() *scene.InstanceTable {
	const count = 12
	const radius = float32(9.0)

	table := &scene.InstanceTable{
		Entries:             make([]scene.InstanceTableEntry, 0, count),
		DepthSortingEnabled: true,
		Serial:              1,
	}
	for i := 0; i < count; i++ {
		angle := float32(i) / float32(count) * math.K_PI_2
		x := math32.Cos(angle) * radius
		z := math32.Sin(angle) * radius
		shade := 0.4 + 0.6*float32(i)/float32(count)
		table.Entries = append(table.Entries, scene.InstanceTableEntry{
			Row0:  math.NewVec4Create(1, 0, 0, x),
			Row1:  math.NewVec4Create(0, 1, 0, 0.4),
			Row2:  math.NewVec4Create(0, 0, 1, z),
			Color: math.NewVec4Create(shade, shade, shade, 1),
		})
	}
	return table
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	if state.spinner != nil {
		rotation := math.NewQuatFromAxisAngle(math.NewVec3Up(), float32(0.5*deltaTime), false)
		state.spinner.SetRotation(state.spinner.Local.Rotation.Mul(rotation))
	}
	return nil
}

func (g *TestGame) Render(results []*metadata.LayerPrepResult, deltaTime float64) error {
	state := g.State.(*gameState)
	state.frameCount++

	// A real embedder would execute the scheduled passes here; the testbed
	// just surfaces what a frame produced from time to time.
	if state.frameCount%300 == 0 && state.worldLayer != nil {
		stats := g.Renderer.FrameStats()
		passNames := make([]string, 0, 8)
		for _, pass := range state.worldLayer.ActivePasses() {
			passNames = append(passNames, pass.Name())
		}
		core.LogInfo("frame %d: %.1f fps, %d records, %d lights, passes %v",
			state.frameCount, core.MetricsFPS(), stats.RecordsEmitted, stats.LightsSelected, passNames)
	}
	return nil
}

func (g *TestGame) OnResize(width, height uint32) error {
	core.LogDebug("testbed resized to %dx%d", width, height)
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("testbed shutting down after %d frames", g.State.(*gameState).frameCount)
	return nil
}
