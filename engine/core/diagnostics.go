package core

import "sync"

// Diagnostics collects the warn-once conditions raised during frame
// preparation. Budget overruns repeat every frame with identical causes, so
// each condition logs a single time for the lifetime of the struct. The
// owner decides the reset scope by allocating a fresh Diagnostics: the
// renderer frontend keeps one per instance rather than hiding the state in
// package globals.
type Diagnostics struct {
	mu sync.Mutex

	tooManyLights       bool
	tooManyShadowLights bool
	tooManyMorphTargets bool
	reducedLightBudget  bool
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

// WarnTooManyLights reports that the scene holds more lights than the frame
// budget allows. Fires at most once.
func (d *Diagnostics) WarnTooManyLights(sceneCount, budget int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tooManyLights {
		return
	}
	d.tooManyLights = true
	LogWarn("scene contains %d lights, the maximum is %d; excess lights are ignored", sceneCount, budget)
}

// WarnTooManyShadowLights reports that more shadow-eligible lights were
// selected than shadow maps exist for. Fires at most once.
func (d *Diagnostics) WarnTooManyShadowLights(budget int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tooManyShadowLights {
		return
	}
	d.tooManyShadowLights = true
	LogWarn("too many shadow casting lights in scene, the maximum is %d", budget)
}

// WarnTooManyMorphTargets reports a model declaring more morph targets than
// the preparation supports. Fires at most once.
func (d *Diagnostics) WarnTooManyMorphTargets(model string, count, budget int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tooManyMorphTargets {
		return
	}
	d.tooManyMorphTargets = true
	LogWarn("model '%s' declares %d morph targets, the maximum is %d; excess targets are ignored", model, count, budget)
}

// InfoReducedLightBudget reports that the device capabilities force the
// reduced light budget. Fires at most once.
func (d *Diagnostics) InfoReducedLightBudget(full, reduced int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.reducedLightBudget {
		return
	}
	d.reducedLightBudget = true
	LogInfo("device uniform capacity is limited, reducing the light budget from %d to %d", full, reduced)
}

// Fired reports whether a given condition already logged. Intended for tests
// and tooling that inspect degradation behavior.
func (d *Diagnostics) Fired() (tooManyLights, tooManyShadowLights, tooManyMorphTargets, reducedLightBudget bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tooManyLights, d.tooManyShadowLights, d.tooManyMorphTargets, d.reducedLightBudget
}
