package core

import "sync"

const AVG_COUNT uint8 = 30

// FrameStats summarizes a single preparation pass. Filled by the layer each
// frame and folded into the metrics state for averaging.
type FrameStats struct {
	NodesVisited    int
	ModelsPrepared  int
	RecordsEmitted  int
	LightsSelected  int
	ShadowMaps      int
	PassesScheduled int
	PrepMS          float64
}

type MetricsState struct {
	FrameAVGCounter    uint8
	MStimes            [AVG_COUNT]float64
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64
	LastStats          FrameStats
}

var onceMetrics sync.Once
var metricsState *MetricsState

func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = &MetricsState{}
	})
	return nil
}

// MetricsUpdate folds one frame's preparation stats into the rolling
// averages. frameElapsedTime is in seconds.
func MetricsUpdate(frameElapsedTime float64, stats FrameStats) {
	if metricsState == nil {
		return
	}
	frameMS := frameElapsedTime * 1000.0
	metricsState.MStimes[metricsState.FrameAVGCounter] = frameMS
	if metricsState.FrameAVGCounter == AVG_COUNT-1 {
		sum := 0.0
		for i := uint8(0); i < AVG_COUNT; i++ {
			sum += metricsState.MStimes[i]
		}
		metricsState.MSavg = sum / float64(AVG_COUNT)
	}
	metricsState.FrameAVGCounter++
	metricsState.FrameAVGCounter %= AVG_COUNT

	metricsState.AccumulatedFrameMS += frameMS
	if metricsState.AccumulatedFrameMS > 1000 {
		metricsState.FPS = float64(metricsState.Frames)
		metricsState.AccumulatedFrameMS -= 1000
		metricsState.Frames = 0
	}

	metricsState.Frames++
	metricsState.LastStats = stats
}

func MetricsFPS() float64 {
	if metricsState == nil {
		return 0
	}
	return metricsState.FPS
}

func MetricsFrameTime() float64 {
	if metricsState == nil {
		return 0
	}
	return metricsState.MSavg
}

func MetricsLastFrame() FrameStats {
	if metricsState == nil {
		return FrameStats{}
	}
	return metricsState.LastStats
}
