package lights

import "github.com/df07/go-principled-shading/pkg/core"

// SampleLight picks a light with selector and samples it. The returned PDF
// includes the selection probability.
func SampleLight(lights []Light, selector LightSampler, point, normal core.Vec3, sampler core.Sampler) (LightSample, Light, int, bool) {
	if len(lights) == 0 {
		return LightSample{}, nil, -1, false
	}
	light, pick, idx := selector.SampleLight(point, normal, sampler.Get1D())
	ls := light.Sample(point, normal, sampler.Get2D())
	ls.PDF *= pick
	return ls, light, idx, true
}
