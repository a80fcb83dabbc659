package material

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/df07/go-principled-shading/pkg/core"
)

// ErrInvalidParameter is returned when a material parameter is outside the
// domain the shading code accepts
var ErrInvalidParameter = errors.New("material: invalid parameter")

const (
	minRoughness = 0.001
	maxRoughness = 1.0
)

// ParamSet holds the named parameters of a material declaration. Values can
// be constants or textures.
type ParamSet struct {
	colors map[string]ColorSource
	floats map[string]FloatSource
}

// NewParamSet creates an empty parameter set
func NewParamSet() *ParamSet {
	return &ParamSet{
		colors: make(map[string]ColorSource),
		floats: make(map[string]FloatSource),
	}
}

// AddColor binds a color parameter to a constant
func (p *ParamSet) AddColor(name string, c core.Vec3) {
	p.colors[name] = NewSolidColor(c)
}

// AddColorSource binds a color parameter to a texture
func (p *ParamSet) AddColorSource(name string, src ColorSource) {
	p.colors[name] = src
}

// AddFloat binds a scalar parameter to a constant
func (p *ParamSet) AddFloat(name string, v float64) {
	p.floats[name] = NewConstantFloat(v)
}

// AddFloatSource binds a scalar parameter to a texture
func (p *ParamSet) AddFloatSource(name string, src FloatSource) {
	p.floats[name] = src
}

// GetColorSource returns the named color parameter or a constant default
func (p *ParamSet) GetColorSource(name string, def core.Vec3) ColorSource {
	if src, ok := p.colors[name]; ok {
		return src
	}
	return NewSolidColor(def)
}

// GetColorSourceOrNil returns the named color parameter or nil
func (p *ParamSet) GetColorSourceOrNil(name string) ColorSource {
	return p.colors[name]
}

// GetFloatSource returns the named scalar parameter or a constant default
func (p *ParamSet) GetFloatSource(name string, def float64) FloatSource {
	if src, ok := p.floats[name]; ok {
		return src
	}
	return NewConstantFloat(def)
}

// Names lists every bound parameter, sorted
func (p *ParamSet) Names() []string {
	names := make([]string, 0, len(p.colors)+len(p.floats))
	for name := range p.colors {
		names = append(names, name)
	}
	for name := range p.floats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateDisneySimpleMaterial builds a DisneySimple material from p. Defaults:
// white diffuse, black specular, eta 1.5, roughness 0.5, no normal map.
// Constant roughness is clamped into [0.001, 1]; a constant eta must be
// positive.
func CreateDisneySimpleMaterial(p *ParamSet) (*DisneySimple, error) {
	m := &DisneySimple{
		Diffuse:   p.GetColorSource("diffuse", core.NewGray(1)),
		Specular:  p.GetColorSource("specular", core.NewGray(0)),
		Roughness: p.GetFloatSource("roughness", 0.5),
		Eta:       p.GetFloatSource("eta", 1.5),
		Normal:    p.GetColorSourceOrNil("normal"),
	}

	if c, ok := m.Roughness.(*ConstantFloat); ok {
		m.Roughness = NewConstantFloat(math.Max(minRoughness, math.Min(maxRoughness, c.Value)))
	}
	if c, ok := m.Eta.(*ConstantFloat); ok {
		if !(c.Value > 0) || math.IsInf(c.Value, 0) {
			return nil, fmt.Errorf("%w: eta must be positive and finite, got %v", ErrInvalidParameter, c.Value)
		}
	}
	return m, nil
}
