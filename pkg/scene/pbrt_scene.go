package scene

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/geometry"
	"github.com/df07/go-principled-shading/pkg/lights"
	"github.com/df07/go-principled-shading/pkg/loaders"
	"github.com/df07/go-principled-shading/pkg/material"
)

// ErrUnsupported is returned for PBRT statements this renderer cannot build
var ErrUnsupported = errors.New("scene: unsupported PBRT feature")

// defaultPBRTMaterial is used by shapes declared before any Material
var defaultPBRTMaterial = material.NewDisneySimple(core.NewGray(0.5), core.Vec3{}, 0.5, 1.5)

// NewPBRTScene creates a scene from a PBRT file. Mesh and texture paths are
// resolved relative to the file.
func NewPBRTScene(filename string, logger core.Logger) (*Scene, error) {
	pbrtScene, err := loaders.LoadPBRT(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load PBRT file: %w", err)
	}
	scene, err := ConvertPBRTScene(pbrtScene, filepath.Dir(filename), logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	scene.Name = filepath.Base(filename)
	return scene, nil
}

// pbrtConverter holds the named textures and materials while a parsed
// scene is turned into shapes and lights
type pbrtConverter struct {
	baseDir       string
	logger        core.Logger
	colorTextures map[string]material.ColorSource
	floatTextures map[string]material.FloatSource
	materials     []material.Material
}

// ConvertPBRTScene builds a Scene from parsed PBRT statements
func ConvertPBRTScene(pbrtScene *loaders.PBRTScene, baseDir string, logger core.Logger) (*Scene, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}
	c := &pbrtConverter{
		baseDir:       baseDir,
		logger:        logger,
		colorTextures: make(map[string]material.ColorSource),
		floatTextures: make(map[string]material.FloatSource),
	}

	scene := &Scene{}
	if err := convertCamera(pbrtScene, scene); err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}
	convertSamplingOptions(pbrtScene, &scene.SamplingConfig)
	scene.Integrator = convertIntegratorSettings(pbrtScene)

	for i := range pbrtScene.Textures {
		if err := c.convertTexture(&pbrtScene.Textures[i]); err != nil {
			return nil, fmt.Errorf("texture %q: %w", pbrtScene.Textures[i].Name, err)
		}
	}

	c.materials = make([]material.Material, len(pbrtScene.Materials))
	for i := range pbrtScene.Materials {
		mat, err := c.convertMaterial(&pbrtScene.Materials[i])
		if err != nil {
			return nil, fmt.Errorf("material %d (%s): %w", i, pbrtScene.Materials[i].Subtype, err)
		}
		c.materials[i] = mat
	}

	for i := range pbrtScene.Shapes {
		shapes, err := c.convertShape(&pbrtScene.Shapes[i])
		if err != nil {
			return nil, fmt.Errorf("shape %d (%s): %w", i, pbrtScene.Shapes[i].Subtype, err)
		}
		scene.Shapes = append(scene.Shapes, shapes...)
	}

	for i := range pbrtScene.LightSources {
		light, err := c.convertLight(&pbrtScene.LightSources[i])
		if err != nil {
			return nil, fmt.Errorf("light %d (%s): %w", i, pbrtScene.LightSources[i].Subtype, err)
		}
		scene.Lights = append(scene.Lights, light)
	}

	return scene, nil
}

// convertCamera converts the PBRT camera and film to a camera config
func convertCamera(pbrtScene *loaders.PBRTScene, scene *Scene) error {
	cameraConfig := geometry.CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 1.0,
		VFov:        90.0,
	}

	if pbrtScene.LookAt != nil && pbrtScene.LookAtTo != nil && pbrtScene.LookAtUp != nil {
		cameraConfig.Center = *pbrtScene.LookAt
		cameraConfig.LookAt = *pbrtScene.LookAtTo
		cameraConfig.Up = *pbrtScene.LookAtUp
	}

	width, height := 400, 400
	if pbrtScene.Film != nil {
		if w, ok := pbrtScene.Film.GetFloatParam("xresolution"); ok {
			if w < 1 || w > 8192 {
				return fmt.Errorf("invalid image width %v: must be between 1 and 8192", w)
			}
			width = int(w)
			scene.SamplingConfig.Width = width
		}
		if h, ok := pbrtScene.Film.GetFloatParam("yresolution"); ok {
			if h < 1 || h > 8192 {
				return fmt.Errorf("invalid image height %v: must be between 1 and 8192", h)
			}
			height = int(h)
			scene.SamplingConfig.Height = height
		}
	}
	cameraConfig.Width = width
	cameraConfig.AspectRatio = float64(width) / float64(height)

	if pbrtScene.Camera != nil {
		if pbrtScene.Camera.Subtype != "perspective" {
			return fmt.Errorf("%w: camera %q", ErrUnsupported, pbrtScene.Camera.Subtype)
		}
		if fov, ok := pbrtScene.Camera.GetFloatParam("fov"); ok {
			if fov <= 0 || fov >= 180 {
				return fmt.Errorf("invalid camera FOV %v: must be between 0 and 180 degrees", fov)
			}
			cameraConfig.VFov = verticalFOV(fov, cameraConfig.AspectRatio)
		}
	}

	scene.CameraConfig = cameraConfig
	return nil
}

// verticalFOV converts a PBRT fov, which spans the shorter image axis, to a
// vertical field of view
func verticalFOV(fov, aspect float64) float64 {
	if aspect >= 1 {
		return fov
	}
	half := math.Tan(fov * math.Pi / 360)
	return 2 * math.Atan(half/aspect) * 180 / math.Pi
}

// convertSamplingOptions reads the sampler and integrator settings a file
// may carry
func convertSamplingOptions(pbrtScene *loaders.PBRTScene, config *SamplingConfig) {
	if pbrtScene.Sampler != nil {
		if spp, ok := pbrtScene.Sampler.GetFloatParam("pixelsamples"); ok && spp >= 1 {
			config.SamplesPerPixel = int(spp)
		}
	}
	if pbrtScene.Integrator != nil {
		if depth, ok := pbrtScene.Integrator.GetFloatParam("maxdepth"); ok && depth >= 1 {
			config.MaxDepth = int(depth)
		}
		if rr, ok := pbrtScene.Integrator.GetFloatParam("rrminbounces"); ok && rr >= 0 {
			config.RussianRouletteMinBounces = int(rr)
		}
	}
}

// convertIntegratorSettings reads the Integrator directive. Integrators
// other than path and field are left to the renderer's default. A field
// integrator defaults to the mask field on a black background.
func convertIntegratorSettings(pbrtScene *loaders.PBRTScene) IntegratorSettings {
	stmt := pbrtScene.Integrator
	if stmt == nil {
		return IntegratorSettings{}
	}
	switch stmt.Subtype {
	case "path":
		return IntegratorSettings{Name: "path"}
	case "field":
	default:
		return IntegratorSettings{}
	}
	settings := IntegratorSettings{Name: "field"}
	settings.Field = "mask"
	if field, ok := stmt.GetStringParam("field"); ok {
		settings.Field = field
	}
	if rgb, ok := stmt.GetRGBParam("default"); ok {
		settings.Undefined = *rgb
	}
	return settings
}

func (c *pbrtConverter) resolvePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.baseDir, name)
}

// colorParam returns a color parameter as a constant or a named color texture
func (c *pbrtConverter) colorParam(stmt *loaders.PBRTStatement, name string) (material.ColorSource, bool, error) {
	if texName, ok := stmt.GetTextureParam(name); ok {
		tex, exists := c.colorTextures[texName]
		if !exists {
			return nil, false, fmt.Errorf("%s: unknown color texture %q", name, texName)
		}
		return tex, true, nil
	}
	if rgb, ok := stmt.GetRGBParam(name); ok {
		return material.NewSolidColor(*rgb), true, nil
	}
	if _, exists := stmt.Parameters[name]; exists {
		return nil, false, fmt.Errorf("%s: expected a color or texture", name)
	}
	return nil, false, nil
}

// floatParam returns a scalar parameter as a constant or a named float texture
func (c *pbrtConverter) floatParam(stmt *loaders.PBRTStatement, name string) (material.FloatSource, bool, error) {
	if texName, ok := stmt.GetTextureParam(name); ok {
		tex, exists := c.floatTextures[texName]
		if !exists {
			return nil, false, fmt.Errorf("%s: unknown float texture %q", name, texName)
		}
		return tex, true, nil
	}
	if v, ok := stmt.GetFloatParam(name); ok {
		return material.NewConstantFloat(v), true, nil
	}
	if _, exists := stmt.Parameters[name]; exists {
		return nil, false, fmt.Errorf("%s: expected a float or texture", name)
	}
	return nil, false, nil
}

// convertTexture registers a named texture. Float textures are color
// textures read through their luminance.
func (c *pbrtConverter) convertTexture(stmt *loaders.PBRTStatement) error {
	var tex material.ColorSource

	switch stmt.Subtype {
	case "constant":
		value, ok, err := c.colorParam(stmt, "value")
		if err != nil {
			return err
		}
		if !ok {
			value = material.NewSolidColor(core.NewGray(1))
		}
		tex = value

	case "checkerboard":
		uScale, vScale := 1.0, 1.0
		if v, ok := stmt.GetFloatParam("uscale"); ok {
			uScale = v
		}
		if v, ok := stmt.GetFloatParam("vscale"); ok {
			vScale = v
		}
		even, ok, err := c.colorParam(stmt, "tex1")
		if err != nil {
			return err
		}
		if !ok {
			even = material.NewSolidColor(core.NewGray(1))
		}
		odd, ok, err := c.colorParam(stmt, "tex2")
		if err != nil {
			return err
		}
		if !ok {
			odd = material.NewSolidColor(core.NewGray(0))
		}
		tex = material.NewCheckerTexture(uScale, vScale, even, odd)

	case "imagemap":
		filename, ok := stmt.GetStringParam("filename")
		if !ok {
			return fmt.Errorf("imagemap requires a filename")
		}
		img, err := loaders.LoadImage(c.resolvePath(filename))
		if err != nil {
			return err
		}
		if gamma, ok := stmt.GetFloatParam("gamma"); ok && gamma > 0 {
			img.Linearize(gamma)
		}
		filter := material.FilterBilinear
		if name, ok := stmt.GetStringParam("filter"); ok && (name == "point" || name == "nearest") {
			filter = material.FilterNearest
		}
		tex = img.Texture(filter)

	case "scale":
		base, ok, err := c.colorParam(stmt, "tex")
		if err != nil {
			return err
		}
		if !ok {
			base = material.NewSolidColor(core.NewGray(1))
		}
		scale, ok, err := c.colorParam(stmt, "scale")
		if err != nil {
			return err
		}
		if !ok {
			scale = material.NewSolidColor(core.NewGray(1))
		}
		tex = material.NewScaledColor(base, scale)

	case "uv":
		tex = material.UVTexture{}

	default:
		return fmt.Errorf("%w: texture class %q", ErrUnsupported, stmt.Subtype)
	}

	switch stmt.ValueType {
	case "color", "spectrum", "rgb":
		c.colorTextures[stmt.Name] = tex
	case "float":
		c.floatTextures[stmt.Name] = &material.LuminanceFloat{Source: tex}
	default:
		return fmt.Errorf("%w: texture value type %q", ErrUnsupported, stmt.ValueType)
	}
	return nil
}

// convertMaterial converts a PBRT material to a DisneySimple material.
// "matte" keeps only its diffuse color.
func (c *pbrtConverter) convertMaterial(stmt *loaders.PBRTStatement) (material.Material, error) {
	params := material.NewParamSet()

	switch stmt.Subtype {
	case "disneysimple":
		for _, name := range []string{"diffuse", "specular", "normal"} {
			src, ok, err := c.colorParam(stmt, name)
			if err != nil {
				return nil, err
			}
			if ok {
				params.AddColorSource(name, src)
			}
		}
		for _, name := range []string{"roughness", "eta"} {
			src, ok, err := c.floatParam(stmt, name)
			if err != nil {
				return nil, err
			}
			if ok {
				params.AddFloatSource(name, src)
			}
		}

	case "matte":
		kd, ok, err := c.colorParam(stmt, "Kd")
		if err != nil {
			return nil, err
		}
		if !ok {
			kd = material.NewSolidColor(core.NewGray(0.5))
		}
		params.AddColorSource("diffuse", kd)
		params.AddColor("specular", core.Vec3{})

	default:
		return nil, fmt.Errorf("%w: material %q", ErrUnsupported, stmt.Subtype)
	}

	return material.CreateDisneySimpleMaterial(params)
}

// shapeMaterial returns the material a shape was declared with, or an
// emitter when an area light was active
func (c *pbrtConverter) shapeMaterial(stmt *loaders.PBRTStatement) material.Material {
	if stmt.IsAreaLight() {
		emission := core.NewGray(1)
		if L, ok := stmt.AreaLight.GetRGBParam("L"); ok {
			emission = *L
		}
		if scale, ok := stmt.AreaLight.GetFloatParam("scale"); ok {
			emission = emission.Multiply(scale)
		}
		if twoSided, ok := stmt.AreaLight.GetBoolParam("twosided"); ok && twoSided {
			c.logger.Printf("area light: twosided is not supported, emitting from the front face only")
		}
		return material.NewEmissive(emission)
	}
	if stmt.MaterialIndex >= 0 && stmt.MaterialIndex < len(c.materials) {
		return c.materials[stmt.MaterialIndex]
	}
	return defaultPBRTMaterial
}

// convertShape converts a PBRT shape to world-space shapes
func (c *pbrtConverter) convertShape(stmt *loaders.PBRTStatement) ([]geometry.Shape, error) {
	mat := c.shapeMaterial(stmt)

	switch stmt.Subtype {
	case "sphere":
		radius := 1.0
		if r, ok := stmt.GetFloatParam("radius"); ok {
			if r <= 0 {
				return nil, fmt.Errorf("invalid sphere radius %v: must be positive", r)
			}
			radius = r
		}
		center := loaders.TransformPoint(stmt.Transform, core.Vec3{})
		scale, uniform := transformScale(stmt.Transform)
		if !uniform {
			c.logger.Printf("sphere: non-uniform scale is approximated by its mean")
		}
		return []geometry.Shape{geometry.NewSphere(center, radius*scale, mat)}, nil

	case "trianglemesh":
		data, err := triangleMeshFromStatement(stmt)
		if err != nil {
			return nil, err
		}
		return c.meshShape(stmt, *data, mat)

	case "objmesh", "plymesh":
		filename, ok := stmt.GetStringParam("filename")
		if !ok {
			return nil, fmt.Errorf("%s requires a filename", stmt.Subtype)
		}
		var data *geometry.TriangleMeshData
		var err error
		if stmt.Subtype == "objmesh" {
			data, err = loaders.LoadOBJ(c.resolvePath(filename), c.logger)
		} else {
			data, err = loaders.LoadPLY(c.resolvePath(filename))
		}
		if err != nil {
			return nil, err
		}
		return c.meshShape(stmt, *data, mat)

	case "gltf":
		filename, ok := stmt.GetStringParam("filename")
		if !ok {
			return nil, fmt.Errorf("gltf requires a filename")
		}
		prims, err := loaders.LoadGLTF(c.resolvePath(filename))
		if err != nil {
			return nil, err
		}
		useFileMaterials := !stmt.IsAreaLight() && stmt.MaterialIndex < 0
		if v, ok := stmt.GetBoolParam("usefilematerials"); ok && !stmt.IsAreaLight() {
			useFileMaterials = v
		}

		var shapes []geometry.Shape
		for _, prim := range prims {
			primMat := mat
			if useFileMaterials {
				diffuse, specular, roughness := prim.Material.DisneyParams()
				primMat = material.NewDisneySimple(diffuse, specular, roughness, 1.5)
			}
			meshShapes, err := c.meshShape(stmt, prim.Mesh, primMat)
			if err != nil {
				return nil, fmt.Errorf("primitive %s: %w", prim.Name, err)
			}
			shapes = append(shapes, meshShapes...)
		}
		return shapes, nil

	default:
		return nil, fmt.Errorf("%w: shape %q", ErrUnsupported, stmt.Subtype)
	}
}

// meshShape transforms object-space mesh data into a world-space mesh
func (c *pbrtConverter) meshShape(stmt *loaders.PBRTStatement, data geometry.TriangleMeshData, mat material.Material) ([]geometry.Shape, error) {
	data = loaders.TransformMesh(data, stmt.Transform)
	if stmt.Reverse {
		data = reverseMesh(data)
	}
	mesh, err := geometry.NewTriangleMesh(data, mat)
	if err != nil {
		return nil, err
	}
	return []geometry.Shape{mesh}, nil
}

// triangleMeshFromStatement reads P, indices and the optional N and uv/st
// arrays of an inline triangle mesh
func triangleMeshFromStatement(stmt *loaders.PBRTStatement) (*geometry.TriangleMeshData, error) {
	points, err := stmt.GetFloatsParam("P")
	if err != nil {
		return nil, err
	}
	if len(points) == 0 || len(points)%3 != 0 {
		return nil, fmt.Errorf("trianglemesh needs P as a multiple of 3 values, got %d", len(points))
	}
	data := &geometry.TriangleMeshData{Vertices: vec3s(points)}

	data.Indices, err = stmt.GetIntsParam("indices")
	if err != nil {
		return nil, err
	}
	if data.Indices == nil && len(data.Vertices) == 3 {
		data.Indices = []int{0, 1, 2}
	}

	normals, err := stmt.GetFloatsParam("N")
	if err != nil {
		return nil, err
	}
	if normals != nil {
		if len(normals) != len(points) {
			return nil, fmt.Errorf("trianglemesh N has %d values, want %d", len(normals), len(points))
		}
		data.Normals = vec3s(normals)
	}

	uvs, err := stmt.GetFloatsParam("uv")
	if err != nil {
		return nil, err
	}
	if uvs == nil {
		if uvs, err = stmt.GetFloatsParam("st"); err != nil {
			return nil, err
		}
	}
	if uvs != nil {
		if len(uvs) != 2*len(data.Vertices) {
			return nil, fmt.Errorf("trianglemesh uv has %d values, want %d", len(uvs), 2*len(data.Vertices))
		}
		data.UVs = make([]core.Vec2, len(data.Vertices))
		for i := range data.UVs {
			data.UVs[i] = core.NewVec2(uvs[2*i], uvs[2*i+1])
		}
	}
	return data, nil
}

func vec3s(values []float64) []core.Vec3 {
	out := make([]core.Vec3, len(values)/3)
	for i := range out {
		out[i] = core.NewVec3(values[3*i], values[3*i+1], values[3*i+2])
	}
	return out
}

// reverseMesh flips triangle winding and vertex normals
func reverseMesh(data geometry.TriangleMeshData) geometry.TriangleMeshData {
	indices := make([]int, len(data.Indices))
	copy(indices, data.Indices)
	for i := 0; i+2 < len(indices); i += 3 {
		indices[i+1], indices[i+2] = indices[i+2], indices[i+1]
	}
	data.Indices = indices

	if data.Normals != nil {
		normals := make([]core.Vec3, len(data.Normals))
		for i, n := range data.Normals {
			normals[i] = n.Negate()
		}
		data.Normals = normals
	}
	return data
}

// transformScale returns the mean length the transform gives the unit axes
// and whether the three lengths agree
func transformScale(m mgl64.Mat4) (float64, bool) {
	x := loaders.TransformVector(m, core.NewVec3(1, 0, 0)).Length()
	y := loaders.TransformVector(m, core.NewVec3(0, 1, 0)).Length()
	z := loaders.TransformVector(m, core.NewVec3(0, 0, 1)).Length()
	mean := (x + y + z) / 3
	const tolerance = 1e-6
	uniform := math.Abs(x-mean) < tolerance*mean && math.Abs(y-mean) < tolerance*mean && math.Abs(z-mean) < tolerance*mean
	return mean, uniform
}

// convertLight converts a PBRT light to a light source
func (c *pbrtConverter) convertLight(stmt *loaders.PBRTStatement) (lights.Light, error) {
	scale := 1.0
	if s, ok := stmt.GetFloatParam("scale"); ok {
		scale = s
	}

	switch stmt.Subtype {
	case "point":
		intensity := core.NewGray(1)
		if rgb, ok := stmt.GetRGBParam("I"); ok {
			intensity = *rgb
		}
		position := core.Vec3{}
		if pos, ok := stmt.GetPoint3Param("from"); ok {
			position = *pos
		}
		position = loaders.TransformPoint(stmt.Transform, position)
		return lights.NewPointLight(position, intensity.Multiply(scale)), nil

	case "infinite":
		radiance := core.NewGray(1)
		if rgb, ok := stmt.GetRGBParam("L"); ok {
			radiance = *rgb
		}
		if _, ok := stmt.GetStringParam("mapname"); ok {
			c.logger.Printf("infinite light: environment maps are not supported, using constant L")
		}
		return lights.NewUniformInfiniteLight(radiance.Multiply(scale)), nil

	default:
		return nil, fmt.Errorf("%w: light %q", ErrUnsupported, stmt.Subtype)
	}
}
