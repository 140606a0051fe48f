package material

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/UPBGE/upbge-sub036/asset"
	"github.com/UPBGE/upbge-sub036/closure"
	"github.com/UPBGE/upbge-sub036/types"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var builtinPresets []byte

// Preset file layout. Files ending in .toml are decoded as TOML, anything
// else as YAML.
type presetFile struct {
	// Other preset files, resolved relative to the including one. Their
	// presets precede the ones defined in the including file.
	Include []string      `yaml:"include" toml:"include"`
	Presets []presetEntry `yaml:"presets" toml:"presets"`
}

// Limit on nested includes; also stops include cycles.
const maxIncludeDepth = 8

type presetEntry struct {
	Name       string    `yaml:"name" toml:"name"`
	Method     string    `yaml:"method" toml:"method"`
	Color      []float32 `yaml:"color" toml:"color"`
	Radius     []float32 `yaml:"radius" toml:"radius"`
	Scale      *float32  `yaml:"scale" toml:"scale"`
	IOR        *iorValue `yaml:"ior" toml:"ior"`
	Roughness  *float32  `yaml:"roughness" toml:"roughness"`
	Anisotropy float32   `yaml:"anisotropy" toml:"anisotropy"`
}

// An IOR can be given either as a number or as a KnownIORs name.
type iorValue float32

func (v *iorValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number or a material name for %q", node.Line, ParamIOR)
	}

	if err := v.UnmarshalText([]byte(node.Value)); err != nil {
		return fmt.Errorf("line %d: %v", node.Line, err)
	}
	return nil
}

func (v *iorValue) UnmarshalText(text []byte) error {
	value := strings.Trim(string(text), `"'`)
	if f, err := strconv.ParseFloat(value, 32); err == nil {
		*v = iorValue(f)
		return nil
	}

	ior, err := IOR(value)
	if err != nil {
		return err
	}
	*v = iorValue(ior)
	return nil
}

// Presets is an ordered, name addressable list of materials.
type Presets []Subsurface

// Lookup a preset by name.
func (p Presets) Find(name string) (Subsurface, bool) {
	for _, m := range p {
		if m.Name == name {
			return m, true
		}
	}
	return Subsurface{}, false
}

// Load the presets bundled with the module.
func BuiltinPresets() Presets {
	presets, err := decodePresets(builtinPresets)
	if err != nil {
		panic(fmt.Sprintf("material: invalid builtin presets: %v", err))
	}
	return presets
}

// Load presets from a local file or an http/https URL, following includes.
func LoadPresets(ctx context.Context, location string) (Presets, error) {
	res, err := asset.Open(ctx, location, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return loadResource(ctx, res, 0)
}

// Read presets from a YAML stream. Includes are resolved relative to the
// working directory.
func ReadPresets(r io.Reader) (Presets, error) {
	return loadResource(context.Background(), asset.FromStream("presets.yaml", r), 0)
}

func loadResource(ctx context.Context, res *asset.Resource, depth int) (Presets, error) {
	data, err := io.ReadAll(res)
	if err != nil {
		return nil, err
	}

	file, err := parsePresetFile(data, res.Ext())
	if err != nil {
		return nil, fmt.Errorf("%s: %v", res.Path(), err)
	}

	var entries []Subsurface
	for _, location := range file.Include {
		if depth >= maxIncludeDepth {
			return nil, fmt.Errorf("%s: includes nested deeper than %d levels", res.Path(), maxIncludeDepth)
		}

		included, err := asset.Open(ctx, location, res)
		if err != nil {
			return nil, err
		}
		presets, err := loadResource(ctx, included, depth+1)
		included.Close()
		if err != nil {
			return nil, err
		}
		entries = append(entries, presets...)
	}

	presets, err := file.materials()
	if err != nil {
		return nil, fmt.Errorf("%s: %v", res.Path(), err)
	}
	return mergePresets(append(entries, presets...))
}

func decodePresets(data []byte) (Presets, error) {
	file, err := parsePresetFile(data, ".yaml")
	if err != nil {
		return nil, err
	}
	if len(file.Include) != 0 {
		return nil, fmt.Errorf("builtin presets cannot include other files")
	}
	presets, err := file.materials()
	if err != nil {
		return nil, err
	}
	return mergePresets(presets)
}

func parsePresetFile(data []byte, ext string) (presetFile, error) {
	var file presetFile
	var err error
	if strings.EqualFold(ext, ".toml") {
		err = toml.Unmarshal(data, &file)
	} else {
		err = yaml.Unmarshal(data, &file)
	}
	return file, err
}

func (f presetFile) materials() ([]Subsurface, error) {
	out := make([]Subsurface, 0, len(f.Presets))
	for index, entry := range f.Presets {
		m, err := entry.toMaterial()
		if err != nil {
			return nil, fmt.Errorf("preset %d: %v", index, err)
		}
		if err = m.Validate(); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Reject duplicate names across all loaded files.
func mergePresets(list []Subsurface) (Presets, error) {
	seen := make(map[string]struct{}, len(list))
	for _, m := range list {
		if _, dup := seen[m.Name]; dup {
			return nil, fmt.Errorf("duplicate preset name %q", m.Name)
		}
		seen[m.Name] = struct{}{}
	}
	return Presets(list), nil
}

func (e presetEntry) toMaterial() (Subsurface, error) {
	if e.Name == "" {
		return Subsurface{}, fmt.Errorf("material name cannot be empty")
	}

	m := Default(e.Name)

	if e.Method != "" {
		method, ok := closure.MethodFromName(e.Method)
		if !ok {
			return m, fmt.Errorf("material %q: unknown subsurface method %q", e.Name, e.Method)
		}
		m.Method = method
	}

	var err error
	if e.Color != nil {
		if m.Color, err = vec3Param(e.Name, ParamColor, e.Color); err != nil {
			return m, err
		}
	}
	if e.Radius != nil {
		if m.Radius, err = vec3Param(e.Name, ParamRadius, e.Radius); err != nil {
			return m, err
		}
	}
	if e.Scale != nil {
		m.Scale = *e.Scale
	}
	if e.IOR != nil {
		m.IOR = float32(*e.IOR)
	}
	m.Roughness = e.Roughness
	m.Anisotropy = e.Anisotropy

	return m, nil
}

func vec3Param(name, param string, v []float32) (types.Vec3, error) {
	switch len(v) {
	case 1:
		return types.Splat(v[0]), nil
	case 3:
		return types.XYZ(v[0], v[1], v[2]), nil
	}
	return types.Vec3{}, fmt.Errorf("material %q: parameter %q expects 1 or 3 components; got %d", name, param, len(v))
}
