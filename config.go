package topshade

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

type Config struct {
	Concurrency int                  `hcl:"concurrency,optional"`
	LogLevel    string               `hcl:"log_level,optional"`
	LogFile     string               `hcl:"log_file,optional"`
	Outputs     []*OutputConfigBlock `hcl:"output,block"`
	Layers      []*LayerConfigBlock  `hcl:"layer,block"`
	Maps        []*MapConfigBlock    `hcl:"map,block"`
}

type OutputConfigBlock struct {
	Name string `hcl:"name,label"`
	Path string `hcl:"path"`
}

type LayerConfigBlock struct {
	Name       string  `hcl:"name,label"`
	Render     string  `hcl:"render"`
	HeightMode string  `hcl:"height_mode,optional"`
	Opacity    float64 `hcl:"opacity,optional"`
}

type MapConfigBlock struct {
	Name          string   `hcl:"name,label"`
	Output        string   `hcl:"output"`
	Path          string   `hcl:"path"`
	Layers        []string `hcl:"layers"`
	Version       string   `hcl:"version,optional"`
	ThumbnailSize int      `hcl:"thumbnail_size,optional"`
}

func newHCLEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{},
		Functions: map[string]function.Function{},
	}
}

func LoadConfig(path string) (*Config, error) {
	var cfg Config
	evalCtx := newHCLEvalContext()
	err := hclsimple.DecodeFile(path, evalCtx, &cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every reference between blocks resolves.
func (c *Config) Validate() error {
	outputs := map[string]struct{}{}
	for _, output := range c.Outputs {
		outputs[output.Name] = struct{}{}
	}

	layers := map[string]struct{}{}
	for _, layer := range c.Layers {
		switch layer.Render {
		case "texture", "biome", "static":
		default:
			return fmt.Errorf("layer '%s': unsupported renderer '%s'", layer.Name, layer.Render)
		}
		if _, err := ParseHeightMode(layer.HeightMode); err != nil {
			return fmt.Errorf("layer '%s': %w", layer.Name, err)
		}
		layers[layer.Name] = struct{}{}
	}

	for _, m := range c.Maps {
		if _, ok := outputs[m.Output]; !ok {
			return fmt.Errorf("map '%s': unknown output '%s'", m.Name, m.Output)
		}
		for _, l := range m.Layers {
			if _, ok := layers[l]; !ok {
				return fmt.Errorf("map '%s': unknown layer '%s'", m.Name, l)
			}
		}
	}
	return nil
}
