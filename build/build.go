package build

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Tnze/go-mc/save"
	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/b1naryth1ef/topshade"
	"github.com/b1naryth1ef/topshade/anvil"
	"github.com/b1naryth1ef/topshade/dl"
	"github.com/b1naryth1ef/topshade/logger"
)

type Options struct {
	// ForceClean ignores the timestamps of previous builds.
	ForceClean bool
}

func ensureDirectory(path string) error {
	err := os.MkdirAll(path, 0o755)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	return nil
}

// detectVersion reads the game version from the level.dat above a region
// directory.
func detectVersion(regionPath string) (string, error) {
	levelPath := filepath.Join(regionPath, "..", "level.dat")

	fd, err := os.Open(levelPath)
	if err != nil {
		return "", err
	}
	defer fd.Close()

	r, err := gzip.NewReader(fd)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", levelPath, err)
	}

	level, err := save.ReadLevel(r)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", levelPath, err)
	}
	return level.Data.Version.Name, nil
}

func needsAssets(layers []*topshade.LayerConfigBlock) bool {
	for _, layer := range layers {
		if layer.Render == "texture" || layer.Render == "biome" {
			return true
		}
	}
	return false
}

func newPalette(layer *topshade.LayerConfigBlock, assets *topshade.AssetLoader) (topshade.Palette, error) {
	switch layer.Render {
	case "texture":
		return topshade.NewTexturePalette(assets)
	case "biome":
		return topshade.NewBiomePaletteFromAssets(assets)
	case "static":
		return topshade.DefaultStaticPalette(), nil
	}
	return nil, fmt.Errorf("unsupported renderer '%s'", layer.Render)
}

// loadAssets opens the client JAR matching the world, downloading it into
// resPath on first use.
func loadAssets(mapCfg *topshade.MapConfigBlock, resPath string) (*topshade.AssetLoader, string, error) {
	version := mapCfg.Version
	if version == "" {
		var err error
		version, err = detectVersion(mapCfg.Path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to detect version, set it in the map block: %w", err)
		}
	}

	clientJarPath := filepath.Join(resPath, fmt.Sprintf("client-%s.jar", version))
	if _, err := os.Stat(clientJarPath); errors.Is(err, os.ErrNotExist) {
		logger.Info("downloading client jar", zap.String("version", version))
		if err := dl.DownloadClientJAR(version, clientJarPath); err != nil {
			return nil, "", err
		}
	}

	assets, err := topshade.NewAssetLoaderFromClientJAR(clientJarPath)
	if err != nil {
		return nil, "", err
	}
	return assets, version, nil
}

func buildMap(config *topshade.Config, opts Options, mapCfg *topshade.MapConfigBlock, layers map[string]*topshade.LayerConfigBlock, outputPath string) (*MapManifest, error) {
	tilePath := filepath.Join(outputPath, "tiles", mapCfg.Name)
	if err := ensureDirectory(tilePath); err != nil {
		return nil, err
	}

	dim, err := anvil.Open(mapCfg.Path)
	if err != nil {
		return nil, err
	}

	mapLayers := make([]*topshade.LayerConfigBlock, 0, len(mapCfg.Layers))
	for _, name := range mapCfg.Layers {
		mapLayers = append(mapLayers, layers[name])
	}

	manifest := &MapManifest{Name: mapCfg.Name, Version: mapCfg.Version}

	var assets *topshade.AssetLoader
	if needsAssets(mapLayers) {
		assets, manifest.Version, err = loadAssets(mapCfg, filepath.Join(outputPath, "res"))
		if err != nil {
			return nil, err
		}
		defer assets.Close()
	}

	var errs *multierror.Error
	for _, layerCfg := range mapLayers {
		layerPath := filepath.Join(tilePath, layerCfg.Name)
		if err := ensureDirectory(layerPath); err != nil {
			return nil, err
		}

		palette, err := newPalette(layerCfg, assets)
		if err != nil {
			return nil, fmt.Errorf("layer '%s': %w", layerCfg.Name, err)
		}
		mode, err := topshade.ParseHeightMode(layerCfg.HeightMode)
		if err != nil {
			return nil, fmt.Errorf("layer '%s': %w", layerCfg.Name, err)
		}
		renderer := topshade.NewTopShadeRenderer(palette, mode)

		metaPath := filepath.Join(layerPath, "build.json")
		meta := &Meta{}
		if !opts.ForceClean {
			meta, err = LoadMeta(metaPath)
			if err != nil {
				return nil, err
			}
		}

		start := time.Now()
		result, err := RenderLayer(dim, renderer, layerPath, LayerOptions{
			Concurrency:      config.Concurrency,
			ThumbnailSize:    mapCfg.ThumbnailSize,
			RegionTimestamps: meta.RegionTimestamps,
		})
		if result == nil {
			return nil, fmt.Errorf("layer '%s': %w", layerCfg.Name, err)
		}
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("layer '%s': %w", layerCfg.Name, err))
		}

		meta.RegionTimestamps = result.RegionTimestamps
		if err := meta.Save(metaPath); err != nil {
			return nil, err
		}

		logger.Info("finished rendering layer",
			zap.String("map", mapCfg.Name),
			zap.String("layer", layerCfg.Name),
			zap.Duration("took", time.Since(start)),
			zap.String("rendered", humanize.Comma(int64(result.RenderedRegions))),
			zap.String("skipped", humanize.Comma(int64(result.SkippedRegions))),
			zap.String("written", humanize.Bytes(result.BytesWritten)))

		if tp, ok := palette.(*topshade.TexturePalette); ok {
			if missing := tp.MissingBlockStates(); len(missing) > 0 {
				logger.Warn("block states without a texture", zap.Strings("blocks", missing))
			}
		}

		manifest.Layers = append(manifest.Layers, LayerManifest{
			Name:      layerCfg.Name,
			Render:    layerCfg.Render,
			TileSize:  topshade.RegionPixels,
			Opacity:   layerCfg.Opacity,
			Thumbnail: mapCfg.ThumbnailSize,
		})
	}

	return manifest, errs.ErrorOrNil()
}

func writeManifest(path string, maps []MapManifest) error {
	data, err := json.MarshalIndent(maps, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(path, "maps.json"), data, 0o644)
}

// Build renders every map of config. A map that fails to render a region
// still gets its other regions and layers written.
func Build(config *topshade.Config, opts Options) error {
	outputs := map[string]string{}
	for _, output := range config.Outputs {
		for _, dir := range []string{output.Path, filepath.Join(output.Path, "tiles"), filepath.Join(output.Path, "res")} {
			if err := ensureDirectory(dir); err != nil {
				return err
			}
		}
		outputs[output.Name] = output.Path
	}

	layers := map[string]*topshade.LayerConfigBlock{}
	for _, layer := range config.Layers {
		layers[layer.Name] = layer
	}

	var errs *multierror.Error
	manifests := map[string][]MapManifest{}
	for _, output := range config.Outputs {
		manifests[output.Name] = []MapManifest{}
	}
	for _, mapCfg := range config.Maps {
		manifest, err := buildMap(config, opts, mapCfg, layers, outputs[mapCfg.Output])
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("map '%s': %w", mapCfg.Name, err))
		}
		if manifest != nil {
			manifests[mapCfg.Output] = append(manifests[mapCfg.Output], *manifest)
		}
	}

	for _, output := range config.Outputs {
		if err := writeManifest(output.Path, manifests[output.Name]); err != nil {
			return err
		}
	}

	return errs.ErrorOrNil()
}
