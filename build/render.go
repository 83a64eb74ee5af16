package build

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/nfnt/resize"
	"go.uber.org/zap"

	"github.com/b1naryth1ef/topshade"
	"github.com/b1naryth1ef/topshade/anvil"
	"github.com/b1naryth1ef/topshade/logger"
)

type LayerOptions struct {
	Concurrency int

	// ThumbnailSize is the edge length of r.X.Z.thumb.png, zero to skip it.
	ThumbnailSize int

	// RegionTimestamps of a previous build. Regions whose chunks have not
	// changed since, and whose tile still exists, are not rendered again.
	RegionTimestamps map[string]int32
}

type LayerResult struct {
	sync.Mutex

	RenderedRegions  int
	SkippedRegions   int
	BytesWritten     uint64
	RegionTimestamps map[string]int32
}

func regionName(x, z topshade.RCoord) string {
	return fmt.Sprintf("r.%d.%d", x, z)
}

// preloadedDimension serves a region that is already in memory and falls back
// to the directory for its neighbours.
type preloadedDimension struct {
	*anvil.Dimension
	region *anvil.Region
}

func (d preloadedDimension) Region(x, z topshade.RCoord) (topshade.Region, bool) {
	if x == d.region.X && z == d.region.Z {
		return d.region, true
	}
	return d.Dimension.Region(x, z)
}

// RenderLayer renders every region of dim into dst. Regions are rendered
// concurrently, every region on its own goroutine. Failed regions do not stop
// the others and are reported together.
func RenderLayer(dim *anvil.Dimension, renderer *topshade.TopShadeRenderer, dst string, opts LayerOptions) (*LayerResult, error) {
	coords, err := dim.Regions()
	if err != nil {
		return nil, err
	}

	result := &LayerResult{
		RegionTimestamps: make(map[string]int32),
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	guard := make(chan struct{}, concurrency)

	var (
		wg      sync.WaitGroup
		errLock sync.Mutex
		errs    *multierror.Error
	)
	for _, c := range coords {
		guard <- struct{}{}
		wg.Add(1)
		go func(c anvil.RegionCoord) {
			defer wg.Done()
			defer func() {
				<-guard
			}()

			if err := renderRegion(dim, c, renderer, dst, opts, result); err != nil {
				errLock.Lock()
				errs = multierror.Append(errs, err)
				errLock.Unlock()
			}
		}(c)
	}
	wg.Wait()

	return result, errs.ErrorOrNil()
}

func renderRegion(dim *anvil.Dimension, c anvil.RegionCoord, renderer *topshade.TopShadeRenderer, dst string, opts LayerOptions, result *LayerResult) error {
	name := regionName(c.X, c.Z)

	reg, err := dim.LoadRegion(c.X, c.Z)
	if err != nil {
		return fmt.Errorf("failed to load region %s: %w", name, err)
	}
	latest := reg.MaxTimestamp()

	imagePath := filepath.Join(dst, name+".png")
	if previous, ok := opts.RegionTimestamps[name]; ok && previous >= latest {
		if _, err := os.Stat(imagePath); err == nil {
			result.Lock()
			result.SkippedRegions++
			result.RegionTimestamps[name] = previous
			result.Unlock()
			return nil
		}
	}

	m := topshade.RenderRegion(c.X, c.Z, preloadedDimension{dim, reg}, renderer)
	img := topshade.Image(m)

	written, err := writePNG(imagePath, img)
	if err != nil {
		return fmt.Errorf("failed to write region %s: %w", name, err)
	}

	if opts.ThumbnailSize > 0 {
		size := uint(opts.ThumbnailSize)
		thumb := resize.Resize(size, size, img, resize.Bilinear)
		n, err := writePNG(filepath.Join(dst, name+".thumb.png"), thumb)
		if err != nil {
			return fmt.Errorf("failed to write thumbnail of region %s: %w", name, err)
		}
		written += n
	}

	logger.Debug("rendered region", zap.String("region", name), zap.Int32("timestamp", latest))

	result.Lock()
	result.RenderedRegions++
	result.BytesWritten += written
	result.RegionTimestamps[name] = latest
	result.Unlock()
	return nil
}

func writePNG(path string, img image.Image) (uint64, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return 0, err
	}
	return uint64(buf.Len()), nil
}
