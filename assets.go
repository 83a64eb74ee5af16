package topshade

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"sort"
	"strings"
)

// AssetLoader reads textures, models and worldgen data out of a client JAR.
// Only the assets/ and data/ trees are indexed.
type AssetLoader struct {
	files  map[string]*zip.File
	reader *zip.ReadCloser
}

func NewAssetLoaderFromClientJAR(path string) (*AssetLoader, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open client jar %s: %w", path, err)
	}

	loader := &AssetLoader{
		files:  make(map[string]*zip.File),
		reader: r,
	}
	for _, f := range r.File {
		if strings.HasPrefix(f.Name, "assets/") || strings.HasPrefix(f.Name, "data/") {
			loader.files[f.Name] = f
		}
	}
	return loader, nil
}

func (a *AssetLoader) open(name string) (io.ReadCloser, error) {
	file, ok := a.files[name]
	if !ok {
		return nil, fmt.Errorf("file %s does not exist", name)
	}
	return file.Open()
}

// List returns the sorted names of files in dir with the given extension.
func (a *AssetLoader) List(dir, ext string) []string {
	prefix := strings.TrimSuffix(dir, "/") + "/"

	var names []string
	for name := range a.files {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok || strings.Contains(rest, "/") || !strings.HasSuffix(rest, ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(rest, ext))
	}
	sort.Strings(names)
	return names
}

func (a *AssetLoader) LoadPNG(name string) (image.Image, error) {
	fd, err := a.open(name)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	img, err := png.Decode(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return img, nil
}

// LoadJSON decodes a JSON file into v.
func (a *AssetLoader) LoadJSON(name string, v any) error {
	fd, err := a.open(name)
	if err != nil {
		return err
	}
	defer fd.Close()

	if err := json.NewDecoder(fd).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

func (a *AssetLoader) Close() error {
	return a.reader.Close()
}
