package dl

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	getter "github.com/hashicorp/go-getter"
)

type DownloadMetadata struct {
	SHA1 string `json:"sha1"`
	Size int    `json:"size"`
	URL  string `json:"url"`
}

type VersionMetadata struct {
	Downloads map[string]*DownloadMetadata `json:"downloads"`
}

type Version struct {
	Id          string `json:"id"`
	Type        string `json:"type"`
	Time        string `json:"time"`
	ReleaseTime string `json:"releaseTime"`
	URL         string `json:"url"`
}

type VersionManifest struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []Version `json:"versions"`
}

func (v *VersionManifest) GetLatestRelease() *Version {
	return v.GetRelease(v.Latest.Release)
}

func (v *VersionManifest) GetRelease(id string) *Version {
	for _, version := range v.Versions {
		if version.Id == id {
			return &version
		}
	}
	return nil
}

// ManifestURL lists every published game version.
var ManifestURL = "https://launchermeta.mojang.com/mc/game/version_manifest.json"

var client = &http.Client{Timeout: 10 * time.Second}

func getJSON(url string, v any) error {
	r, err := client.Get(url)
	if err != nil {
		return err
	}
	defer r.Body.Close()

	if r.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, r.Status)
	}
	return json.NewDecoder(r.Body).Decode(v)
}

func GetVersionManifest() (*VersionManifest, error) {
	var manifest VersionManifest
	if err := getJSON(ManifestURL, &manifest); err != nil {
		return nil, fmt.Errorf("failed to fetch version manifest: %w", err)
	}
	return &manifest, nil
}

func (v *Version) GetMetadata() (*VersionMetadata, error) {
	var meta VersionMetadata
	if err := getJSON(v.URL, &meta); err != nil {
		return nil, fmt.Errorf("failed to fetch metadata of %s: %w", v.Id, err)
	}
	return &meta, nil
}

// Get downloads the file to dst and verifies its checksum.
func (d *DownloadMetadata) Get(dst string) error {
	src := d.URL
	if d.SHA1 != "" {
		src = fmt.Sprintf("%s?checksum=sha1:%s", d.URL, d.SHA1)
	}
	return getter.GetFile(dst, src)
}

// DownloadClientJAR fetches the client JAR of a release, the latest release
// when version is empty.
func DownloadClientJAR(version string, dst string) error {
	manifest, err := GetVersionManifest()
	if err != nil {
		return err
	}

	var release *Version
	if version == "" {
		release = manifest.GetLatestRelease()
	} else {
		release = manifest.GetRelease(version)
	}
	if release == nil {
		return fmt.Errorf("unknown version '%s'", version)
	}

	meta, err := release.GetMetadata()
	if err != nil {
		return err
	}

	download, ok := meta.Downloads["client"]
	if !ok {
		return fmt.Errorf("version %s has no client download", release.Id)
	}
	if err := download.Get(dst); err != nil {
		return fmt.Errorf("failed to download client jar %s: %w", release.Id, err)
	}
	return nil
}
