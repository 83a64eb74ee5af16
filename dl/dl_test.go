package dl

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func testServer(t *testing.T, jar []byte, checksum string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		var manifest VersionManifest
		manifest.Latest.Release = "1.20.1"
		manifest.Versions = []Version{
			{Id: "1.20.2-pre1", Type: "snapshot", URL: srv.URL + "/missing.json"},
			{Id: "1.20.1", Type: "release", URL: srv.URL + "/1.20.1.json"},
		}
		json.NewEncoder(w).Encode(manifest)
	})
	mux.HandleFunc("/1.20.1.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(VersionMetadata{Downloads: map[string]*DownloadMetadata{
			"client": {SHA1: checksum, Size: len(jar), URL: srv.URL + "/client.jar"},
		}})
	})
	mux.HandleFunc("/client.jar", func(w http.ResponseWriter, r *http.Request) {
		w.Write(jar)
	})

	ManifestURL = srv.URL + "/manifest.json"
	t.Cleanup(func() {
		ManifestURL = "https://launchermeta.mojang.com/mc/game/version_manifest.json"
	})
	return srv
}

func sha1Hex(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

func TestDownloadClientJAR(t *testing.T) {
	jar := []byte("PK not really a jar")
	testServer(t, jar, sha1Hex(jar))

	dst := filepath.Join(t.TempDir(), "client-1.20.1.jar")
	if err := DownloadClientJAR("", dst); err != nil {
		t.Fatalf("download failed: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(jar) {
		t.Errorf("downloaded %q, want %q", got, jar)
	}
}

func TestDownloadClientJARChecksumMismatch(t *testing.T) {
	jar := []byte("PK not really a jar")
	testServer(t, jar, sha1Hex([]byte("something else")))

	dst := filepath.Join(t.TempDir(), "client.jar")
	if err := DownloadClientJAR("1.20.1", dst); err == nil {
		t.Error("expected checksum mismatch")
	}
}

func TestDownloadClientJARUnknownVersion(t *testing.T) {
	testServer(t, nil, "")

	if err := DownloadClientJAR("0.0.1", filepath.Join(t.TempDir(), "client.jar")); err == nil {
		t.Error("expected unknown version error")
	}
	// metadata of a listed version that cannot be fetched
	if err := DownloadClientJAR("1.20.2-pre1", filepath.Join(t.TempDir(), "client.jar")); err == nil {
		t.Error("expected metadata error")
	}
}

func TestVersionManifestLookup(t *testing.T) {
	var m VersionManifest
	m.Latest.Release = "b"
	m.Versions = []Version{{Id: "a"}, {Id: "b"}, {Id: "c"}}

	if v := m.GetLatestRelease(); v == nil || v.Id != "b" {
		t.Errorf("latest release %+v, want b", v)
	}
	if v := m.GetRelease("c"); v == nil || v.Id != "c" {
		t.Errorf("release %+v, want c", v)
	}
	if v := m.GetRelease("d"); v != nil {
		t.Errorf("unexpected release %+v", v)
	}
}
