package provider

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "", "MIT"); got != "MIT" {
		t.Errorf("expected first non-empty value, got %q", got)
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("expected empty string when all values are empty, got %q", got)
	}
}

func TestResolveVersion_RequestedVersion(t *testing.T) {
	doc := &registryPackage{
		Name:     "left-pad",
		DistTags: map[string]string{"latest": "1.3.0"},
		Versions: map[string]registryVersion{
			"1.3.0": {Name: "left-pad", Version: "1.3.0"},
			"1.2.0": {Name: "left-pad", Version: "1.2.0"},
		},
	}

	v, err := resolveVersion(doc, "1.2.0")
	if err != nil {
		t.Fatal(err)
	}
	if v.Version != "1.2.0" {
		t.Errorf("expected the requested version to be resolved, got %q", v.Version)
	}
}

func TestResolveVersion_DefaultsToLatest(t *testing.T) {
	doc := &registryPackage{
		Name:     "left-pad",
		DistTags: map[string]string{"latest": "1.3.0"},
		Versions: map[string]registryVersion{
			"1.3.0": {Name: "left-pad", Version: "1.3.0"},
		},
	}

	v, err := resolveVersion(doc, "")
	if err != nil {
		t.Fatal(err)
	}
	if v.Version != "1.3.0" {
		t.Errorf("expected the latest dist-tag to be resolved, got %q", v.Version)
	}
}

func TestResolveVersion_UnknownVersionErrors(t *testing.T) {
	doc := &registryPackage{
		Name:     "left-pad",
		DistTags: map[string]string{"latest": "1.3.0"},
		Versions: map[string]registryVersion{"1.3.0": {Name: "left-pad", Version: "1.3.0"}},
	}

	if _, err := resolveVersion(doc, "9.9.9"); err == nil {
		t.Error("expected an unknown version to error")
	}
}

func TestBuildMetadata_PrefersVersionLicenseAndMaintainer(t *testing.T) {
	doc := &registryPackage{
		License:     "Apache-2.0",
		Maintainers: []registryMaintainer{{Name: "doc-maintainer"}},
		Repository:  &registryRepository{URL: "https://github.com/doc/repo"},
		Time:        map[string]time.Time{"1.3.0": time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	version := &registryVersion{
		Name:         "left-pad",
		Version:      "1.3.0",
		License:      "MIT",
		Dependencies: map[string]string{"foo": "^1.0.0"},
		Dist:         registryDist{Tarball: "https://registry.example/left-pad-1.3.0.tgz", Shasum: "abc"},
		Maintainers:  []registryMaintainer{{Name: "version-maintainer"}},
	}

	m := buildMetadata(doc, version)

	if m.License != "MIT" {
		t.Errorf("expected the version's own license to win, got %q", m.License)
	}
	if m.Publisher != "version-maintainer" {
		t.Errorf("expected the version's own maintainers to win, got %q", m.Publisher)
	}
	if m.RepositoryURL != "" {
		t.Errorf("expected the version's nil repository to leave RepositoryURL unset, got %q", m.RepositoryURL)
	}
	if !m.PublishedAt.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected published time: %v", m.PublishedAt)
	}
	if m.HasBinEntry {
		t.Error("expected HasBinEntry to be false when Bin is nil")
	}
}

func TestBuildMetadata_FallsBackToDocLevelFields(t *testing.T) {
	doc := &registryPackage{
		License:     "Apache-2.0",
		Maintainers: []registryMaintainer{{Name: "doc-maintainer"}},
		Repository:  &registryRepository{URL: "https://github.com/doc/repo"},
	}
	version := &registryVersion{Name: "left-pad", Version: "1.3.0"}

	m := buildMetadata(doc, version)

	if m.License != "Apache-2.0" {
		t.Errorf("expected fallback to doc-level license, got %q", m.License)
	}
	if m.Publisher != "doc-maintainer" {
		t.Errorf("expected fallback to doc-level maintainer, got %q", m.Publisher)
	}
	if m.RepositoryURL != "https://github.com/doc/repo" {
		t.Errorf("expected fallback to doc-level repository, got %q", m.RepositoryURL)
	}
}

func TestRegistryRepository_UnmarshalsStringShorthand(t *testing.T) {
	var doc registryPackage
	raw := []byte(`{"name":"left-pad","repository":"github:left-pad/left-pad"}`)
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Repository == nil || doc.Repository.URL != "github:left-pad/left-pad" {
		t.Errorf("expected a string-form repository to decode into URL, got %+v", doc.Repository)
	}
}

func TestRegistryRepository_UnmarshalsObjectForm(t *testing.T) {
	var doc registryPackage
	raw := []byte(`{"name":"left-pad","repository":{"type":"git","url":"https://github.com/left-pad/left-pad.git"}}`)
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Repository == nil || doc.Repository.URL != "https://github.com/left-pad/left-pad.git" || doc.Repository.Type != "git" {
		t.Errorf("expected an object-form repository to decode fully, got %+v", doc.Repository)
	}
}

func TestBuildMetadata_StringFormRepositoryPopulatesRepositoryURL(t *testing.T) {
	var version registryVersion
	raw := []byte(`{"name":"left-pad","version":"1.3.0","repository":"github:left-pad/left-pad"}`)
	if err := json.Unmarshal(raw, &version); err != nil {
		t.Fatal(err)
	}

	m := buildMetadata(&registryPackage{}, &version)
	if m.RepositoryURL != "github:left-pad/left-pad" {
		t.Errorf("expected a string-form repository field to populate RepositoryURL, got %q", m.RepositoryURL)
	}
}

func buildSingleFileTarGz(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	if err := tw.WriteHeader(&tar.Header{Name: name, Size: int64(len(content)), Mode: 0o644}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestNPMProvider_Fetch_EndToEnd(t *testing.T) {
	tarballContent := "module.exports = function leftPad() {};"
	tarball := buildSingleFileTarGz(t, "package/index.js", tarballContent)
	sum := sha1.Sum(tarball)
	shasum := hex.EncodeToString(sum[:])

	mux := http.NewServeMux()
	var serverURL string
	mux.HandleFunc("/left-pad", func(w http.ResponseWriter, r *http.Request) {
		doc := registryPackage{
			Name:     "left-pad",
			License:  "MIT",
			DistTags: map[string]string{"latest": "1.3.0"},
			Versions: map[string]registryVersion{
				"1.3.0": {
					Name:    "left-pad",
					Version: "1.3.0",
					Dist: registryDist{
						Tarball: serverURL + "/left-pad.tgz",
						Shasum:  shasum,
					},
				},
			},
		}
		json.NewEncoder(w).Encode(doc)
	})
	mux.HandleFunc("/left-pad.tgz", func(w http.ResponseWriter, r *http.Request) {
		w.Write(tarball)
	})
	mux.HandleFunc("/downloads/point/last-week/left-pad", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(downloadPoint{Downloads: 42, Package: "left-pad"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	serverURL = server.URL

	p := NewNPMProvider(server.URL, 5*time.Second)
	p.downloadsURL = server.URL

	resolved, err := p.Fetch(context.Background(), Specifier{Name: "left-pad"})
	if err != nil {
		t.Fatal(err)
	}
	defer resolved.Tree.Cleanup()

	if resolved.Metadata.Name != "left-pad" || resolved.Metadata.Version != "1.3.0" {
		t.Errorf("unexpected metadata: %+v", resolved.Metadata)
	}
	if resolved.Metadata.FileCount != 1 {
		t.Errorf("expected a single extracted file, got %d", resolved.Metadata.FileCount)
	}
	if resolved.Metadata.WeeklyDownloads != 42 {
		t.Errorf("expected weekly downloads to be populated, got %d", resolved.Metadata.WeeklyDownloads)
	}
}

func TestNPMProvider_Fetch_PackageNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := NewNPMProvider(server.URL, 5*time.Second)
	if _, err := p.Fetch(context.Background(), Specifier{Name: "does-not-exist"}); err == nil {
		t.Error("expected a 404 registry response to be an error")
	}
}
