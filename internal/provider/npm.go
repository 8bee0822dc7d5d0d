package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yourorg/pkgaudit/internal/extractor"
)

const (
	defaultRegistry     = "https://registry.npmjs.org"
	defaultDownloadsAPI = "https://api.npmjs.org"
)

// NPMProvider is the concrete Artifact Provider (§1, §6) backed by the
// public npm registry. Grounded on internal/registry/client.go of the
// teacher: same endpoint shapes, same plain http.Client, generalized to
// return this pipeline's Metadata value object instead of the teacher's
// raw registry.PackageMetadata, and to also perform extraction so callers
// receive a ready-to-scan directory in one call.
type NPMProvider struct {
	httpClient   *http.Client
	registryURL  string
	downloadsURL string
}

// NewNPMProvider builds a provider against registryURL, or the default
// public registry if registryURL is empty.
func NewNPMProvider(registryURL string, timeout time.Duration) *NPMProvider {
	if registryURL == "" {
		registryURL = defaultRegistry
	}
	return &NPMProvider{
		httpClient:   &http.Client{Timeout: timeout},
		registryURL:  strings.TrimRight(registryURL, "/"),
		downloadsURL: defaultDownloadsAPI,
	}
}

// Resolved bundles the metadata and an extracted artifact tree for one
// package version. The caller must call Tree.Cleanup() when done.
type Resolved struct {
	Metadata *Metadata
	Tree     *extractor.Tree
}

// Fetch resolves spec against the registry, downloads the matching
// tarball, and extracts it. A registry-unreachable or package-not-found
// error here is fatal per §7's "Metadata fetch failure is fatal" rule —
// callers should treat any returned error as terminating the scan.
func (p *NPMProvider) Fetch(ctx context.Context, spec Specifier) (*Resolved, error) {
	doc, err := p.getPackageDocument(ctx, spec.Name)
	if err != nil {
		return nil, fmt.Errorf("fetching package %q: %w", spec.Name, err)
	}

	version, err := resolveVersion(doc, spec.Version)
	if err != nil {
		return nil, err
	}

	tree, err := extractor.Download(ctx, version.Dist.Tarball, version.Dist.Shasum, "pkgaudit-artifact")
	if err != nil {
		return nil, fmt.Errorf("downloading artifact for %q@%q: %w", spec.Name, version.Version, err)
	}

	meta := buildMetadata(doc, version)
	meta.FileCount = len(tree.Files)
	for _, f := range tree.Files {
		meta.UnpackedSize += f.Size
	}

	if dl, err := p.getDownloads(ctx, spec.Name); err == nil {
		meta.WeeklyDownloads = dl.Downloads
	}

	return &Resolved{Metadata: meta, Tree: tree}, nil
}

func (p *NPMProvider) getPackageDocument(ctx context.Context, name string) (*registryPackage, error) {
	reqURL := fmt.Sprintf("%s/%s", p.registryURL, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("package %q not found", name)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	var doc registryPackage
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding package document: %w", err)
	}
	return &doc, nil
}

func (p *NPMProvider) getDownloads(ctx context.Context, name string) (*downloadPoint, error) {
	reqURL := fmt.Sprintf("%s/downloads/point/last-week/%s", p.downloadsURL, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloads API returned status %d", resp.StatusCode)
	}

	var dl downloadPoint
	if err := json.NewDecoder(resp.Body).Decode(&dl); err != nil {
		return nil, err
	}
	return &dl, nil
}

func resolveVersion(doc *registryPackage, requested string) (*registryVersion, error) {
	version := requested
	if version == "" {
		version = doc.DistTags["latest"]
	}
	if version == "" {
		return nil, fmt.Errorf("package %q has no latest dist-tag and no version requested", doc.Name)
	}

	v, ok := doc.Versions[version]
	if !ok {
		return nil, fmt.Errorf("version %q not found for package %q", version, doc.Name)
	}
	return &v, nil
}

func buildMetadata(doc *registryPackage, version *registryVersion) *Metadata {
	m := &Metadata{
		Name:                 version.Name,
		Version:              version.Version,
		Description:          version.Description,
		License:              firstNonEmpty(version.License, doc.License),
		Homepage:             version.Homepage,
		Dependencies:         version.Dependencies,
		OptionalDependencies: version.OptionalDeps,
		LifecycleScripts:     version.Scripts,
		ArtifactSourceURL:    version.Dist.Tarball,
		HasBinEntry:          version.Bin != nil,
	}

	maintainers := version.Maintainers
	if len(maintainers) == 0 {
		maintainers = doc.Maintainers
	}
	for _, mt := range maintainers {
		m.Maintainers = append(m.Maintainers, mt.Name)
	}
	if len(maintainers) > 0 {
		m.Publisher = maintainers[0].Name
	}

	if repo := version.Repository; repo != nil {
		m.RepositoryURL = repo.URL
	} else if doc.Repository != nil {
		m.RepositoryURL = doc.Repository.URL
	}

	if t, ok := doc.Time[version.Version]; ok {
		m.PublishedAt = t
	}

	m.HasTrustedPublisherAttestation = version.Dist.Attestations != nil

	return m
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
