// Package provider implements the Artifact Provider external collaborator:
// it resolves a package specifier against the npm registry, downloads and
// extracts the published tarball, and returns normalized PackageMetadata.
//
// Grounded on internal/registry/{client,types}.go and internal/tarball/download.go
// of the teacher, generalized to the field shape this pipeline's scanners
// and scorer require (§3 PackageMetadata).
package provider

import "time"

// Metadata is this pipeline's PackageMetadata value object (§3). It is
// created once when the provider resolves a specifier and never mutated.
type Metadata struct {
	Name                     string
	Version                  string
	Description              string
	License                  string
	Publisher                string
	PublishedAt              time.Time
	ArtifactSourceURL         string
	RepositoryURL            string
	Homepage                 string
	FileCount                int
	UnpackedSize             int64
	Dependencies             map[string]string
	OptionalDependencies     map[string]string
	LifecycleScripts         map[string]string
	Maintainers              []string
	HasTrustedPublisherAttestation bool
	WeeklyDownloads          int

	// HasBinEntry records whether the manifest declares a CLI entry point
	// (an npm `bin` field). Not named directly in §3's PackageMetadata
	// prose, but required by §4.2 rule 4 (CLI-tool severity downgrade);
	// kept on Metadata since it's resolved once, at provider time, exactly
	// like every other manifest-derived field.
	HasBinEntry bool
}
