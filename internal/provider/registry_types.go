package provider

import (
	"encoding/json"
	"time"
)

// The following mirror the npm registry's JSON wire shapes closely enough
// to decode a package document; unknown fields are discarded by
// encoding/json automatically, matching this spec's §9 "dynamic typing in
// the source" design note (each field probed, coerced, defaulted).
//
// Grounded on internal/registry/types.go of the teacher.

type registryPackage struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	DistTags    map[string]string         `json:"dist-tags"`
	Versions    map[string]registryVersion `json:"versions"`
	Time        map[string]time.Time      `json:"time"`
	Maintainers []registryMaintainer      `json:"maintainers"`
	Repository  *registryRepository       `json:"repository,omitempty"`
	License     string                    `json:"license"`
}

type registryVersion struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Description     string            `json:"description"`
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	OptionalDeps    map[string]string `json:"optionalDependencies"`
	Dist            registryDist      `json:"dist"`
	Maintainers     []registryMaintainer `json:"maintainers"`
	Repository      *registryRepository  `json:"repository,omitempty"`
	License         string            `json:"license"`
	Homepage        string            `json:"homepage,omitempty"`
	Bin             interface{}       `json:"bin,omitempty"`
}

type registryDist struct {
	Tarball      string              `json:"tarball"`
	Shasum       string              `json:"shasum"`
	Attestations *registryAttestation `json:"attestations,omitempty"`
}

type registryAttestation struct {
	URL string `json:"url"`
}

type registryMaintainer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// registryRepository decodes both object form ({"type":"git","url":"..."})
// and npm's plain-string shorthand (e.g. "github:owner/repo").
type registryRepository struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

func (r *registryRepository) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		r.URL = asString
		return nil
	}

	type alias registryRepository
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = registryRepository(a)
	return nil
}

type downloadPoint struct {
	Downloads int    `json:"downloads"`
	Package   string `json:"package"`
}
