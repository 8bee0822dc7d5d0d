package scanner

import "testing"

func TestIsAlwaysSkip(t *testing.T) {
	cases := map[string]bool{
		"node_modules/lodash/index.js": true,
		"src/node_modules/x.js":        true,
		"src/index.js":                 false,
		"":                             false,
	}
	for path, want := range cases {
		if got := IsAlwaysSkip(path); got != want {
			t.Errorf("IsAlwaysSkip(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestIsTestPath(t *testing.T) {
	cases := map[string]bool{
		"__tests__/index.js":   true,
		"src/foo.test.js":      true,
		"src/foo.spec.ts":      true,
		"test/helpers.js":      true,
		"src/index.js":         false,
		"src/testimonials.js":  false,
	}
	for path, want := range cases {
		if got := IsTestPath(path); got != want {
			t.Errorf("IsTestPath(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestIsDeclarationOnly(t *testing.T) {
	if !IsDeclarationOnly("index.d.ts") {
		t.Error("expected index.d.ts to be declaration-only")
	}
	if !IsDeclarationOnly("index.d.mts") {
		t.Error("expected index.d.mts to be declaration-only")
	}
	if IsDeclarationOnly("index.ts") {
		t.Error("expected index.ts to not be declaration-only")
	}
}

func TestIsNativeAddonExt(t *testing.T) {
	if !IsNativeAddonExt(".NODE") {
		t.Error("expected case-insensitive match on .node")
	}
	if IsNativeAddonExt(".js") {
		t.Error("expected .js to not be a native addon extension")
	}
}

func TestIsBuildArtifact(t *testing.T) {
	noSource := func(string) bool { return false }

	if !IsBuildArtifact("dist/index.js", noSource) {
		t.Error("expected dist/ to be a build artifact")
	}
	if !IsBuildArtifact("index.d.ts", noSource) {
		t.Error("expected .d.ts to be a build artifact")
	}
	if !IsBuildArtifact("index.js.map", noSource) {
		t.Error("expected .map to be a build artifact")
	}
	if IsBuildArtifact("src/index.js", noSource) {
		t.Error("expected plain src file with no companion source to not be a build artifact")
	}

	hasSource := func(tsCandidate string) bool { return tsCandidate == "index.ts" }
	if !IsBuildArtifact("index.js", hasSource) {
		t.Error("expected index.js to be a build artifact given a companion index.ts")
	}
}
