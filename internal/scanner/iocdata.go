package scanner

// IgnoredDomains and IgnoredIPs are the bundled allowlists the IOC
// Extractor (§4.9) consults to drop known-benign hosts, loaded once at
// startup (§6 "Bundled data files"). Grounded on the trusted-host
// allowlist style of internal/analyzer/binary.go's isSuspiciousURL in the
// teacher, generalized from "trusted download hosts" to "anything a
// legitimate package commonly references" (registries, CDNs, schema
// sites, standards bodies).
var IgnoredDomains = []string{
	"npmjs.org", "npmjs.com", "github.com", "githubusercontent.com",
	"nodejs.org", "unpkg.com", "jsdelivr.net", "cdnjs.cloudflare.com",
	"w3.org", "schema.org", "json-schema.org", "example.com", "localhost",
	"google.com", "googleapis.com", "microsoft.com", "mozilla.org",
}

var IgnoredIPs = []string{
	"127.0.0.1", "0.0.0.0", "255.255.255.255",
}
