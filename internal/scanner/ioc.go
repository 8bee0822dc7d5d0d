package scanner

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	urlPattern = regexp.MustCompile(`(?i)\b(?:https?|ftp)://[^\s'"<>]+`)
	ipv4Pattern = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	versionNumberPattern = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+$`)

	hexEscapeRunIOC     = regexp.MustCompile(`(?:\\x[0-9a-fA-F]{2}){4,}`)
	unicodeEscapeRunIOC = regexp.MustCompile(`(?:\\u[0-9a-fA-F]{4}){4,}`)
	fromCharCodeCall    = regexp.MustCompile(`String\.fromCharCode\(([^)]*)\)`)
	base64Candidate     = regexp.MustCompile(`[A-Za-z0-9+/]{20,}={0,2}`)

	iocTextExts = map[string]bool{
		".js": true, ".mjs": true, ".cjs": true, ".ts": true, ".tsx": true,
		".jsx": true, ".json": true, ".md": true, ".yml": true, ".yaml": true,
		".html": true, ".htm": true, ".txt": true, ".sh": true, ".env": true,
	}
)

type decodedFrom string

const (
	decodedPlaintext decodedFrom = ""
	decodedHex       decodedFrom = "hex"
	decodedUnicode   decodedFrom = "unicode"
	decodedCharCode  decodedFrom = "charcode"
	decodedBase64    decodedFrom = "base64"
)

type iocSighting struct {
	value       string // canonical (un-defanged) form
	isIP        bool
	from        decodedFrom
	locations   []string // "file:line"
	occurrences int
}

// IOCExtractor walks text-like files, extracts URLs/IPv4 literals, drops
// known-benign hosts, runs a deobfuscation pass over encoded fragments,
// defangs everything it reports, and deduplicates per package (§4.9).
//
// Grounded on internal/analyzer/suspicious_url.go of the teacher for the
// URL-extraction/host-parsing mechanics, generalized with the
// hex/unicode/charcode/base64 deobfuscation pass and defanging this spec
// requires, which that file doesn't perform.
type IOCExtractor struct {
	IgnoredDomains []string
	IgnoredIPs     []string
}

func NewIOCExtractor(ignoredDomains, ignoredIPs []string) *IOCExtractor {
	return &IOCExtractor{IgnoredDomains: ignoredDomains, IgnoredIPs: ignoredIPs}
}

func (s *IOCExtractor) Name() string { return "ioc" }

func (s *IOCExtractor) Scan(_ context.Context, artifact Artifact) Result {
	if artifact.Dir == "" {
		return NewResult(s.Name(), nil, "No artifact directory to scan")
	}

	dedup := map[string]*iocSighting{}

	filepath.WalkDir(artifact.Dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(artifact.Dir, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if IsAlwaysSkip(rel) {
			return nil
		}
		if !iocTextExts[strings.ToLower(filepath.Ext(rel))] {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}

		for lineIdx, line := range strings.Split(string(data), "\n") {
			loc := fmt.Sprintf("%s:%d", rel, lineIdx+1)
			s.scanLine(line, loc, dedup)
		}
		return nil
	})

	urlCount, ipCount := 0, 0
	var findings []Finding
	for _, sighting := range dedup {
		severity := SeverityInfo
		if sighting.from != decodedPlaintext {
			severity = SeverityWarning
		}

		defanged := defang(sighting.value, sighting.isIP)
		message := fmt.Sprintf("indicator observed: %s", defanged)
		if sighting.from != decodedPlaintext {
			message = fmt.Sprintf("indicator observed (decoded from %s): %s", sighting.from, defanged)
		}

		if sighting.isIP {
			ipCount++
		} else {
			urlCount++
		}

		loc := sighting.locations[0]
		parts := strings.SplitN(loc, ":", 2)
		file := parts[0]
		line := 0
		if len(parts) == 2 {
			line, _ = strconv.Atoi(parts[1])
		}

		findings = append(findings, Finding{
			Scanner:  s.Name(),
			Severity: severity,
			Message:  message,
			File:     file,
			Line:     line,
			Evidence: fmt.Sprintf("seen %d time(s) at up to %d location(s)", sighting.occurrences, len(sighting.locations)),
		})
	}

	summary := fmt.Sprintf("%d URL(s), %d IP(s) extracted", urlCount, ipCount)
	result := NewResult(s.Name(), findings, summary)
	result.Passed = true // IOCs are informational evidence, never a failure.
	return result
}

func (s *IOCExtractor) scanLine(line, loc string, dedup map[string]*iocSighting) {
	s.extractPlaintext(line, loc, dedup, decodedPlaintext)

	for _, frag := range decodeFragments(line) {
		s.extractPlaintext(frag.text, loc, dedup, frag.from)
	}
}

type decodedFragment struct {
	text string
	from decodedFrom
}

func decodeFragments(line string) []decodedFragment {
	var out []decodedFragment

	for _, m := range hexEscapeRunIOC.FindAllString(line, -1) {
		if decoded, ok := decodeHexEscapes(m); ok {
			out = append(out, decodedFragment{decoded, decodedHex})
		}
	}
	for _, m := range unicodeEscapeRunIOC.FindAllString(line, -1) {
		if decoded, ok := decodeUnicodeEscapes(m); ok {
			out = append(out, decodedFragment{decoded, decodedUnicode})
		}
	}
	for _, m := range fromCharCodeCall.FindAllStringSubmatch(line, -1) {
		if decoded, ok := decodeCharCodes(m[1]); ok {
			out = append(out, decodedFragment{decoded, decodedCharCode})
		}
	}
	for _, m := range base64Candidate.FindAllString(line, -1) {
		if decoded, ok := decodeBase64Candidate(m); ok {
			out = append(out, decodedFragment{decoded, decodedBase64})
		}
	}

	return out
}

func decodeHexEscapes(s string) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(s); i += 4 {
		if i+4 > len(s) || s[i] != '\\' || s[i+1] != 'x' {
			return "", false
		}
		n, err := strconv.ParseUint(s[i+2:i+4], 16, 8)
		if err != nil {
			return "", false
		}
		b.WriteByte(byte(n))
	}
	return b.String(), true
}

func decodeUnicodeEscapes(s string) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(s); i += 6 {
		if i+6 > len(s) || s[i] != '\\' || s[i+1] != 'u' {
			return "", false
		}
		n, err := strconv.ParseUint(s[i+2:i+6], 16, 16)
		if err != nil {
			return "", false
		}
		b.WriteRune(rune(n))
	}
	return b.String(), true
}

func decodeCharCodes(argList string) (string, bool) {
	parts := strings.Split(argList, ",")
	var b strings.Builder
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 0x10FFFF {
			return "", false
		}
		b.WriteRune(rune(n))
	}
	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}

func decodeBase64Candidate(s string) (string, bool) {
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", false
	}
	if len(decoded) < 6 {
		return "", false
	}
	printable := 0
	for _, b := range decoded {
		if b >= 32 && b < 127 {
			printable++
		}
	}
	if float64(printable)/float64(len(decoded)) < 0.8 {
		return "", false
	}
	if !utf8.Valid(decoded) {
		return "", false
	}
	return string(decoded), true
}

func (s *IOCExtractor) extractPlaintext(text, loc string, dedup map[string]*iocSighting, from decodedFrom) {
	for _, raw := range urlPattern.FindAllString(text, -1) {
		u := strings.TrimRight(raw, ".,);\"'")
		parsed, err := url.Parse(u)
		if err != nil || parsed.Hostname() == "" {
			continue
		}
		if s.isIgnoredDomain(parsed.Hostname()) {
			continue
		}
		s.record(dedup, u, false, loc, from)
	}

	for _, raw := range ipv4Pattern.FindAllString(text, -1) {
		ip := strings.TrimRight(raw, ".,);\"'")
		if s.isIgnoredIP(ip) {
			continue
		}
		if looksLikeVersionNumber(ip) {
			continue
		}
		s.record(dedup, ip, true, loc, from)
	}
}

// looksLikeVersionNumber reports whether a dotted-quad match is more likely
// a version string (e.g. "999.0.0.1") than a real IPv4 address: any octet
// outside 0-255 (§4.9 point 1).
func looksLikeVersionNumber(s string) bool {
	if !versionNumberPattern.MatchString(s) {
		return false
	}
	for _, octet := range strings.Split(s, ".") {
		n, err := strconv.Atoi(octet)
		if err != nil || n > 255 {
			return true
		}
	}
	return false
}

func (s *IOCExtractor) record(dedup map[string]*iocSighting, value string, isIP bool, loc string, from decodedFrom) {
	key := value
	existing, ok := dedup[key]
	if !ok {
		dedup[key] = &iocSighting{value: value, isIP: isIP, from: from, locations: []string{loc}, occurrences: 1}
		return
	}

	existing.occurrences++
	// First-writer-wins on the plaintext-vs-decoded severity choice:
	// plaintext discovery always beats a decoded-only sighting, never the
	// other way around.
	if existing.from != decodedPlaintext && from == decodedPlaintext {
		existing.from = decodedPlaintext
	}
	if len(existing.locations) < 5 {
		existing.locations = append(existing.locations, loc)
	}
}

func (s *IOCExtractor) isIgnoredDomain(host string) bool {
	host = strings.ToLower(host)
	for _, d := range s.IgnoredDomains {
		d = strings.ToLower(d)
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func (s *IOCExtractor) isIgnoredIP(ip string) bool {
	for _, i := range s.IgnoredIPs {
		if ip == i {
			return true
		}
	}
	return false
}

// defang performs the textual mutation of §4.9 step 3.
func defang(value string, isIP bool) string {
	if isIP {
		return strings.ReplaceAll(value, ".", "[.]")
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return value
	}

	scheme := parsed.Scheme
	defangedScheme := scheme
	switch scheme {
	case "http":
		defangedScheme = "hxxp"
	case "https":
		defangedScheme = "hxxps"
	case "ftp":
		defangedScheme = "fxp"
	}

	host := strings.ReplaceAll(parsed.Hostname(), ".", "[.]")
	rest := parsed.Path
	if parsed.RawQuery != "" {
		rest += "?" + parsed.RawQuery
	}

	return fmt.Sprintf("%s[://]%s%s", defangedScheme, host, rest)
}
