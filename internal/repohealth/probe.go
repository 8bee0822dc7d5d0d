// Package repohealth queries the repository a package claims to live in and
// reports on its age, activity, and archive state (§4.10). It is an
// optional collaborator: any failure degrades to Health{Found: false}
// rather than failing the pipeline.
package repohealth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Health mirrors SPEC_FULL.md §3's RepositoryHealth value object.
type Health struct {
	Found               bool      `json:"found"`
	Owner               string    `json:"owner,omitempty"`
	Name                string    `json:"name,omitempty"`
	Stars               int       `json:"stars"`
	Forks               int       `json:"forks"`
	OpenIssues          int       `json:"open_issues"`
	License             string    `json:"license,omitempty"`
	CreatedAt           time.Time `json:"created_at,omitempty"`
	PushedAt            time.Time `json:"pushed_at,omitempty"`
	Archived            bool      `json:"archived"`
	PublisherMatchesOwner bool    `json:"publisher_matches_owner"`
	FlaggedIssues       []string  `json:"flagged_issues,omitempty"`
}

// securityIssueKeywords is the small keyword set §4.10's domain-stack
// addition uses to flag recent open issues as informational-only evidence.
var securityIssueKeywords = []string{
	"security", "vulnerability", "cve", "exploit", "malware", "backdoor",
	"compromised", "supply chain", "rce", "credential",
}

// Probe queries a code-hosting provider's REST API. Grounded on the
// teacher's internal/analyzer/starjacking.go fetchRepoInfo and
// internal/analyzer/website.go verifyGitHub: same single-GET-plus-header
// shape, generalized from those files' "fold into a Finding list"
// structure into the plain data-object return this component produces.
type Probe struct {
	httpClient *http.Client
}

func NewProbe(timeout time.Duration) *Probe {
	return &Probe{httpClient: &http.Client{Timeout: timeout}}
}

type repoResponse struct {
	FullName     string    `json:"full_name"`
	License      *struct {
		SPDXID string `json:"spdx_id"`
	} `json:"license"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	OpenIssues      int       `json:"open_issues_count"`
	Archived        bool      `json:"archived"`
	CreatedAt       time.Time `json:"created_at"`
	PushedAt        time.Time `json:"pushed_at"`
}

type issueResponse struct {
	Title string `json:"title"`
	PullRequest *struct{} `json:"pull_request"`
}

// Check fetches repository health for repoURL, comparing publisherIdentity
// against the canonical owner. On any parse, network, or decode error it
// returns Health{Found: false} and a nil error — this probe is never
// fatal to the pipeline (§4.10).
func (p *Probe) Check(ctx context.Context, repoURL, publisherIdentity string, fetchIssues bool) Health {
	owner, repo, host := ParseRepoURL(repoURL)
	if owner == "" || repo == "" || host != "github.com" {
		return Health{Found: false}
	}

	info, err := p.fetchRepo(ctx, owner, repo)
	if err != nil {
		return Health{Found: false}
	}

	license := ""
	if info.License != nil {
		license = info.License.SPDXID
	}

	health := Health{
		Found:               true,
		Owner:               owner,
		Name:                repo,
		Stars:               info.StargazersCount,
		Forks:               info.ForksCount,
		OpenIssues:          info.OpenIssues,
		License:             license,
		CreatedAt:           info.CreatedAt,
		PushedAt:            info.PushedAt,
		Archived:            info.Archived,
		PublisherMatchesOwner: strings.EqualFold(publisherIdentity, owner),
	}

	if fetchIssues {
		// Secondary, best-effort fetch; its failure is swallowed and never
		// propagates to the primary fields above.
		health.FlaggedIssues = p.fetchFlaggedIssues(ctx, owner, repo)
	}

	return health
}

func (p *Probe) fetchRepo(ctx context.Context, owner, repo string) (*repoResponse, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/%s", owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("repository provider returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var out repoResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *Probe) fetchFlaggedIssues(ctx context.Context, owner, repo string) []string {
	url := fmt.Sprintf("https://api.github.com/repos/%s/%s/issues?state=open&per_page=20&sort=created&direction=desc", owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil
	}

	var issues []issueResponse
	if err := json.Unmarshal(body, &issues); err != nil {
		return nil
	}

	var flagged []string
	for _, issue := range issues {
		if issue.PullRequest != nil {
			continue // the issues endpoint also returns PRs; skip them
		}
		lower := strings.ToLower(issue.Title)
		for _, kw := range securityIssueKeywords {
			if strings.Contains(lower, kw) {
				flagged = append(flagged, issue.Title)
				break
			}
		}
	}
	return flagged
}

// ParseRepoURL extracts owner, repo, and host from the various shapes
// §4.10 names: https://host/owner/repo[.git], git+…, git://…, and
// git@host:owner/repo. Exported for the diff engine's tarball-URL
// construction (§4.11), which needs the same owner/repo extraction.
func ParseRepoURL(raw string) (owner, repo, host string) {
	if raw == "" {
		return "", "", ""
	}

	u := strings.TrimPrefix(raw, "git+")
	u = strings.TrimPrefix(u, "git://")
	u = strings.TrimPrefix(u, "ssh://")
	u = strings.TrimSuffix(u, ".git")
	u = strings.TrimSuffix(u, "/")

	if strings.HasPrefix(u, "git@") {
		parts := strings.SplitN(u, ":", 2)
		if len(parts) != 2 {
			return "", "", ""
		}
		host = strings.TrimPrefix(parts[0], "git@")
		return splitOwnerRepo(parts[1], host)
	}

	// npm's hosted-git shorthand, e.g. "github:owner/repo" or
	// "gitlab:owner/repo" — never contains "://", unlike the schemes
	// already stripped above.
	if !strings.Contains(u, "://") {
		if idx := strings.Index(u, ":"); idx > 0 {
			if h, ok := hostShorthands[strings.ToLower(u[:idx])]; ok {
				return splitOwnerRepo(u[idx+1:], h)
			}
		}
	}

	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")

	segs := strings.SplitN(u, "/", 3)
	if len(segs) < 3 {
		return "", "", ""
	}
	return splitOwnerRepo(segs[1]+"/"+segs[2], segs[0])
}

// hostShorthands maps npm's hosted-git resolver prefixes to their canonical
// host, per §4.10's "hostprefix:owner/repo" shape.
var hostShorthands = map[string]string{
	"github":    "github.com",
	"gitlab":    "gitlab.com",
	"bitbucket": "bitbucket.org",
	"gist":      "gist.github.com",
}

func splitOwnerRepo(ownerRepo, host string) (string, string, string) {
	ownerRepo = strings.TrimPrefix(ownerRepo, "/")
	segs := strings.SplitN(ownerRepo, "/", 2)
	if len(segs) != 2 || segs[0] == "" || segs[1] == "" {
		return "", "", ""
	}
	return segs[0], strings.TrimSuffix(segs[1], ".git"), host
}
