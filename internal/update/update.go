// Package update checks GitHub for a newer atctl release.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/mod/semver"
)

const (
	// DefaultReleasesURL is the default URL for checking releases.
	DefaultReleasesURL = "https://api.github.com/repos/africastalking/atctl/releases/latest"
	CheckTimeout       = 5 * time.Second
)

// ReleasesURL is the URL to check for releases. Can be overridden in tests.
var ReleasesURL = DefaultReleasesURL

type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

type CheckResult struct {
	CurrentVersion  string `json:"current_version"`
	LatestVersion   string `json:"latest_version"`
	UpdateURL       string `json:"update_url,omitempty"`
	UpdateAvailable bool   `json:"update_available"`
}

// CheckForUpdate checks if a newer version is available. It returns nil when
// the check is skipped or fails; a failed check never fails the command.
func CheckForUpdate(ctx context.Context, currentVersion string) *CheckResult {
	if currentVersion == "dev" || currentVersion == "" {
		return nil
	}

	release, err := latestRelease(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("update check failed")
		return nil
	}

	return &CheckResult{
		CurrentVersion:  currentVersion,
		LatestVersion:   strings.TrimPrefix(release.TagName, "v"),
		UpdateURL:       release.HTMLURL,
		UpdateAvailable: Newer(release.TagName, currentVersion),
	}
}

func latestRelease(ctx context.Context) (*Release, error) {
	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ReleasesURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("releases endpoint returned %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}
	return &release, nil
}

// Newer reports whether latest is a strictly greater semantic version than
// current. Invalid versions are never newer.
func Newer(latest, current string) bool {
	l, c := normalizeVersion(latest), normalizeVersion(current)
	if !semver.IsValid(l) || !semver.IsValid(c) {
		return false
	}
	return semver.Compare(l, c) > 0
}

func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}
