// Package nexus is a client for the repository service REST API: the
// repositories listing used to resolve a repository's format, and the
// components endpoint used for multipart uploads.
package nexus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/samber/lo"
	"golang.org/x/xerrors"

	"github.com/nexus-tools/nexus-bulk-upload/pkg/types"
)

const (
	componentsRoute = "/service/rest/v1/components"
	// The beta repositories endpoint may not support GET-by-name; the listing
	// is queried and filtered by name instead.
	repositoriesRoute = "/service/rest/beta/repositories"

	maxErrorBody = 64 << 10
)

type Option struct {
	BaseURL  string
	Username string
	Password string
}

type Client struct {
	http     *retryablehttp.Client
	baseURL  string
	username string
	password string
	logger   *slog.Logger
}

func NewClient(opt Option) (*Client, error) {
	if opt.BaseURL == "" {
		return nil, xerrors.New("base URL is required")
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = slog.Default()
	client.ResponseLogHook = func(_ retryablehttp.Logger, resp *http.Response) {
		if resp.StatusCode >= http.StatusInternalServerError {
			slog.Warn("Unexpected http response", slog.String("url", resp.Request.URL.String()), slog.String("status", resp.Status))
		}
	}

	return &Client{
		http:     client,
		baseURL:  strings.TrimSuffix(opt.BaseURL, "/"),
		username: opt.Username,
		password: opt.Password,
		logger:   slog.Default().With(slog.String("component", "nexus")),
	}, nil
}

type repository struct {
	Name   string `json:"name"`
	Format string `json:"format"`
}

// RepositoryFormat resolves the format of the named repository from the
// repositories listing. A missing repository is an error; no uploads may
// proceed without a format.
func (c *Client) RepositoryFormat(ctx context.Context, name string) (types.Format, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+repositoriesRoute, nil)
	if err != nil {
		return "", xerrors.Errorf("unable to create a HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.auth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", xerrors.Errorf("repositories listing error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", xerrors.Errorf("repositories listing returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", xerrors.Errorf("unable to read repositories listing: %w", err)
	}

	repos, err := decodeRepositories(body)
	if err != nil {
		return "", xerrors.Errorf("unable to decode repositories listing: %w", err)
	}

	repo, ok := lo.Find(repos, func(r repository) bool {
		return r.Name == name
	})
	if !ok {
		return "", xerrors.Errorf("repository %q not found", name)
	}
	return types.Format(repo.Format), nil
}

// decodeRepositories accepts both a bare list and older instances that wrap
// the list in an object.
func decodeRepositories(body []byte) ([]repository, error) {
	var repos []repository
	if err := json.Unmarshal(body, &repos); err == nil {
		return repos, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, xerrors.Errorf("unexpected listing shape: %w", err)
	}
	for _, key := range []string{"items", "data", "results"} {
		raw, ok := wrapped[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &repos); err == nil {
			return repos, nil
		}
	}
	return nil, xerrors.New("unexpected listing shape")
}

// Upload submits one unit to the components endpoint. Only HTTP 204 is a
// success; everything else, including transport failures, becomes a Failed
// outcome with a diagnostic category. Unit-local failures never abort the
// run, so no error is returned.
func (c *Client) Upload(ctx context.Context, format types.Format, repo string, unit types.UploadUnit) types.Outcome {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if err := writeUnit(w, format, unit); err != nil {
		return types.Outcome{Status: types.Failed, Message: err.Error()}
	}
	if err := w.Close(); err != nil {
		return types.Outcome{Status: types.Failed, Message: err.Error()}
	}

	uploadURL := c.baseURL + componentsRoute + "?repository=" + url.QueryEscape(repo)
	c.logger.Debug("Submitting unit", slog.String("url", uploadURL), slog.Int("assets", len(unit.Assets)))
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, uploadURL, body)
	if err != nil {
		return types.Outcome{Status: types.Failed, Message: err.Error()}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	c.auth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return types.Outcome{
			Status:   types.Failed,
			Category: types.CategoryNetwork,
			Message:  err.Error(),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return types.Outcome{Status: types.Succeeded}
	}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return types.Outcome{
		Status:   types.Failed,
		Category: categorize(string(b)),
		Message:  fmt.Sprintf("%s: %s", resp.Status, strings.TrimSpace(string(b))),
	}
}

func (c *Client) auth(req *retryablehttp.Request) {
	// Absent credentials are allowed; requests are then unauthenticated.
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}
}

// writeUnit builds the multipart fields for one unit. Member fields are
// 1-indexed in stable asset order. Every opened file handle is closed before
// this function returns.
func writeUnit(w *multipart.Writer, format types.Format, unit types.UploadUnit) error {
	if !format.Maven() {
		return writeAsset(w, string(format)+".asset", unit.Assets[0].Path)
	}

	coord := unit.Coordinate
	fields := []struct{ name, value string }{
		{string(format) + ".groupId", coord.GroupID},
		{string(format) + ".artifactId", coord.ArtifactID},
		{string(format) + ".version", coord.Version},
	}
	for _, field := range fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return xerrors.Errorf("unable to write field %s: %w", field.name, err)
		}
	}

	for i, asset := range unit.Assets {
		prefix := fmt.Sprintf("%s.asset%d", format, i+1)
		if err := w.WriteField(prefix+".extension", asset.Extension); err != nil {
			return xerrors.Errorf("unable to write field %s.extension: %w", prefix, err)
		}
		if asset.Classifier != "" {
			if err := w.WriteField(prefix+".classifier", asset.Classifier); err != nil {
				return xerrors.Errorf("unable to write field %s.classifier: %w", prefix, err)
			}
		}
		if err := writeAsset(w, prefix, asset.Path); err != nil {
			return err
		}
	}
	return nil
}

func writeAsset(w *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return xerrors.Errorf("unable to open %s: %w", path, err)
	}
	defer f.Close()

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return xerrors.Errorf("unable to create form file %s: %w", field, err)
	}
	if _, err = io.Copy(part, f); err != nil {
		return xerrors.Errorf("unable to copy %s: %w", path, err)
	}
	return nil
}

// categorize maps known response substrings to operator-facing diagnostic
// categories. The category never drives control flow.
func categorize(body string) types.Category {
	switch {
	case strings.Contains(body, "Version policy mismatch"):
		return types.CategoryPolicyMismatch
	case strings.Contains(body, "Repository does not allow updating assets"):
		return types.CategoryReadOnly
	case strings.Contains(body, "This path is already a hash"):
		return types.CategoryDuplicateHashPath
	}
	return types.CategoryService
}
