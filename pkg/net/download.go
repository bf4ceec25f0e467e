package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	maxIdleConns     = 10
	timeoutInSeconds = 60
	clientAgent      = "namedist/1.0"
	dirMode          = 0755
)

var (
	reqTransport = &http.Transport{
		MaxIdleConns:          maxIdleConns,
		IdleConnTimeout:       timeoutInSeconds * time.Second,
		DisableCompression:    true,
		DisableKeepAlives:     false,
		ResponseHeaderTimeout: time.Duration(timeoutInSeconds) * time.Second,
	}

	ErrorURLNotFound = errors.New("URL not found")
)

// GetHTTPClient returns the client used for source downloads.
func GetHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   time.Duration(timeoutInSeconds) * time.Second,
		Transport: reqTransport,
	}
}

func getResp(ctx context.Context, c *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP Get request: %w", err)
	}

	req.Header.Set("User-Agent", clientAgent)

	return c.Do(req) //nolint:gosec // URL comes from the local config file
}

// Download saves the content at url into path, creating parent dirs.
// Content goes to a temp file that is renamed once complete.
func Download(ctx context.Context, c *http.Client, url, path string) (n int64, retErr error) {
	if url == "" || path == "" {
		return 0, errors.New("url and path required")
	}
	if c == nil {
		c = GetHTTPClient()
	}

	resp, err := getResp(ctx, c, url)
	if err != nil {
		return 0, fmt.Errorf("error downloading %s: %w", url, err)
	}
	defer resp.Body.Close()
	PrintHTTPResponse(resp)

	if resp.StatusCode == http.StatusNotFound {
		return 0, ErrorURLNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("error downloading file (status: %d - %s): %s", resp.StatusCode, resp.Status, url)
	}

	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return 0, fmt.Errorf("error creating dir for %s: %w", path, err)
	}

	tmp := path + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("error creating file %s: %w", tmp, err)
	}
	defer func() {
		if retErr != nil {
			_ = os.Remove(tmp)
		}
	}()

	n, err = io.Copy(out, resp.Body)
	if cerr := out.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("error saving downloaded content to file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return 0, fmt.Errorf("error moving %s to %s: %w", tmp, path, err)
	}

	slog.Debug("downloaded", "url", url, "path", path, "size", humanize.Bytes(uint64(n)))
	return n, nil
}
