package binary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/github"
)

const (
	// DefaultTimeout is the default HTTP timeout for one asset download
	DefaultTimeout = 10 * time.Minute
	// maxRedirects bounds the redirect chain to the storage backend
	maxRedirects = 10
)

// AssetRequester builds the HTTP request serving an asset's bytes.
// *github.Client implements it.
type AssetRequester interface {
	NewAssetRequest(ctx context.Context, owner, repo string, id int64) (*http.Request, error)
}

// Downloader streams release assets to disk
type Downloader struct {
	client    *http.Client
	requester AssetRequester
	progress  ProgressFunc
	log       *zap.SugaredLogger
}

// NewDownloader creates a new downloader
func NewDownloader(requester AssetRequester, progress ProgressFunc, logger *zap.SugaredLogger) *Downloader {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Downloader{
		client: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		requester: requester,
		progress:  progress,
		log:       logger,
	}
}

// Download streams a into destDir under its declared name and returns the
// file path. Any failure removes the partial file.
func (d *Downloader) Download(ctx context.Context, owner, repo string, a github.Asset, destDir string) (string, error) {
	req, err := d.requester.NewAssetRequest(ctx, owner, repo, a.ID)
	if err != nil {
		return "", err
	}

	destPath := filepath.Join(destDir, filepath.Base(a.Name))
	n, err := d.DownloadToFile(req, destPath, a.Name)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", a.Name, err)
	}

	d.log.Debugw("asset downloaded", "asset", a.Name, "bytes", n, "path", destPath)
	return destPath, nil
}

// DownloadToFile executes req and writes a 200 body to destPath.
func (d *Downloader) DownloadToFile(req *http.Request, destPath, description string) (int64, error) {
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, github.ErrAssetNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return 0, fmt.Errorf("create dest dir: %w", err)
	}

	tmpPath := destPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	var w io.Writer = tmpFile
	var bar Progress
	if d.progress != nil {
		bar = d.progress(resp.ContentLength, description)
		w = io.MultiWriter(tmpFile, bar)
	}

	n, err := io.Copy(w, resp.Body)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return 0, fmt.Errorf("write a chunk to temp file: %w", err)
	}
	if resp.ContentLength >= 0 && n != resp.ContentLength {
		return 0, fmt.Errorf("short download: got %d of %d bytes", n, resp.ContentLength)
	}

	if err := tmpFile.Close(); err != nil {
		return 0, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return 0, fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return n, nil
}
