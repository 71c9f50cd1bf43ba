package binary

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/github"
)

// Manager orchestrates asset download, verification, and installation
type Manager struct {
	downloader *Downloader
	verifier   *Verifier
	extractor  *Extractor
	log        *zap.SugaredLogger
}

// Config holds configuration for the binary manager
type Config struct {
	// Requester builds asset download requests, usually a *github.Client.
	Requester AssetRequester
	// Progress is optional; nil disables download progress.
	Progress ProgressFunc
	Verify   VerifyConfig
	// GOOS is the operating system executables are installed for.
	GOOS string
	// Strip overrides the strip command, for tests.
	Strip  StripFunc
	Logger *zap.SugaredLogger
}

// NewManager creates a new binary manager
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Requester == nil {
		return nil, fmt.Errorf("asset requester is required")
	}
	if cfg.GOOS == "" {
		return nil, fmt.Errorf("target OS is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Manager{
		downloader: NewDownloader(cfg.Requester, cfg.Progress, logger),
		verifier:   NewVerifier(cfg.Verify, logger),
		extractor:  NewExtractor(cfg.GOOS, cfg.Strip, logger),
		log:        logger,
	}, nil
}

// Install downloads, verifies, extracts, and installs one asset
func (m *Manager) Install(ctx context.Context, req InstallRequest) (*InstallResult, error) {
	if req.TempDir == "" {
		return nil, fmt.Errorf("temp dir is required")
	}
	startTime := time.Now()

	assetPath, err := m.downloader.Download(ctx, req.Owner, req.Repo, req.Asset, req.TempDir)
	if err != nil {
		return nil, err
	}
	downloadTime := time.Since(startTime)

	vreq, err := m.downloadSidecars(ctx, req)
	if err != nil {
		return nil, err
	}
	vreq.AssetPath = assetPath
	vreq.AssetName = req.Asset.Name

	verifyResult, err := m.verifier.Verify(vreq)
	if err != nil {
		return nil, fmt.Errorf("verify asset: %w", err)
	}

	extracted, err := m.extractor.Extract(ctx, ExtractRequest{
		ArchivePath: assetPath,
		AssetName:   req.Asset.Name,
		EntryName:   req.EntryName,
		BinName:     req.BinName,
		DestDir:     req.BinDir,
		Filter:      req.Filter,
		Strip:       req.Strip,
	})
	if err != nil {
		return nil, fmt.Errorf("extract binary: %w", err)
	}

	return &InstallResult{
		Path:         extracted.Path,
		Size:         extracted.Size,
		Entry:        extracted.Entry,
		Verified:     verifyResult.Method,
		DownloadTime: downloadTime,
	}, nil
}

// downloadSidecars fetches the checksum and the signatures a configured key
// can check.
func (m *Manager) downloadSidecars(ctx context.Context, req InstallRequest) (VerifyRequest, error) {
	var vreq VerifyRequest
	sc := FindSidecars(req.Asset, req.Siblings)

	fetch := func(a *github.Asset, dst *string) error {
		if a == nil {
			return nil
		}
		path, err := m.downloader.Download(ctx, req.Owner, req.Repo, *a, req.TempDir)
		if err != nil {
			return fmt.Errorf("download verification file: %w", err)
		}
		*dst = path
		return nil
	}

	if err := fetch(sc.Checksum, &vreq.ChecksumPath); err != nil {
		return vreq, err
	}
	vreq.ChecksumIsList = sc.ChecksumIsList
	if m.verifier.NeedsSignature() {
		if err := fetch(sc.Signature, &vreq.SignaturePath); err != nil {
			return vreq, err
		}
	}
	if m.verifier.NeedsMinisig() {
		if err := fetch(sc.Minisig, &vreq.MinisigPath); err != nil {
			return vreq, err
		}
	}
	return vreq, nil
}

// IsInstalled checks if path is a regular executable file
func IsInstalled(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat binary: %w", err)
	}

	if !info.Mode().IsRegular() {
		return false, nil
	}

	return true, nil
}

// Remove deletes an installed binary. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove binary: %w", err)
	}
	return nil
}
