package binary

import (
	"io"
	"time"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/asset"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/github"
)

// VerificationMethod indicates how a downloaded asset was verified
type VerificationMethod int

const (
	// VerificationNone indicates the release offered nothing to verify against
	VerificationNone VerificationMethod = iota
	// VerificationSHA256 indicates a checksum sidecar matched
	VerificationSHA256
	// VerificationGPG indicates an OpenPGP detached signature matched
	VerificationGPG
	// VerificationMinisign indicates a minisign signature matched
	VerificationMinisign
)

// String returns the string representation of the verification method
func (v VerificationMethod) String() string {
	switch v {
	case VerificationGPG:
		return "GPG"
	case VerificationSHA256:
		return "SHA256"
	case VerificationMinisign:
		return "minisign"
	case VerificationNone:
		return "None"
	default:
		return "Unknown"
	}
}

// VerificationResult contains the outcome of a verification attempt
type VerificationResult struct {
	Method  VerificationMethod
	Success bool
	Error   error
}

// Progress receives the bytes of an asset as they stream to disk.
// *progressbar.ProgressBar satisfies it.
type Progress interface {
	io.Writer
	Finish() error
}

// ProgressFunc starts progress reporting for a download of total bytes.
// total is -1 when the server sent no Content-Length.
type ProgressFunc func(total int64, description string) Progress

// InstallRequest describes one resolved asset to install.
type InstallRequest struct {
	Owner string
	Repo  string
	Asset github.Asset
	// Siblings is the release's full asset list, searched for checksums
	// and signatures.
	Siblings []github.Asset
	// EntryName is an alternative entry name accepted alongside BinName,
	// usually the repository name when the binary is renamed.
	EntryName string
	// BinName is the installed file name, without the Windows .exe suffix.
	BinName string
	BinDir  string
	Filter  asset.Filter
	Strip   bool
	// TempDir receives the downloads. The caller owns its cleanup.
	TempDir string
}

// InstallResult contains information about a completed install
type InstallResult struct {
	Path         string
	Size         int64
	Entry        string
	Verified     VerificationMethod
	DownloadTime time.Duration
}

// ExtractRequest describes how to pull the executable out of a download.
type ExtractRequest struct {
	// ArchivePath is the downloaded file.
	ArchivePath string
	// AssetName is the declared asset name, used for format detection.
	AssetName string
	// EntryName is accepted alongside BinName in the first entry pass.
	EntryName string
	BinName   string
	DestDir   string
	Filter    asset.Filter
	Strip     bool
}

// ExtractResult reports the installed executable.
type ExtractResult struct {
	Path  string
	Size  int64
	Entry string
	Kind  ArchiveKind
}
