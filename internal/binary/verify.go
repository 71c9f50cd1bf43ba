package binary

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/jedisct1/go-minisign"
	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/github"
)

// ErrChecksumRequired is returned when checksums are mandatory and the
// release publishes none for the asset.
var ErrChecksumRequired = errors.New("checksum required but release has none")

// errChecksumUnusable marks a checksum file with no SHA-256 line for the
// asset.
var errChecksumUnusable = errors.New("no SHA-256 checksum for asset")

// VerifyConfig selects which checks run.
type VerifyConfig struct {
	RequireChecksum bool
	// KeyringPath is an OpenPGP keyring, armored or binary.
	KeyringPath string
	// MinisignKeyPath is a minisign public key file.
	MinisignKeyPath string
}

// Sidecars are the verification files a release publishes next to an asset.
type Sidecars struct {
	Checksum *github.Asset
	// ChecksumIsList is set when Checksum is a release-wide list rather
	// than a file made for the asset.
	ChecksumIsList bool
	Signature      *github.Asset
	Minisig        *github.Asset
}

// FindSidecars looks for a's checksum and signature files among siblings.
// A per-asset checksum wins over a release-wide checksum list.
func FindSidecars(a github.Asset, siblings []github.Asset) Sidecars {
	var sc Sidecars
	var checksumList *github.Asset
	name := strings.ToLower(a.Name)

	for i := range siblings {
		s := &siblings[i]
		lower := strings.ToLower(s.Name)
		switch lower {
		case name:
			continue
		case name + ".sha256", name + ".sha256sum":
			sc.Checksum = s
		case name + ".asc", name + ".sig":
			if sc.Signature == nil {
				sc.Signature = s
			}
		case name + ".minisig":
			sc.Minisig = s
		default:
			if checksumList == nil && isChecksumList(lower) {
				checksumList = s
			}
		}
	}

	if sc.Checksum == nil && checksumList != nil {
		sc.Checksum = checksumList
		sc.ChecksumIsList = true
	}
	return sc
}

func isChecksumList(lower string) bool {
	for _, suffix := range []string{".asc", ".sig", ".minisig", ".pem"} {
		if strings.HasSuffix(lower, suffix) {
			return false
		}
	}
	return strings.Contains(lower, "checksums") || strings.Contains(lower, "sha256sums")
}

// VerifyRequest points at a downloaded asset and its downloaded sidecars.
// Empty paths mean the sidecar is absent.
type VerifyRequest struct {
	AssetPath    string
	AssetName    string
	ChecksumPath string
	// ChecksumIsList relaxes the checksum check: a release-wide list that
	// does not cover the asset with a SHA-256 line is skipped unless
	// checksums are required.
	ChecksumIsList bool
	SignaturePath  string
	MinisigPath    string
}

// Verifier handles cryptographic verification of downloaded assets
type Verifier struct {
	cfg VerifyConfig
	log *zap.SugaredLogger
}

// NewVerifier creates a new verifier
func NewVerifier(cfg VerifyConfig, logger *zap.SugaredLogger) *Verifier {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Verifier{cfg: cfg, log: logger}
}

// NeedsSignature reports whether a signature sidecar would be checked.
func (v *Verifier) NeedsSignature() bool {
	return v.cfg.KeyringPath != ""
}

// NeedsMinisig reports whether a minisign sidecar would be checked.
func (v *Verifier) NeedsMinisig() bool {
	return v.cfg.MinisignKeyPath != ""
}

// Verify runs every check that has both a sidecar and a key, and returns
// the strongest successful method. Any failed check is an error.
func (v *Verifier) Verify(req VerifyRequest) (*VerificationResult, error) {
	result := &VerificationResult{Method: VerificationNone, Success: true}

	if req.ChecksumPath != "" {
		r, err := v.verifySHA256(req.AssetPath, req.ChecksumPath, req.AssetName)
		switch {
		case err == nil:
			result = r
		case req.ChecksumIsList && errors.Is(err, errChecksumUnusable):
			if v.cfg.RequireChecksum {
				return r, fmt.Errorf("%s: %w", req.AssetName, ErrChecksumRequired)
			}
			v.log.Debugw("checksum list skipped", "asset", req.AssetName, "list", filepath.Base(req.ChecksumPath), "reason", err)
		default:
			return r, fmt.Errorf("SHA256 verification failed for %s: %w", req.AssetName, err)
		}
	} else if v.cfg.RequireChecksum {
		return &VerificationResult{Method: VerificationSHA256, Error: ErrChecksumRequired}, ErrChecksumRequired
	}

	if req.SignaturePath != "" && v.cfg.KeyringPath != "" {
		r, err := v.verifyGPG(req.AssetPath, req.SignaturePath)
		if err != nil {
			return r, fmt.Errorf("GPG verification failed for %s: %w", req.AssetName, err)
		}
		result = r
	}

	if req.MinisigPath != "" && v.cfg.MinisignKeyPath != "" {
		r, err := v.verifyMinisign(req.AssetPath, req.MinisigPath)
		if err != nil {
			return r, fmt.Errorf("minisign verification failed for %s: %w", req.AssetName, err)
		}
		result = r
	}

	v.log.Debugw("asset verified", "asset", req.AssetName, "method", result.Method.String())
	return result, nil
}

// verifyGPG verifies a file using an OpenPGP detached signature
func (v *Verifier) verifyGPG(assetPath, signaturePath string) (*VerificationResult, error) {
	fail := func(err error) (*VerificationResult, error) {
		return &VerificationResult{Method: VerificationGPG, Error: err}, err
	}

	keyring, err := loadKeyring(v.cfg.KeyringPath)
	if err != nil {
		return fail(fmt.Errorf("load keyring: %w", err))
	}

	assetFile, err := os.Open(assetPath)
	if err != nil {
		return fail(fmt.Errorf("open asset: %w", err))
	}
	defer assetFile.Close()

	sigFile, err := os.Open(signaturePath)
	if err != nil {
		return fail(fmt.Errorf("open signature: %w", err))
	}
	defer sigFile.Close()

	// Armored first, then binary
	_, err = openpgp.CheckArmoredDetachedSignature(keyring, assetFile, sigFile, nil)
	if err != nil {
		assetFile.Seek(0, io.SeekStart)
		sigFile.Seek(0, io.SeekStart)
		_, err = openpgp.CheckDetachedSignature(keyring, assetFile, sigFile, nil)
	}
	if err != nil {
		return fail(fmt.Errorf("verify signature: %w", err))
	}

	return &VerificationResult{Method: VerificationGPG, Success: true}, nil
}

// verifyMinisign verifies a file against a minisign signature
func (v *Verifier) verifyMinisign(assetPath, minisigPath string) (*VerificationResult, error) {
	fail := func(err error) (*VerificationResult, error) {
		return &VerificationResult{Method: VerificationMinisign, Error: err}, err
	}

	pubKey, err := minisign.NewPublicKeyFromFile(v.cfg.MinisignKeyPath)
	if err != nil {
		return fail(fmt.Errorf("read minisign public key: %w", err))
	}
	sig, err := minisign.NewSignatureFromFile(minisigPath)
	if err != nil {
		return fail(fmt.Errorf("read minisign signature: %w", err))
	}
	content, err := os.ReadFile(assetPath)
	if err != nil {
		return fail(fmt.Errorf("read asset: %w", err))
	}

	valid, err := pubKey.Verify(content, sig)
	if err != nil {
		return fail(fmt.Errorf("verify signature: %w", err))
	}
	if !valid {
		return fail(fmt.Errorf("signature does not match"))
	}

	return &VerificationResult{Method: VerificationMinisign, Success: true}, nil
}

// verifySHA256 verifies a file using a SHA256 checksum sidecar
func (v *Verifier) verifySHA256(assetPath, checksumPath, assetName string) (*VerificationResult, error) {
	fail := func(err error) (*VerificationResult, error) {
		return &VerificationResult{Method: VerificationSHA256, Error: err}, err
	}

	actualChecksum, err := calculateSHA256(assetPath)
	if err != nil {
		return fail(fmt.Errorf("calculate checksum: %w", err))
	}

	expectedChecksum, err := findChecksum(checksumPath, assetName)
	if err != nil {
		return fail(fmt.Errorf("find checksum: %w", err))
	}

	if !strings.EqualFold(actualChecksum, expectedChecksum) {
		return fail(fmt.Errorf("checksum mismatch:\nactual:   %s\nexpected: %s", actualChecksum, expectedChecksum))
	}

	return &VerificationResult{Method: VerificationSHA256, Success: true}, nil
}

// loadKeyring loads an OpenPGP keyring file
func loadKeyring(keyringPath string) (openpgp.EntityList, error) {
	keyringFile, err := os.Open(keyringPath)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	defer keyringFile.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(keyringFile)
	if err != nil {
		keyringFile.Seek(0, io.SeekStart)
		keyring, err = openpgp.ReadKeyRing(keyringFile)
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}

	if len(keyring) == 0 {
		return nil, fmt.Errorf("keyring is empty")
	}

	return keyring, nil
}

// calculateSHA256 calculates the SHA256 checksum of a file
func calculateSHA256(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// findChecksum finds the checksum for filename in a checksum file.
// Lines look like "abc123  name" or "abc123 *name"; a file holding a
// single bare digest applies to the asset it accompanies.
func findChecksum(checksumPath, filename string) (string, error) {
	file, err := os.Open(checksumPath)
	if err != nil {
		return "", fmt.Errorf("open checksum file: %w", err)
	}
	defer file.Close()

	var bare []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) == 1 {
			bare = append(bare, parts[0])
			continue
		}

		checksumFilename := strings.TrimPrefix(parts[len(parts)-1], "*")
		if checksumFilename == filename || filepath.Base(checksumFilename) == filename {
			if len(parts[0]) != sha256.Size*2 {
				return "", fmt.Errorf("%w: %d-character digest for %s", errChecksumUnusable, len(parts[0]), filename)
			}
			return parts[0], nil
		}
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan checksum file: %w", err)
	}
	if len(bare) == 1 && len(bare[0]) == sha256.Size*2 {
		return bare[0], nil
	}

	return "", fmt.Errorf("%w: checksum not found for %s", errChecksumUnusable, filename)
}
