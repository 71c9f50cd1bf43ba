// Package binary downloads, verifies and installs the executable shipped in
// a GitHub release asset.
//
// # Formats
//
// The asset format is detected from its name alone (see DetectKind):
// zip, tar optionally wrapped in gzip, bzip2, xz or zstd, a single
// compressed stream, or a bare executable. Anything unrecognized is
// installed verbatim.
//
// # Entry Matching
//
// Inside tar and zip containers the executable is found in two passes:
//   - an entry whose base name equals the binary name (or EntryName)
//   - an entry whose base name equals the archive name without its suffix
//
// An explicit entry filter replaces both passes and is matched against the
// full entry path. When nothing matches, EntryNotFoundError lists every
// entry seen.
//
// # Verification
//
// Before extraction the Verifier checks, when the release provides them:
//   - a SHA256 checksum sidecar or release-wide checksum list
//   - an OpenPGP detached signature, given a keyring
//   - a minisign signature, given a public key
//
// # Usage
//
//	mgr, err := binary.NewManager(binary.Config{
//	    Requester: client,
//	    GOOS:      info.OS,
//	})
//	if err != nil {
//	    return err
//	}
//
//	res, err := mgr.Install(ctx, binary.InstallRequest{
//	    Owner:   "BurntSushi",
//	    Repo:    "ripgrep",
//	    Asset:   resolution.Asset,
//	    BinName: "rg",
//	    BinDir:  binDir,
//	    TempDir: tmp,
//	})
package binary
