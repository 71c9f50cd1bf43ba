package binary

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/asset"
)

// EntryNotFoundError lists every entry of an archive that had no match.
type EntryNotFoundError struct {
	Archive string
	Pattern string
	Kind    asset.FilterKind
	Entries []string
}

func (e *EntryNotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no binary found matching `%s` %s against archive `%s` entries:\n\n", e.Pattern, e.Kind, e.Archive)
	for _, entry := range e.Entries {
		fmt.Fprintf(&b, "  %s\n", entry)
	}
	b.WriteString("\nconsider using/modifying `--entry-glob` or `--entry-regex` filter to match one of the entries above")
	return b.String()
}

// entryMatcher holds the ordered passes tried against archive entries.
type entryMatcher struct {
	passes  []func(entryPath string) bool
	pattern string
	kind    asset.FilterKind
}

// Extractor pulls the executable out of a downloaded asset and installs it
type Extractor struct {
	goos  string
	strip StripFunc
	log   *zap.SugaredLogger
}

// NewExtractor creates an extractor installing executables for goos.
// A nil strip uses the system strip command.
func NewExtractor(goos string, strip StripFunc, logger *zap.SugaredLogger) *Extractor {
	if strip == nil {
		strip = SystemStrip
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Extractor{goos: goos, strip: strip, log: logger}
}

// Extract installs the executable from req.ArchivePath as DestDir/BinName.
// The target is replaced atomically, so a running binary can be updated.
func (e *Extractor) Extract(ctx context.Context, req ExtractRequest) (*ExtractResult, error) {
	if req.BinName == "" {
		return nil, fmt.Errorf("binary name is required")
	}
	if err := req.Filter.Validate(false); err != nil {
		return nil, err
	}

	kind := DetectKind(req.AssetName)
	destPath := filepath.Join(req.DestDir, e.executableName(req.BinName))

	if err := os.MkdirAll(req.DestDir, 0755); err != nil {
		return nil, fmt.Errorf("create dest dir: %w", err)
	}

	tmpPath := destPath + ".tmp"
	out, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	cleanupNeeded := true
	defer func() {
		out.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	var entry string
	switch kind.Container {
	case ContainerZip:
		m, err := e.matcher(req)
		if err != nil {
			return nil, err
		}
		entry, err = extractZip(req.ArchivePath, req.AssetName, m, out)
		if err != nil {
			return nil, err
		}
	case ContainerTar:
		m, err := e.matcher(req)
		if err != nil {
			return nil, err
		}
		tarPath := req.ArchivePath
		if kind.Compression != CompressionNone {
			tarPath = req.ArchivePath + ".tar"
			if err := decompressFile(req.ArchivePath, tarPath, kind.Compression); err != nil {
				return nil, err
			}
			defer os.Remove(tarPath)
		}
		entry, err = extractTar(tarPath, req.AssetName, m, out)
		if err != nil {
			return nil, err
		}
	default:
		if err := decompressTo(req.ArchivePath, kind.Compression, out); err != nil {
			return nil, err
		}
		entry = req.AssetName
	}

	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("close file: %w", err)
	}

	if e.goos != "windows" {
		if err := SetExecutable(tmpPath); err != nil {
			return nil, err
		}
		if req.Strip {
			if err := e.strip(ctx, tmpPath); err != nil {
				return nil, fmt.Errorf("strip %s: %w", req.BinName, err)
			}
		}
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("stat installed binary: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return nil, fmt.Errorf("install binary: %w", err)
	}
	cleanupNeeded = false

	e.log.Debugw("binary installed", "kind", kind.String(), "entry", entry, "path", destPath, "bytes", info.Size())
	return &ExtractResult{Path: destPath, Size: info.Size(), Entry: entry, Kind: kind}, nil
}

// executableName adds the platform's executable suffix.
func (e *Extractor) executableName(name string) string {
	if e.goos == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		return name + ".exe"
	}
	return name
}

// matcher builds the entry passes for req. An explicit filter is matched
// against the full entry path and replaces both default passes.
func (e *Extractor) matcher(req ExtractRequest) (*entryMatcher, error) {
	if !req.Filter.IsZero() {
		fn, err := req.Filter.EntryMatcher()
		if err != nil {
			return nil, err
		}
		return &entryMatcher{
			passes:  []func(string) bool{fn},
			pattern: req.Filter.Pattern(),
			kind:    req.Filter.Kind(),
		}, nil
	}

	lookup := e.executableName(req.BinName)
	names := []string{lookup}
	if req.EntryName != "" {
		if alt := e.executableName(req.EntryName); alt != lookup {
			names = append(names, alt)
		}
	}

	archiveBase := TrimArchiveSuffix(path.Base(filepath.ToSlash(req.AssetName)))
	baseNames := []string{archiveBase}
	if exe := e.executableName(archiveBase); exe != archiveBase {
		baseNames = append(baseNames, exe)
	}

	return &entryMatcher{
		passes: []func(string) bool{
			baseNameIs(names...),
			baseNameIs(baseNames...),
		},
		pattern: lookup,
		kind:    asset.FilterDefault,
	}, nil
}

func baseNameIs(names ...string) func(string) bool {
	return func(entryPath string) bool {
		base := path.Base(entryPath)
		for _, n := range names {
			if base == n {
				return true
			}
		}
		return false
	}
}

// extractTar scans the tar at tarPath once per pass and copies the first
// regular file a pass accepts into out.
func extractTar(tarPath, assetName string, m *entryMatcher, out io.Writer) (string, error) {
	var seen []string
	for i, accept := range m.passes {
		entry, names, err := scanTar(tarPath, accept, out)
		if err != nil {
			return "", err
		}
		if entry != "" {
			return entry, nil
		}
		if i == 0 {
			seen = names
		}
	}

	return "", &EntryNotFoundError{Archive: assetName, Pattern: m.pattern, Kind: m.kind, Entries: seen}
}

func scanTar(tarPath string, accept func(string) bool, out io.Writer) (string, []string, error) {
	f, err := os.Open(tarPath)
	if err != nil {
		return "", nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	var names []string
	tr := tar.NewReader(f)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return "", names, nil
		}
		if err != nil {
			return "", nil, fmt.Errorf("read tar header: %w", err)
		}

		name := strings.TrimPrefix(header.Name, "./")
		names = append(names, name)

		if header.Typeflag != tar.TypeReg || !accept(name) {
			continue
		}
		if _, err := io.Copy(out, tr); err != nil {
			return "", nil, fmt.Errorf("write file: %w", err)
		}
		return name, names, nil
	}
}

// extractZip finds the entry index from the central directory alone and
// then decompresses only that entry.
func extractZip(zipPath, assetName string, m *entryMatcher, out io.Writer) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("open zip archive: %w", err)
	}
	defer r.Close()

	idx := -1
	for _, accept := range m.passes {
		for i, f := range r.File {
			if f.FileInfo().Mode().IsRegular() && accept(f.Name) {
				idx = i
				break
			}
		}
		if idx >= 0 {
			break
		}
	}

	if idx < 0 {
		names := make([]string, len(r.File))
		for i, f := range r.File {
			names[i] = f.Name
		}
		return "", &EntryNotFoundError{Archive: assetName, Pattern: m.pattern, Kind: m.kind, Entries: names}
	}

	zf := r.File[idx]
	rc, err := zf.Open()
	if err != nil {
		return "", fmt.Errorf("open zip entry %s: %w", zf.Name, err)
	}
	defer rc.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return zf.Name, nil
}

// decompressFile writes the decompressed stream of src to dst.
func decompressFile(src, dst string, c Compression) error {
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create decompressed file: %w", err)
	}

	if err := decompressTo(src, c, out); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("close decompressed file: %w", err)
	}
	return nil
}

func decompressTo(src string, c Compression, out io.Writer) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open asset: %w", err)
	}
	defer f.Close()

	r, err := newDecompressor(c, f)
	if err != nil {
		return err
	}
	defer r.Close()

	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("decompress %s stream: %w", c, err)
	}
	return nil
}

// SetExecutable sets executable permissions on a file
func SetExecutable(path string) error {
	if err := os.Chmod(path, 0755); err != nil {
		return fmt.Errorf("set executable: %w", err)
	}
	return nil
}
