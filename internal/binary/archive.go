package binary

import (
	"compress/bzip2"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression is the stream codec wrapping an asset or a tar container.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionXz
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXz:
		return "xz"
	case CompressionZstd:
		return "zstd"
	default:
		return "none"
	}
}

// Container is how entries are laid out inside the decompressed stream.
type Container int

const (
	// ContainerNone is a single compressed or bare executable.
	ContainerNone Container = iota
	ContainerTar
	ContainerZip
)

// ArchiveKind is the detected format of a downloaded asset.
type ArchiveKind struct {
	Container   Container
	Compression Compression
	// Suffix is the matched name suffix, empty for bare executables.
	Suffix string
}

func (k ArchiveKind) String() string {
	switch {
	case k.Container == ContainerZip:
		return "zip"
	case k.Container == ContainerTar && k.Compression == CompressionNone:
		return "tar"
	case k.Container == ContainerTar:
		return "tar+" + k.Compression.String()
	case k.Compression != CompressionNone:
		return k.Compression.String()
	default:
		return "uncompressed"
	}
}

// IsArchive reports whether the kind holds multiple entries.
func (k ArchiveKind) IsArchive() bool {
	return k.Container != ContainerNone
}

type suffixRule struct {
	suffixes []string
	kind     ArchiveKind
}

// Suffixes nest, so rules are checked in order, most specific first.
var suffixRules = []suffixRule{
	{[]string{".zip"}, ArchiveKind{Container: ContainerZip}},
	{[]string{".tar.gz", ".tgz"}, ArchiveKind{Container: ContainerTar, Compression: CompressionGzip}},
	{[]string{".tar.bz2", ".tbz"}, ArchiveKind{Container: ContainerTar, Compression: CompressionBzip2}},
	{[]string{".tar.xz", ".txz"}, ArchiveKind{Container: ContainerTar, Compression: CompressionXz}},
	{[]string{".tar.zst", ".tzst"}, ArchiveKind{Container: ContainerTar, Compression: CompressionZstd}},
	{[]string{".tar"}, ArchiveKind{Container: ContainerTar}},
	{[]string{".gz", ".gzip", ".gnuzip"}, ArchiveKind{Compression: CompressionGzip}},
	{[]string{".bz2", ".bzip2"}, ArchiveKind{Compression: CompressionBzip2}},
	{[]string{".xz"}, ArchiveKind{Compression: CompressionXz}},
	{[]string{".zst", ".zstd"}, ArchiveKind{Compression: CompressionZstd}},
}

// DetectKind classifies an asset by its file name alone. Anything without
// a recognized suffix is an uncompressed executable, including names such
// as "tool-1.2.3" whose dots are not compression markers.
func DetectKind(name string) ArchiveKind {
	lower := strings.ToLower(name)
	for _, rule := range suffixRules {
		for _, suffix := range rule.suffixes {
			if strings.HasSuffix(lower, suffix) {
				kind := rule.kind
				kind.Suffix = suffix
				return kind
			}
		}
	}
	return ArchiveKind{}
}

// TrimArchiveSuffix returns name without its recognized archive suffix.
func TrimArchiveSuffix(name string) string {
	kind := DetectKind(name)
	return name[:len(name)-len(kind.Suffix)]
}

// newDecompressor wraps r with the reader for c. Closing the result
// releases decoder resources but not r.
func newDecompressor(c Compression, r io.Reader) (io.ReadCloser, error) {
	switch c {
	case CompressionGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		return gz, nil
	case CompressionBzip2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	case CompressionXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("create xz reader: %w", err)
		}
		return io.NopCloser(xr), nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("create zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return io.NopCloser(r), nil
	}
}
