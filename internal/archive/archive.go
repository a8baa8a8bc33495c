// Package archive reads zip-based plugin archives.
package archive

import (
	"archive/zip"
	"io"
	"strings"

	"github.com/samber/oops"

	"github.com/stevedore/stevedore/internal/manifest"
)

// ManifestEntry is the archive entry holding plugin metadata.
const ManifestEntry = "plugin.yaml"

// Archive is an open zip-based plugin archive. It is read-only and
// transient: opened, scanned, and closed per load attempt.
type Archive struct {
	path string
	rc   *zip.ReadCloser
}

// Open opens the archive at path for reading.
func Open(path string) (*Archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, oops.Code("ARCHIVE_OPEN_FAILED").
			With("path", path).
			Wrapf(err, "open archive %s", path)
	}
	return &Archive{path: path, rc: rc}, nil
}

// Path returns the file-system path the archive was opened from.
func (a *Archive) Path() string {
	return a.path
}

// Entries returns the names of all file entries in archive order.
// Directory entries are skipped.
func (a *Archive) Entries() []string {
	entries := make([]string, 0, len(a.rc.File))
	for _, f := range a.rc.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, f.Name)
	}
	return entries
}

// Manifest reads and parses the plugin.yaml entry. It returns (nil, nil)
// when the archive carries no manifest.
func (a *Archive) Manifest() (*manifest.Manifest, error) {
	for _, f := range a.rc.File {
		if f.Name != ManifestEntry {
			continue
		}

		r, err := f.Open()
		if err != nil {
			return nil, oops.Code("MANIFEST_READ_FAILED").
				With("path", a.path).
				Wrapf(err, "open manifest entry")
		}
		data, err := io.ReadAll(r)
		_ = r.Close()
		if err != nil {
			return nil, oops.Code("MANIFEST_READ_FAILED").
				With("path", a.path).
				Wrapf(err, "read manifest entry")
		}

		m, err := manifest.Parse(data)
		if err != nil {
			return nil, oops.Code("MANIFEST_INVALID").
				With("path", a.path).
				Wrapf(err, "parse manifest")
		}
		return m, nil
	}
	return nil, nil
}

// Close releases the underlying zip reader.
func (a *Archive) Close() error {
	return a.rc.Close()
}

// QualifiedName derives a dot-separated qualified name from an entry path:
// the suffix is stripped and path separators become dots.
// "pkg/Bar.class" with suffix ".class" yields "pkg.Bar".
func QualifiedName(entry, suffix string) string {
	name := strings.TrimSuffix(entry, suffix)
	return strings.ReplaceAll(name, "/", ".")
}
