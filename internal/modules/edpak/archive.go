package edpak

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

const ManifestName = "manifest.json"

// Archive is an opened edpak held entirely in memory.
type Archive struct {
	zr       *zip.Reader
	byName   map[string]*zip.File
	byClean  map[string]*zip.File
	Manifest *Manifest
	// ManifestText is manifest.json exactly as decoded from the archive.
	ManifestText string
	Size         int
}

// OpenArchive opens raw as a ZIP and parses its manifest.json. It does not
// validate the manifest.
func OpenArchive(raw []byte) (*Archive, error) {
	if len(raw) == 0 {
		return nil, newError(KindEmptyArchive, "edpak archive is empty", nil)
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if errors.Is(err, zip.ErrInsecurePath) && zr != nil {
		// Entries are only ever looked up by name, never written to disk.
		err = nil
	}
	if err != nil {
		return nil, newError(KindInvalidArchive, "edpak archive is not a valid zip file", err)
	}

	a := &Archive{
		zr:      zr,
		byName:  make(map[string]*zip.File, len(zr.File)),
		byClean: make(map[string]*zip.File, len(zr.File)),
		Size:    len(raw),
	}
	for _, f := range zr.File {
		if f == nil || f.FileInfo().IsDir() {
			continue
		}
		if _, ok := a.byName[f.Name]; !ok {
			a.byName[f.Name] = f
		}
		clean := cleanEntryName(f.Name)
		if _, ok := a.byClean[clean]; !ok && clean != "" {
			a.byClean[clean] = f
		}
	}

	text, found, err := a.ReadText(ManifestName)
	if err != nil {
		return nil, newError(KindInvalidArchive, "read "+ManifestName, err)
	}
	if !found {
		return nil, newError(KindInvalidArchive, ManifestName+" not found", nil)
	}
	m, err := ParseManifest([]byte(text))
	if err != nil {
		return nil, err
	}
	a.ManifestText = text
	a.Manifest = m
	return a, nil
}

func cleanEntryName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	for {
		switch {
		case strings.HasPrefix(name, "./"):
			name = name[2:]
		case strings.HasPrefix(name, "/"):
			name = name[1:]
		default:
			return name
		}
	}
}

func (a *Archive) lookup(path string) *zip.File {
	if a == nil {
		return nil
	}
	if f, ok := a.byName[path]; ok {
		return f
	}
	return a.byClean[cleanEntryName(path)]
}

// Has reports whether path names a file entry.
func (a *Archive) Has(path string) bool {
	return strings.TrimSpace(path) != "" && a.lookup(path) != nil
}

// ReadBytes returns the raw bytes of path; found is false when no entry matches.
func (a *Archive) ReadBytes(path string) ([]byte, bool, error) {
	if strings.TrimSpace(path) == "" {
		return nil, false, nil
	}
	f := a.lookup(path)
	if f == nil {
		return nil, false, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, true, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, true, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return b, true, nil
}

// ReadText returns path decoded as UTF-8. Invalid sequences become U+FFFD and
// a leading byte order mark is dropped.
func (a *Archive) ReadText(path string) (string, bool, error) {
	b, found, err := a.ReadBytes(path)
	if err != nil || !found {
		return "", found, err
	}
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
	return strings.ToValidUTF8(string(b), "\uFFFD"), true, nil
}

// Entries lists file entry names in archive order.
func (a *Archive) Entries() []string {
	if a == nil || a.zr == nil {
		return nil
	}
	out := make([]string, 0, len(a.zr.File))
	for _, f := range a.zr.File {
		if f != nil && !f.FileInfo().IsDir() {
			out = append(out, f.Name)
		}
	}
	return out
}
