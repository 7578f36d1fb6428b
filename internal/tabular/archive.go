package tabular

import (
	"archive/zip"
	"bytes"
	"io"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	// Ext is the extension of tabular members.
	Ext = ".csv"
	// ArchiveExt is the extension of archive containers.
	ArchiveExt = ".zip"

	// maxMemberSize bounds the decompressed size of a single archive member.
	maxMemberSize = 64 << 20
)

// ErrUnsupportedFormat is returned for filenames that are neither CSV nor ZIP.
var ErrUnsupportedFormat = errors.New("Unsupported file format. Please upload CSV or ZIP files.")

// Member is one named text unit, either a whole CSV upload or one CSV entry
// inside an archive.
type Member struct {
	Name    string
	Content []byte
}

// IsArchive reports whether filename names a ZIP container.
func IsArchive(filename string) bool {
	return strings.EqualFold(path.Ext(filename), ArchiveExt)
}

// IsTabular reports whether filename names a CSV file.
func IsTabular(filename string) bool {
	return strings.EqualFold(path.Ext(filename), Ext)
}

// Unpack selects archive or single-table handling from the filename
// extension. There is no content sniffing: any other extension returns
// ErrUnsupportedFormat.
func Unpack(filename string, data []byte) ([]Member, error) {
	switch {
	case IsArchive(filename):
		return ReadArchive(data)
	case IsTabular(filename):
		return []Member{{Name: filename, Content: data}}, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// ReadArchive extracts every .csv entry of a ZIP archive in directory order.
// Directories, other extensions and macOS resource forks are ignored.
func ReadArchive(data []byte) ([]Member, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(err, "open archive")
	}

	var members []Member
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !IsTabular(f.Name) || strings.HasPrefix(f.Name, "__MACOSX/") {
			continue
		}

		content, err := readMember(f)
		if err != nil {
			return nil, errors.Wrapf(err, "read archive member %s", f.Name)
		}
		members = append(members, Member{Name: f.Name, Content: content})
	}

	return members, nil
}

func readMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	content, err := io.ReadAll(io.LimitReader(rc, maxMemberSize+1))
	if err != nil {
		return nil, err
	}
	if len(content) > maxMemberSize {
		return nil, errors.Newf("member exceeds %d bytes", maxMemberSize)
	}
	return content, nil
}

// WriteArchive packs members into a deflate-compressed ZIP, in the given order.
func WriteArchive(members []Member) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, m := range members {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: m.Name, Method: zip.Deflate})
		if err != nil {
			return nil, errors.Wrapf(err, "create archive entry %s", m.Name)
		}
		if _, err := w.Write(m.Content); err != nil {
			return nil, errors.Wrapf(err, "write archive entry %s", m.Name)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "finalize archive")
	}
	return buf.Bytes(), nil
}
