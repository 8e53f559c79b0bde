package cassette

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
)

const (
	metaEntry = "cassette.json"
	dataEntry = "data.bin"
)

// metadata is the JSON header stored next to the cassette bytes.
type metadata struct {
	Sections int       `json:"sections"`
	Size     int       `json:"size"`
	Modified time.Time `json:"modified"`
}

// FileCassette is a cassette stored as a zip archive on disk holding
// cassette.json and data.bin.
type FileCassette struct {
	Path string
}

// CreateFile writes a blank cassette with the given number of sections.
func CreateFile(path string, sections int) (*FileCassette, error) {
	fc := &FileCassette{Path: path}
	if err := fc.WriteBlob(New(sections)); err != nil {
		return nil, err
	}
	return fc, nil
}

func (fc *FileCassette) ReadBlob() ([]byte, error) {
	raw, err := os.ReadFile(fc.Path)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrNotFound, "%s", fc.Path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading cassette %s", fc.Path)
	}
	data, err := decodeArchive(raw)
	return data, errors.Wrapf(err, "%s", fc.Path)
}

func (fc *FileCassette) WriteBlob(data []byte) error {
	raw, err := encodeArchive(data)
	if err != nil {
		return errors.Wrapf(err, "encoding cassette %s", fc.Path)
	}
	tmp := fc.Path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return errors.Wrapf(err, "writing cassette %s", fc.Path)
	}
	return errors.Wrapf(os.Rename(tmp, fc.Path), "replacing cassette %s", fc.Path)
}

func encodeArchive(data []byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	meta, err := json.MarshalIndent(metadata{
		Sections: Sections(data),
		Size:     len(data),
		Modified: time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal metadata")
	}
	if err := writeZipEntry(zw, metaEntry, meta); err != nil {
		return nil, err
	}
	if err := writeZipEntry(zw, dataEntry, data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "closing zip")
	}
	return buf.Bytes(), nil
}

func decodeArchive(raw []byte) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, errors.Wrapf(ErrBlobCorrupt, "open zip: %v", err)
	}

	fileMap := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		fileMap[f.Name] = f
	}

	metaData, err := readZipEntry(fileMap, metaEntry)
	if err != nil {
		return nil, err
	}
	var meta metadata
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, errors.Wrapf(ErrBlobCorrupt, "unmarshal %s: %v", metaEntry, err)
	}

	data, err := readZipEntry(fileMap, dataEntry)
	if err != nil {
		return nil, err
	}
	if len(data) != meta.Size {
		return nil, errors.Wrapf(ErrBlobCorrupt, "%s holds %d bytes, header says %d", dataEntry, len(data), meta.Size)
	}
	return data, nil
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return errors.Wrapf(err, "create zip entry %q", name)
	}
	_, err = w.Write(data)
	return errors.Wrapf(err, "write zip entry %q", name)
}

func readZipEntry(fileMap map[string]*zip.File, name string) ([]byte, error) {
	f, ok := fileMap[name]
	if !ok {
		return nil, errors.Wrapf(ErrBlobCorrupt, "zip entry %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(ErrBlobCorrupt, "open zip entry %q: %v", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrapf(ErrBlobCorrupt, "read zip entry %q: %v", name, err)
	}
	return data, nil
}
