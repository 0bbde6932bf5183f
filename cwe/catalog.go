package cwe

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/vuln-list-stats/utils"
)

const CatalogURL = "https://cwe.mitre.org/data/xml/cwec_latest.xml.zip"

// Elements are matched by local name so that any schema revision
// (cwe-6, cwe-7, ...) decodes.
type weaknessCatalog struct {
	Weaknesses []entry `xml:"Weaknesses>Weakness"`
	Categories []entry `xml:"Categories>Category"`
}

type entry struct {
	ID   int    `xml:"ID,attr"`
	Name string `xml:"Name,attr"`
}

// Catalog maps canonical identifiers such as "CWE-79" to their names.
type Catalog map[string]string

// Name returns the name of id, or an empty string when it is not listed.
func (c Catalog) Name(id string) string {
	return c[id]
}

// LoadCatalog reads a CWE XML catalog, plain or zipped, from fs.
func LoadCatalog(fs afero.Fs, path string) (Catalog, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, xerrors.Errorf("file read error: %w", err)
	}
	if strings.HasSuffix(path, ".zip") {
		if b, err = unzip(b); err != nil {
			return nil, err
		}
	}
	return parse(b)
}

// DownloadCatalog fetches and unpacks the catalog published at url.
func DownloadCatalog(ctx context.Context, url string) (Catalog, error) {
	log.Println("Fetching CWE catalog...")
	dir, err := utils.DownloadToTempDir(ctx, url)
	if err != nil {
		return nil, xerrors.Errorf("failed to fetch cwe catalog: %w", err)
	}
	defer os.RemoveAll(dir)

	matches, err := filepath.Glob(filepath.Join(dir, "*.xml"))
	if err != nil {
		return nil, xerrors.Errorf("glob error: %w", err)
	}
	if len(matches) != 1 {
		return nil, xerrors.Errorf("invalid CWE archive: %d xml files", len(matches))
	}
	return LoadCatalog(afero.NewOsFs(), matches[0])
}

func parse(b []byte) (Catalog, error) {
	var wc weaknessCatalog
	if err := xml.Unmarshal(b, &wc); err != nil {
		return nil, xerrors.Errorf("xml decode error: %w", err)
	}

	c := Catalog{}
	for _, e := range append(wc.Weaknesses, wc.Categories...) {
		c[fmt.Sprintf("CWE-%d", e.ID)] = e.Name
	}
	return c, nil
}

func unzip(data []byte) ([]byte, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, xerrors.Errorf("unable to initialize zip: %w", err)
	}

	if len(zipReader.File) != 1 {
		return nil, xerrors.Errorf("invalid CWE zip: %d files in archive", len(zipReader.File))
	}

	b, err := readZipFile(zipReader.File[0])
	if err != nil {
		return nil, xerrors.Errorf("unable to read zip archive: %w", err)
	}
	return b, nil
}

func readZipFile(zf *zip.File) ([]byte, error) {
	f, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
