package cwe_test

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquasecurity/vuln-list-stats/cwe"
)

const catalogXML = `<?xml version="1.0" encoding="UTF-8"?>
<Weakness_Catalog xmlns="http://cwe.mitre.org/cwe-7" Name="CWE" Version="4.14">
  <Weaknesses>
    <Weakness ID="79" Name="Improper Neutralization of Input During Web Page Generation ('Cross-site Scripting')" Abstraction="Base" Status="Stable">
      <Description>The product does not neutralize user-controllable input.</Description>
    </Weakness>
    <Weakness ID="20" Name="Improper Input Validation" Abstraction="Class" Status="Stable"/>
  </Weaknesses>
  <Categories>
    <Category ID="264" Name="Permissions, Privileges, and Access Controls" Status="Obsolete"/>
  </Categories>
</Weakness_Catalog>`

func zipped(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestLoadCatalog(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cwe/cwec.xml", []byte(catalogXML), 0644))
	require.NoError(t, afero.WriteFile(fs, "/cwe/cwec.xml.zip", zipped(t, map[string]string{"cwec_v4.14.xml": catalogXML}), 0644))
	require.NoError(t, afero.WriteFile(fs, "/cwe/corrupt.xml", []byte("<Weakness_Catalog><Weaknesses>"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/cwe/bad.xml.zip", []byte("not a zip"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/cwe/toomanyfiles.xml.zip", zipped(t, map[string]string{"a.xml": catalogXML, "b.xml": catalogXML}), 0644))

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{
			name: "plain xml",
			path: "/cwe/cwec.xml",
		},
		{
			name: "zipped xml",
			path: "/cwe/cwec.xml.zip",
		},
		{
			name:    "sad path, corrupt xml",
			path:    "/cwe/corrupt.xml",
			wantErr: "XML syntax error",
		},
		{
			name:    "sad path, invalid zip file",
			path:    "/cwe/bad.xml.zip",
			wantErr: "not a valid zip file",
		},
		{
			name:    "sad path, too many files in archive",
			path:    "/cwe/toomanyfiles.xml.zip",
			wantErr: "2 files in archive",
		},
		{
			name:    "sad path, missing file",
			path:    "/cwe/missing.xml",
			wantErr: "file read error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cwe.LoadCatalog(fs, tt.path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, cwe.Catalog{
				"CWE-79":  "Improper Neutralization of Input During Web Page Generation ('Cross-site Scripting')",
				"CWE-20":  "Improper Input Validation",
				"CWE-264": "Permissions, Privileges, and Access Controls",
			}, got)
			assert.Equal(t, "Improper Input Validation", got.Name("CWE-20"))
			assert.Empty(t, got.Name("CWE-NVD-noinfo"))
		})
	}
}

func TestDownloadCatalog(t *testing.T) {
	archive := zipped(t, map[string]string{"cwec_v4.14.xml": catalogXML})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cwec_latest.xml.zip" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(archive)
	}))
	defer ts.Close()

	got, err := cwe.DownloadCatalog(context.Background(), ts.URL+"/cwec_latest.xml.zip")
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, "Improper Input Validation", got.Name("CWE-20"))

	_, err = cwe.DownloadCatalog(context.Background(), ts.URL+"/unknown.xml.zip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch cwe catalog")
}
