package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquasecurity/vuln-list-stats/utils"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CVE-2024-1000.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	ok, err := utils.Exists(path)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = utils.Exists(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLookupEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		want  int
	}{
		{
			name: "unset",
			want: 4,
		},
		{
			name:  "valid",
			value: "16",
			set:   true,
			want:  16,
		},
		{
			name:  "invalid",
			value: "many",
			set:   true,
			want:  4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("VULN_STATS_TEST_WORKERS", tt.value)
			}
			assert.Equal(t, tt.want, utils.LookupEnvInt("VULN_STATS_TEST_WORKERS", 4))
		})
	}
}

func TestLookupEnv(t *testing.T) {
	t.Setenv("VULN_STATS_TEST_DIR", "/data/cves")
	assert.Equal(t, "/data/cves", utils.LookupEnv("VULN_STATS_TEST_DIR", "/tmp"))
	assert.Equal(t, "/tmp", utils.LookupEnv("VULN_STATS_TEST_UNSET", "/tmp"))
}
