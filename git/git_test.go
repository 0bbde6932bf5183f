package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneArgs(t *testing.T) {
	tests := []struct {
		name   string
		branch string
		want   []string
	}{
		{
			name:   "default branch",
			branch: "",
			want:   []string{"clone", "--depth", "1", "https://github.com/CVEProject/cvelistV5.git", "/tmp/cvelist"},
		},
		{
			name:   "explicit branch",
			branch: "main",
			want:   []string{"clone", "--depth", "1", "https://github.com/CVEProject/cvelistV5.git", "/tmp/cvelist", "-b", "main"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cloneArgs("https://github.com/CVEProject/cvelistV5.git", "/tmp/cvelist", tt.branch)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPullArgs(t *testing.T) {
	assert.Equal(t, []string{"pull", "--depth", "1", "origin"}, pullArgs(""))
	assert.Equal(t, []string{"pull", "--depth", "1", "origin", "main"}, pullArgs("main"))
}

func TestGenerateGitArgs(t *testing.T) {
	assert.Equal(t, []string{"--git-dir", "/tmp/cvelist/.git", "--work-tree", "/tmp/cvelist"}, generateGitArgs("/tmp/cvelist"))
}

func TestCountRecords(t *testing.T) {
	got := countRecords(splitLines("cves/2024/1xxx/CVE-2024-1000.json\n\ncves/delta.json\nREADME.md\n"))
	assert.Equal(t, 2, got)
	assert.Zero(t, countRecords(nil))
}
