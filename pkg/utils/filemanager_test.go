package utils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"order_12.docx", "order_12.docx"},
		{"order 12.docx", "order_12.docx"},
		{"a/b\\c.docx", "a_b_c.docx"},
		{"../../etc/passwd", ".._.._etc_passwd"},
		{"أمر 12.docx", "____12.docx"},
		{"Order-No(5).DOCX", "Order_No_5_.DOCX"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFileName(tt.in))
		})
	}
}

func TestFileManager_ArtifactPath(t *testing.T) {
	fm := NewFileManager("work", "")
	assert.Equal(t, filepath.Join("work", "42_order_1.docx"), fm.ArtifactPath("42", "order 1.docx"))
	assert.NotEqual(t, fm.ArtifactPath("42", "a.docx"), fm.ArtifactPath("43", "a.docx"))
}

func TestFileManager_PersistOverwrites(t *testing.T) {
	fm := NewFileManager(t.TempDir(), "")
	require.NoError(t, fm.EnsureDirectories())

	path := fm.ArtifactPath("42", "a.docx")
	require.NoError(t, fm.Persist(path, strings.NewReader("first version")))
	require.NoError(t, fm.Persist(path, strings.NewReader("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestFileManager_PersistFailureLeavesNoFile(t *testing.T) {
	fm := NewFileManager(t.TempDir(), "")
	path := fm.ArtifactPath("42", "a.docx")

	err := fm.Persist(path, failingReader{})
	require.Error(t, err)
	assert.False(t, FileExists(path))
}

func TestFileManager_FailedReuploadKeepsPreviousFile(t *testing.T) {
	fm := NewFileManager(t.TempDir(), "")
	path := fm.ArtifactPath("42", "a.docx")
	require.NoError(t, fm.Persist(path, strings.NewReader("received")))

	err := fm.Persist(path, io.MultiReader(strings.NewReader("partial"), failingReader{}))
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "received", string(data))

	entries, err := os.ReadDir(fm.WorkDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestFileManager_ReportPath(t *testing.T) {
	fm := NewFileManager("work", "")
	fm.now = func() time.Time { return time.Date(2025, 10, 1, 14, 30, 22, 0, time.UTC) }

	assert.Equal(t, filepath.Join("work", "Report_20251001_143022_42.xlsx"), fm.ReportPath("42"))
}

func TestGenerateReportFileName(t *testing.T) {
	now := time.Date(2025, 10, 1, 9, 5, 0, 0, time.UTC)

	assert.Equal(t, "monthly_20251001.xlsx", GenerateReportFileName("monthly_{date}", now, nil))
	assert.Equal(t, "r_090500_7.xlsx", GenerateReportFileName("r_{time}_{user}.xlsx", now, map[string]string{"user": "7"}))

	// Values are inserted verbatim, never expanded again.
	for i := 0; i < 20; i++ {
		got := GenerateReportFileName("{user}_{date}.xlsx", now, map[string]string{
			"user": "{date}",
			"dept": "{user}",
		})
		assert.Equal(t, "{date}_20251001.xlsx", got)
	}

	withID := GenerateReportFileName("Report_{uuid}.xlsx", now, nil)
	assert.Regexp(t, regexp.MustCompile(`^Report_[0-9a-f-]{36}\.xlsx$`), withID)
}

func TestRemoveAll(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, []byte("x"), 0644))

	removed, err := RemoveAll([]string{a, b, a})
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.False(t, FileExists(a))
}
