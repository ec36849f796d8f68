// =============================================================================
// Order Report Bot - File Manager Utility
// =============================================================================
//
// This module manages the working area: the transient directory that holds
// uploaded artifacts and generated reports while a batch is processed.
//   - Directory management
//   - Collision-safe artifact naming
//   - Persisting uploaded bytes
//   - Report file naming
//   - Cleanup of drained artifacts and delivered reports
//
// NAMING STRATEGY:
//   - Artifacts:  {user-id}_{sanitized-name}   (e.g. 42_order_7.docx)
//   - Reports:    format string with placeholders (default Report_{timestamp}_{user}.xlsx)
//
// Prefixing with the user id means two users never share an artifact path.
// The same user re-uploading the same name overwrites the earlier copy.
//
// =============================================================================

package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations inside the working area.
type FileManager struct {
	// WorkDir is the directory for artifacts and generated reports.
	WorkDir string

	// ReportNameFormat is the format used by ReportPath.
	// See GenerateReportFileName for the placeholders.
	ReportNameFormat string

	// now is replaced in tests.
	now func() time.Time
}

// DefaultReportNameFormat is used when ReportNameFormat is empty.
const DefaultReportNameFormat = "Report_{timestamp}_{user}.xlsx"

// NewFileManager creates a FileManager rooted at workDir.
func NewFileManager(workDir, reportNameFormat string) *FileManager {
	if reportNameFormat == "" {
		reportNameFormat = DefaultReportNameFormat
	}
	return &FileManager{
		WorkDir:          workDir,
		ReportNameFormat: reportNameFormat,
		now:              time.Now,
	}
}

// EnsureDirectories creates the working area if it doesn't exist.
func (fm *FileManager) EnsureDirectories() error {
	if err := os.MkdirAll(fm.WorkDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.WorkDir, err)
	}
	return nil
}

// =============================================================================
// ARTIFACT NAMING AND PERSISTENCE
// =============================================================================

// unsafeChars matches every character outside [A-Za-z0-9._].
var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._]`)

// SanitizeFileName replaces every character outside [A-Za-z0-9._] with "_".
// Multi-byte characters become a single "_" each.
//
// EXAMPLE:
//
//	"أمر 12.docx" -> "____12.docx"
func SanitizeFileName(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

// ArtifactPath returns the working-area path for a user's uploaded file.
//
// PARAMETERS:
//   - user: The user identifier, used as a collision-safe prefix.
//   - fileName: The filename claimed by the upload.
//
// RETURNS:
//   - WorkDir/{user}_{sanitized fileName}
func (fm *FileManager) ArtifactPath(user, fileName string) string {
	return filepath.Join(fm.WorkDir, SanitizeFileName(user)+"_"+SanitizeFileName(fileName))
}

// Persist writes everything from r to path, replacing any existing file.
// The bytes go to a temporary file next to path that is renamed over it, so
// on failure path keeps its previous content (or stays absent).
func (fm *FileManager) Persist(path string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}

// =============================================================================
// REPORT FILE NAMING
// =============================================================================

// ReportPath returns a working-area path for a new report belonging to user.
func (fm *FileManager) ReportPath(user string) string {
	name := GenerateReportFileName(fm.ReportNameFormat, fm.now(), map[string]string{
		"user": SanitizeFileName(user),
	})
	return filepath.Join(fm.WorkDir, name)
}

// GenerateReportFileName expands a report file name format.
//
// PARAMETERS:
//   - format: The format string for the file name.
//     Placeholders:
//     {uuid}      - A random UUID
//     {timestamp} - Timestamp (YYYYMMDD_HHMMSS)
//     {date}      - Date (YYYYMMDD)
//     {time}      - Time (HHMMSS)
//     {<key>}     - Any key from params (e.g. {user})
//   - now: The time used for the time placeholders.
//   - params: A map of placeholder values. Built-in placeholders win over
//     a param of the same name.
//
// RETURNS:
//   - The generated file name, always ending in .xlsx.
//
// EXAMPLE:
//
//	format: "Report_{timestamp}_{user}.xlsx"
//	params: {"user": "42"}
//	output: "Report_20251001_143022_42.xlsx"
func GenerateReportFileName(format string, now time.Time, params map[string]string) string {
	pairs := []string{
		"{timestamp}", now.Format("20060102_150405"),
		"{date}", now.Format("20060102"),
		"{time}", now.Format("150405"),
	}
	if strings.Contains(format, "{uuid}") {
		pairs = append(pairs, "{uuid}", uuid.New().String())
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		pairs = append(pairs, "{"+key+"}", params[key])
	}

	// One pass: a substituted value is never expanded again.
	result := strings.NewReplacer(pairs...).Replace(format)

	if !strings.HasSuffix(strings.ToLower(result), ".xlsx") {
		result += ".xlsx"
	}

	return result
}

// =============================================================================
// CLEANUP
// =============================================================================

// Remove deletes path. A file that is already gone is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// RemoveAll deletes every path and keeps going past failures.
//
// RETURNS:
//   - The number of files that no longer exist afterwards.
//   - The joined removal errors, or nil.
func RemoveAll(paths []string) (int, error) {
	var errs []error
	removed := 0
	for _, path := range paths {
		if err := Remove(path); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
