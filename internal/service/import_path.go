package service

import (
	"path/filepath"
	"strings"

	"mcq-catalog/internal/config"
)

// PathLayout says which components of a cleaned file path name the division,
// group and subject of the question set stored in that file.
type PathLayout struct {
	DivisionIndex int
	GroupIndex    int
	SubjectIndex  int
	MinComponents int
}

// Classification is the (division, group, subject) triple derived from a path.
type Classification struct {
	Division string
	Group    string
	Subject  string
}

// DefaultPathLayout matches Data/Output/MCQ/<division>/<group>/.../<subject>/.../file.json.
func DefaultPathLayout() PathLayout {
	return PathLayout{DivisionIndex: 3, GroupIndex: 4, SubjectIndex: 6, MinComponents: 7}
}

// NewPathLayout builds a layout from importer configuration.
func NewPathLayout(cfg config.ImporterConfig) PathLayout {
	return PathLayout{
		DivisionIndex: cfg.DivisionIndex,
		GroupIndex:    cfg.GroupIndex,
		SubjectIndex:  cfg.SubjectIndex,
		MinComponents: cfg.MinComponents,
	}
}

// Parse classifies path. ok is false when the path is too short or when the
// division or group position would fall on the file name. The subject
// position is capped at the parent directory of the file, so in
// Data/Output/MCQ/Science/HSC/Physics/set1.json the subject is Physics.
func (l PathLayout) Parse(path string) (c Classification, ok bool) {
	parts := SplitPath(path)
	if len(parts) < l.MinComponents {
		return Classification{}, false
	}

	lastDir := len(parts) - 2
	if l.DivisionIndex > lastDir || l.GroupIndex > lastDir || lastDir < 0 {
		return Classification{}, false
	}

	return Classification{
		Division: parts[l.DivisionIndex],
		Group:    parts[l.GroupIndex],
		Subject:  parts[min(l.SubjectIndex, lastDir)],
	}, true
}

// SplitPath returns the non-empty components of the cleaned path.
func SplitPath(path string) []string {
	cleaned := filepath.ToSlash(filepath.Clean(path))
	raw := strings.Split(cleaned, "/")
	parts := raw[:0]
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
