package types

import "strings"

// Format is the repository format string reported by the repository service.
type Format string

const FormatMaven2 Format = "maven2"

// Maven reports whether uploads must be grouped into components.
func (f Format) Maven() bool { return f == FormatMaven2 }

// Coordinate identifies a Maven component or one of its assets.
type Coordinate struct {
	GroupID    string
	ArtifactID string
	Version    string
	Classifier string
	Extension  string
}

// Complete reports whether all three identity fields are present.
func (c Coordinate) Complete() bool {
	return c.GroupID != "" && c.ArtifactID != "" && c.Version != ""
}

// Snapshot reports whether the version is a pre-release version.
func (c Coordinate) Snapshot() bool {
	return strings.HasSuffix(c.Version, SnapshotSuffix)
}

// SnapshotSuffix marks pre-release versions, which the components endpoint
// does not accept.
const SnapshotSuffix = "-SNAPSHOT"

// FileClass is the classification of one scanned file.
type FileClass int

const (
	ClassAsset FileClass = iota
	ClassSignature
	ClassSnapshotMember
)

// FileEntry is one regular file found under the scan root.
type FileEntry struct {
	Path string // absolute path
	Dir  string // parent directory
	Name string // base name
}

// Group is one directory's candidate files. For the maven2 format a group
// becomes a single component upload; for other formats each group holds
// exactly one file.
type Group struct {
	Dir   string
	Files []FileEntry
}

// Asset is one file body within an upload unit.
type Asset struct {
	Path       string
	Classifier string
	Extension  string
}

// UploadUnit is the atomic scheduling and outcome-reporting grain: one maven2
// component or one generic file. Asset order is stable and drives the
// 1-indexed multipart field names.
type UploadUnit struct {
	Coordinate Coordinate // zero value for generic units
	Assets     []Asset
}

// Status is the terminal state of one upload unit.
type Status int

const (
	Succeeded Status = iota
	Failed
	Skipped
)

func (s Status) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	}
	return "unknown"
}

// Category is an operator-facing diagnostic tag. It never drives control flow.
type Category string

const (
	CategoryNone                Category = ""
	CategoryPolicyMismatch      Category = "policy-mismatch"
	CategoryReadOnly            Category = "read-only-repository"
	CategoryDuplicateHashPath   Category = "duplicate-hash-path"
	CategoryService             Category = "service-rejection"
	CategoryNetwork             Category = "network"
	CategorySnapshot            Category = "snapshot"
	CategoryDuplicateCoordinate Category = "duplicate-coordinate"
	CategoryIncomplete          Category = "incomplete-coordinate"
	CategoryPathStructure       Category = "path-structure"
)

// Outcome is recorded exactly once per upload unit.
type Outcome struct {
	Status   Status
	Category Category
	Message  string
}
