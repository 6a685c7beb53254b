// Package layout derives Maven coordinates and asset attributes from the
// standard repository directory convention:
//
//	<groupPath>/<artifactId>/<version>/<artifactId>-<version>[-<classifier>].<extension>
package layout

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/xerrors"

	"github.com/nexus-tools/nexus-bulk-upload/pkg/types"
)

var checksumSuffixes = []string{".md5", ".sha1", ".sha256", ".sha512", ".asc"}

// attrRe matches the remainder of a filename after the artifactId-version
// prefix has been stripped.
var attrRe = regexp.MustCompile(`^(?:-([^.]+))?\.(.+)$`)

// IsChecksum reports whether the file is a checksum or signature side
// artifact. The repository service computes these itself and rejects them as
// primary assets.
func IsChecksum(name string) bool {
	name = strings.ToLower(name)
	for _, suffix := range checksumSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// IsSnapshotDir reports whether the directory holds a snapshot component.
func IsSnapshotDir(dir string) bool {
	return strings.HasSuffix(filepath.Base(dir), types.SnapshotSuffix)
}

// CoordinateFromPath parses a file path relative to the scan root into a
// coordinate. The path must be strictly under root and have at least four
// segments: group path, artifactId, version and filename.
func CoordinateFromPath(path, root string) (types.Coordinate, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return types.Coordinate{}, xerrors.Errorf("unable to relativize %s: %w", path, err)
	}
	if rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return types.Coordinate{}, xerrors.Errorf("%s is not under the scan root %s", path, root)
	}

	ss := strings.Split(filepath.ToSlash(rel), "/")
	// There are cases when the path is too shallow (e.g. the file sits in the
	// group or artifact directory).
	if len(ss) < 4 {
		return types.Coordinate{}, xerrors.Errorf("path %s is too shallow for the repository convention", rel)
	}
	groupID := strings.Join(ss[:len(ss)-3], ".")
	artifactID := ss[len(ss)-3]
	version := ss[len(ss)-2]
	filename := ss[len(ss)-1]

	rest, ok := strings.CutPrefix(filename, artifactID+"-")
	if !ok {
		return types.Coordinate{}, xerrors.Errorf("filename %s does not start with %s-", filename, artifactID)
	}
	if rest == "" || rest[0] < '0' || rest[0] > '9' {
		return types.Coordinate{}, xerrors.Errorf("filename %s has no version starting with a digit", filename)
	}
	rest, ok = strings.CutPrefix(rest, version)
	if !ok {
		return types.Coordinate{}, xerrors.Errorf("version in filename %s disagrees with directory version %s", filename, version)
	}
	m := attrRe.FindStringSubmatch(rest)
	if m == nil {
		return types.Coordinate{}, xerrors.Errorf("filename %s does not match the <artifactId>-<version>[-<classifier>].<extension> pattern", filename)
	}

	return types.Coordinate{
		GroupID:    groupID,
		ArtifactID: artifactID,
		Version:    version,
		Classifier: m[1],
		Extension:  m[2],
	}, nil
}

// AssetAttrs derives the classifier and extension of one component member
// from its filename. When the filename does not carry the expected
// artifactId-version prefix, everything after the last dot becomes the
// extension.
func AssetAttrs(filename, artifactID, version string) (classifier, extension string) {
	if rest, ok := strings.CutPrefix(filename, artifactID+"-"+version); ok {
		if m := attrRe.FindStringSubmatch(rest); m != nil {
			return m[1], m[2]
		}
	}
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return "", filename[i+1:]
	}
	return "", ""
}
