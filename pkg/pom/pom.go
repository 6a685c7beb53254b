// Package pom reads Maven coordinates from project descriptor files.
package pom

import (
	"encoding/xml"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/net/html/charset"

	"github.com/nexus-tools/nexus-bulk-upload/pkg/types"
)

// Project holds the identity fields of one descriptor, with parent
// inheritance already applied. Any field may be empty.
type Project struct {
	GroupID    string
	ArtifactID string
	Version    string
}

type project struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Parent     parent `xml:"parent"`
}

type parent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// Read parses the descriptor at path. Elements are matched by local name, so
// documents with and without the default POM namespace decode the same way.
// A descriptor that omits groupId or version inherits them from its parent
// element. Malformed documents never fail the run; they yield an empty
// Project.
func Read(path string) Project {
	f, err := os.Open(path)
	if err != nil {
		slog.Warn("Unable to open descriptor", slog.String("path", path), slog.String("error", err.Error()))
		return Project{}
	}
	defer f.Close()

	var prj project
	decoder := xml.NewDecoder(f)
	decoder.CharsetReader = charset.NewReaderLabel
	if err = decoder.Decode(&prj); err != nil {
		slog.Warn("Malformed descriptor", slog.String("path", path), slog.String("error", err.Error()))
		return Project{}
	}

	// A descriptor declaring all fields directly never consults its parent.
	if prj.GroupID == "" {
		prj.GroupID = prj.Parent.GroupID
	}
	if prj.Version == "" {
		prj.Version = prj.Parent.Version
	}

	return Project{
		GroupID:    prj.GroupID,
		ArtifactID: prj.ArtifactID,
		Version:    prj.Version,
	}
}

// FindDescriptor returns the path of a descriptor file among the given
// entries, or an empty string when the set has none.
func FindDescriptor(files []types.FileEntry) string {
	f, ok := lo.Find(files, func(f types.FileEntry) bool {
		return strings.HasSuffix(strings.ToLower(f.Name), ".pom")
	})
	if !ok {
		return ""
	}
	return f.Path
}
