package cleaner

import (
	"sort"
	"strings"

	"github.com/mattjoyce/s3-maven-cleaner/internal/maven"
)

// ArtifactSet gathers every metadata document found for one coordinate.
type ArtifactSet struct {
	Coordinate maven.Coordinate
	// Directory is the parent path of the directory-level document.
	Directory         string
	DirectoryMetadata *maven.Document
	// VersionMetadata holds one document per published snapshot version, in
	// listing order.
	VersionMetadata []*maven.Document
}

// Catalog maps each discovered coordinate to its metadata.
type Catalog map[maven.Coordinate]*ArtifactSet

// Coordinates returns the catalog keys in sorted order.
func (c Catalog) Coordinates() []maven.Coordinate {
	out := make([]maven.Coordinate, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// lookup returns the set for coord, creating it on first sight.
func (c Catalog) lookup(coord maven.Coordinate) *ArtifactSet {
	set, ok := c[coord]
	if !ok {
		set = &ArtifactSet{Coordinate: coord}
		c[coord] = set
	}
	return set
}

// nestedDirectories returns the directories of other artifacts that live
// below dir, each with a trailing slash. Artifacts known only from version
// documents count too.
func (c Catalog) nestedDirectories(coord maven.Coordinate, dir string) []string {
	seen := map[string]struct{}{}
	for other, set := range c {
		if other == coord {
			continue
		}
		for _, d := range set.directories() {
			if d != "" && d != dir && strings.HasPrefix(d, childPrefix(dir)) {
				seen[childPrefix(d)] = struct{}{}
			}
		}
	}
	return sortedKeys(seen)
}

// directories returns every artifact directory the set's documents point at.
// A version document sits one level below its artifact directory.
func (s *ArtifactSet) directories() []string {
	var out []string
	if s.DirectoryMetadata != nil {
		out = append(out, s.Directory)
	}
	for _, doc := range s.VersionMetadata {
		out = append(out, metadataDirectory(metadataDirectory(doc.Key)))
	}
	return out
}

// Decision is what to keep and what to force-remove for one artifact.
type Decision struct {
	Coordinate    maven.Coordinate
	Directory     string
	LatestVersion string
	// WhitelistedPrefixes keep any regular file key they prefix.
	WhitelistedPrefixes []string
	// BlacklistedSuffixes evict directory markers ending in them.
	BlacklistedSuffixes []string
	// ProtectedPrefixes belong to other artifacts nested under Directory and
	// are never touched.
	ProtectedPrefixes []string
	Fingerprint       string
}

// joinKey joins key segments with "/", skipping an empty leading directory.
func joinKey(dir string, parts ...string) string {
	key := strings.Join(parts, "/")
	if dir == "" {
		return key
	}
	return dir + "/" + key
}

// childPrefix is the listing prefix for the contents of dir.
func childPrefix(dir string) string {
	if dir == "" {
		return ""
	}
	return dir + "/"
}
