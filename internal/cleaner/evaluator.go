package cleaner

import (
	"encoding/hex"
	"sort"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/mattjoyce/s3-maven-cleaner/internal/maven"
)

// Evaluate picks the latest snapshot version of set and derives which keys to
// keep. It has no side effects.
//
// Latest is the version whose snapshot timestamp is lexicographically
// greatest; the first one seen wins ties. Timestamps are fixed-width
// yyyyMMdd.HHmmss strings so this matches chronological order.
func Evaluate(set *ArtifactSet) (*Decision, error) {
	if set.DirectoryMetadata == nil {
		return nil, &IncompleteMetadataError{Coordinate: set.Coordinate, Missing: "directory metadata"}
	}
	if len(set.VersionMetadata) == 0 {
		return nil, &IncompleteMetadataError{Coordinate: set.Coordinate, Missing: "version metadata"}
	}

	dir := set.Directory
	whitelist := map[string]struct{}{
		joinKey(dir, maven.MetadataFilename): {},
	}
	blacklist := map[string]struct{}{}

	latest := set.VersionMetadata[0]
	for _, doc := range set.VersionMetadata[1:] {
		if doc.SnapshotTimestamp() > latest.SnapshotTimestamp() {
			latest = doc
		}
	}

	for _, doc := range set.VersionMetadata {
		if doc != latest {
			blacklist[doc.Version+"/"] = struct{}{}
		}
	}

	whitelist[joinKey(dir, latest.Version, maven.MetadataFilename)] = struct{}{}
	for _, f := range latest.Files() {
		// Entries from an earlier partial deploy carry an older stamp.
		if f.Updated != latest.LastUpdated() {
			continue
		}
		whitelist[joinKey(dir, latest.Version, latest.ArtifactID+"-"+f.Value)] = struct{}{}
	}

	d := &Decision{
		Coordinate:          set.Coordinate,
		Directory:           dir,
		LatestVersion:       latest.Version,
		WhitelistedPrefixes: sortedKeys(whitelist),
		BlacklistedSuffixes: sortedKeys(blacklist),
	}
	d.Fingerprint = fingerprint(d)
	return d, nil
}

// fingerprint hashes the keep/evict sets so two runs over the same metadata
// can be compared from their logs.
func fingerprint(d *Decision) string {
	h := blake3.New()
	_, _ = h.Write([]byte(d.Directory + "\n"))
	_, _ = h.Write([]byte("keep\n" + strings.Join(d.WhitelistedPrefixes, "\n") + "\n"))
	_, _ = h.Write([]byte("evict\n" + strings.Join(d.BlacklistedSuffixes, "\n") + "\n"))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
