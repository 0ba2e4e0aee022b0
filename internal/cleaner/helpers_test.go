package cleaner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/mattjoyce/s3-maven-cleaner/internal/objectstore"
)

// memStore is an in-memory objectstore.Store that records delete batches.
type memStore struct {
	objects map[string][]byte
	batches [][]string
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) put(key, body string) {
	m.objects[key] = []byte(body)
}

func (m *memStore) keys() []string {
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m *memStore) List(_ context.Context, in objectstore.ListInput) (*objectstore.ListPage, error) {
	var matched []string
	for _, k := range m.keys() {
		if strings.HasPrefix(k, in.Prefix) && k > in.ContinuationToken {
			matched = append(matched, k)
		}
	}
	page := &objectstore.ListPage{}
	if in.MaxKeys > 0 && len(matched) > in.MaxKeys {
		matched = matched[:in.MaxKeys]
		page.Truncated = true
		page.NextContinuationToken = matched[len(matched)-1]
	}
	for _, k := range matched {
		page.Objects = append(page.Objects, objectstore.Object{Key: k, Size: int64(len(m.objects[k]))})
	}
	return page, nil
}

func (m *memStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	body, ok := m.objects[key]
	if !ok {
		return nil, &objectstore.TransportError{Op: "get", Key: key, Err: fmt.Errorf("no such key")}
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

func (m *memStore) DeleteObjects(_ context.Context, keys []string) (*objectstore.DeleteResult, error) {
	m.batches = append(m.batches, append([]string(nil), keys...))
	res := &objectstore.DeleteResult{}
	for _, k := range keys {
		delete(m.objects, k)
		res.Deleted = append(res.Deleted, k)
	}
	return res, nil
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func directoryMetadata(group, artifact string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<metadata>
  <groupId>%s</groupId>
  <artifactId>%s</artifactId>
  <versioning>
    <lastUpdated>20230102020202</lastUpdated>
  </versioning>
</metadata>`, group, artifact)
}

type snapshotEntry struct {
	classifier string
	extension  string
	value      string
	updated    string
}

func versionMetadata(group, artifact, version, timestamp, lastUpdated string, entries ...snapshotEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<metadata modelVersion="1.1.0">
  <groupId>%s</groupId>
  <artifactId>%s</artifactId>
  <version>%s</version>
  <versioning>
    <snapshot><timestamp>%s</timestamp><buildNumber>1</buildNumber></snapshot>
    <lastUpdated>%s</lastUpdated>
    <snapshotVersions>
`, group, artifact, version, timestamp, lastUpdated)
	for _, e := range entries {
		b.WriteString("      <snapshotVersion>")
		if e.classifier != "" {
			fmt.Fprintf(&b, "<classifier>%s</classifier>", e.classifier)
		}
		fmt.Fprintf(&b, "<extension>%s</extension><value>%s</value><updated>%s</updated></snapshotVersion>\n", e.extension, e.value, e.updated)
	}
	b.WriteString("    </snapshotVersions>\n  </versioning>\n</metadata>")
	return b.String()
}

// seedScenario builds the two-version bucket: 1.0-SNAPSHOT is stale,
// 2.0-SNAPSHOT is current with one leftover file from an older deploy.
func seedScenario(m *memStore) {
	dir := "snapshot/g/a"
	m.put(dir+"/", "")
	m.put(dir+"/maven-metadata.xml", directoryMetadata("g", "a"))
	m.put(dir+"/maven-metadata.xml.sha1", "x")

	m.put(dir+"/1.0-SNAPSHOT/", "")
	m.put(dir+"/1.0-SNAPSHOT/maven-metadata.xml", versionMetadata("g", "a", "1.0-SNAPSHOT", "1", "100",
		snapshotEntry{extension: "jar", value: "1.0-1-1", updated: "100"},
	))
	m.put(dir+"/1.0-SNAPSHOT/a-1.0-1-1.jar", "jar")
	m.put(dir+"/1.0-SNAPSHOT/a-1.0-1-1.pom", "pom")

	m.put(dir+"/2.0-SNAPSHOT/", "")
	m.put(dir+"/2.0-SNAPSHOT/maven-metadata.xml", versionMetadata("g", "a", "2.0-SNAPSHOT", "2", "200",
		snapshotEntry{extension: "jar", value: "2.0-2-2", updated: "200"},
		snapshotEntry{classifier: "sources", extension: "jar", value: "2.0-2-2", updated: "200"},
		snapshotEntry{extension: "jar", value: "2.0-1-1", updated: "150"},
	))
	m.put(dir+"/2.0-SNAPSHOT/maven-metadata.xml.md5", "x")
	m.put(dir+"/2.0-SNAPSHOT/a-2.0-2-2.jar", "jar")
	m.put(dir+"/2.0-SNAPSHOT/a-2.0-2-2.jar.sha1", "x")
	m.put(dir+"/2.0-SNAPSHOT/a-2.0-2-2-sources.jar", "src")
	m.put(dir+"/2.0-SNAPSHOT/a-2.0-1-1.jar", "old")
}
