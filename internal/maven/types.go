package maven

// MetadataFilename is the name of the metadata document Maven writes at the
// artifact level and inside every snapshot version directory.
const MetadataFilename = "maven-metadata.xml"

// Coordinate identifies an artifact as groupId:artifactId.
type Coordinate string

// NewCoordinate joins a group and artifact id.
func NewCoordinate(groupID, artifactID string) Coordinate {
	return Coordinate(groupID + ":" + artifactID)
}

func (c Coordinate) String() string { return string(c) }

// Document is a parsed maven-metadata.xml.
//
// A document without Version describes the artifact directory; a document
// with Version describes one published snapshot version.
type Document struct {
	Key        string     `xml:"-"`
	GroupID    string     `xml:"groupId"`
	ArtifactID string     `xml:"artifactId"`
	Version    string     `xml:"version"`
	Versioning Versioning `xml:"versioning"`
}

// Versioning mirrors the <versioning> element.
type Versioning struct {
	Latest           string         `xml:"latest"`
	Release          string         `xml:"release"`
	Snapshot         Snapshot       `xml:"snapshot"`
	Versions         []string       `xml:"versions>version"`
	LastUpdated      string         `xml:"lastUpdated"`
	SnapshotVersions []SnapshotFile `xml:"snapshotVersions>snapshotVersion"`
}

// Snapshot mirrors <snapshot>: the timestamp and build number of the most
// recent deploy of a snapshot version.
type Snapshot struct {
	Timestamp   string `xml:"timestamp"`
	BuildNumber int    `xml:"buildNumber"`
	LocalCopy   bool   `xml:"localCopy"`
}

// SnapshotFile is one <snapshotVersion> entry: a concrete file published
// under a snapshot version.
type SnapshotFile struct {
	Classifier string `xml:"classifier"`
	Extension  string `xml:"extension"`
	Value      string `xml:"value"`
	Updated    string `xml:"updated"`
}

// Coordinate returns the document's artifact coordinate.
func (d *Document) Coordinate() Coordinate {
	return NewCoordinate(d.GroupID, d.ArtifactID)
}

// IsVersionLevel reports whether the document describes a single version.
func (d *Document) IsVersionLevel() bool {
	return d.Version != ""
}

// SnapshotTimestamp is the timestamp of the last deploy of this version.
func (d *Document) SnapshotTimestamp() string {
	return d.Versioning.Snapshot.Timestamp
}

// LastUpdated is the document's own lastUpdated stamp (yyyyMMddHHmmss).
func (d *Document) LastUpdated() string {
	return d.Versioning.LastUpdated
}

// Files returns the snapshot file entries in document order.
func (d *Document) Files() []SnapshotFile {
	return d.Versioning.SnapshotVersions
}
