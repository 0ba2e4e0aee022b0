package maven

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseError reports a metadata document that is not well-formed.
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("parse maven metadata: %v", e.Err)
	}
	return fmt.Sprintf("parse maven metadata %s: %v", e.Key, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var errEmptyDocument = errors.New("empty document")

// Parse decodes a maven-metadata.xml stream.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	// Maven itself writes UTF-8, but older deployers declare ISO-8859-1;
	// ASCII content decodes identically under both.
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		switch strings.ToLower(charset) {
		case "utf-8", "us-ascii", "iso-8859-1", "latin1":
			return input, nil
		}
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}

	var doc struct {
		XMLName xml.Name
		Document
	}
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			err = errEmptyDocument
		}
		return nil, &ParseError{Err: err}
	}
	if doc.XMLName.Local != "metadata" {
		return nil, &ParseError{Err: fmt.Errorf("unexpected root element <%s>", doc.XMLName.Local)}
	}

	out := doc.Document
	out.GroupID = strings.TrimSpace(out.GroupID)
	out.ArtifactID = strings.TrimSpace(out.ArtifactID)
	out.Version = strings.TrimSpace(out.Version)
	out.Versioning.LastUpdated = strings.TrimSpace(out.Versioning.LastUpdated)
	out.Versioning.Snapshot.Timestamp = strings.TrimSpace(out.Versioning.Snapshot.Timestamp)
	for i := range out.Versioning.SnapshotVersions {
		f := &out.Versioning.SnapshotVersions[i]
		f.Value = strings.TrimSpace(f.Value)
		f.Updated = strings.TrimSpace(f.Updated)
	}
	return &out, nil
}

// ParseKey decodes a document and records the storage key it came from.
func ParseKey(key string, r io.Reader) (*Document, error) {
	doc, err := Parse(r)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Key = key
		}
		return nil, err
	}
	doc.Key = key
	return doc, nil
}
