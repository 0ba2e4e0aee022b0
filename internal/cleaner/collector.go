package cleaner

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/mattjoyce/s3-maven-cleaner/internal/maven"
	"github.com/mattjoyce/s3-maven-cleaner/internal/objectstore"
)

// Collection is the result of a metadata scan.
type Collection struct {
	Catalog Catalog
	Scanned int
}

// Collector discovers and groups every maven-metadata.xml under a prefix.
type Collector struct {
	store    objectstore.Store
	prefix   string
	pageSize int
	logger   *slog.Logger
}

// NewCollector creates a Collector.
func NewCollector(store objectstore.Store, prefix string, pageSize int, logger *slog.Logger) *Collector {
	return &Collector{
		store:    store,
		prefix:   prefix,
		pageSize: pageSize,
		logger:   logger.With("component", "collector"),
	}
}

// Collect lists the whole prefix and parses every metadata document found.
// Any unreadable or malformed document aborts the scan.
func (c *Collector) Collect(ctx context.Context) (*Collection, error) {
	out := &Collection{Catalog: make(Catalog)}

	err := objectstore.Walk(ctx, c.store, c.prefix, c.pageSize, func(page *objectstore.ListPage) error {
		for _, obj := range page.Objects {
			if path.Base(obj.Key) != maven.MetadataFilename || strings.HasSuffix(obj.Key, "/") {
				continue
			}
			doc, err := c.fetch(ctx, obj.Key)
			if err != nil {
				return err
			}
			c.add(out.Catalog, doc)
		}
		out.Scanned += len(page.Objects)
		c.logger.Info("checked files", "count", out.Scanned)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Collector) fetch(ctx context.Context, key string) (*maven.Document, error) {
	body, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := maven.ParseKey(key, body)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	return doc, nil
}

func (c *Collector) add(catalog Catalog, doc *maven.Document) {
	set := catalog.lookup(doc.Coordinate())
	if doc.IsVersionLevel() {
		set.VersionMetadata = append(set.VersionMetadata, doc)
		return
	}

	dir := metadataDirectory(doc.Key)
	if set.DirectoryMetadata != nil {
		c.logger.Warn("duplicate directory metadata, keeping the later one",
			"artifact", set.Coordinate,
			"previous", set.DirectoryMetadata.Key,
			"key", doc.Key,
		)
	}
	set.Directory = dir
	set.DirectoryMetadata = doc
}

// metadataDirectory strips the trailing "/maven-metadata.xml" from key.
func metadataDirectory(key string) string {
	i := strings.LastIndex(key, "/")
	if i < 0 {
		return ""
	}
	return key[:i]
}
