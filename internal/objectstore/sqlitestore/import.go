package sqlitestore

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// ImportDir copies every regular file under root into the store, keyed by
// its slash-separated path relative to root with prefix prepended. It
// returns the number of objects written.
func (s *Store) ImportDir(ctx context.Context, root, prefix string) (int, error) {
	n := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		body, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		if err := s.Put(ctx, path.Join(prefix, filepath.ToSlash(rel)), body); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("import %s: %w", root, err)
	}
	return n, nil
}
