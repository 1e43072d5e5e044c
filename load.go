package spots

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
)

// Document is one decoded declarative file.
type Document struct {
	Path       string
	Components []Component
	Warnings   Warnings
}

// LoadFile reads and decodes one file, picking the format from its
// extension.
func LoadFile(path string) (Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("load %s: %w", path, err)
	}
	cs, ws, err := Decode(data, format)
	if err != nil {
		return Document{}, fmt.Errorf("load %s: %w", path, err)
	}
	return Document{Path: path, Components: cs, Warnings: ws}, nil
}

// LoadFiles decodes files concurrently. Results keep argument order. The
// first error cancels the remaining loads.
func LoadFiles(ctx context.Context, paths ...string) ([]Document, error) {
	docs := make([]Document, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := LoadFile(p)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Merge concatenates the components of every document, reindexing them.
func Merge(docs []Document) ([]Component, Warnings) {
	var cs []Component
	var ws Warnings
	for _, doc := range docs {
		for _, c := range doc.Components {
			c.Index = len(cs)
			cs = append(cs, c)
		}
		for _, w := range doc.Warnings {
			w.Path = doc.Path + ":" + w.Path
			ws = append(ws, w)
		}
	}
	return cs, ws
}
