package hierarchy

import "context"

type Loader interface {
	LoadFile(ctx context.Context, path string) (Document, *Hierarchy, error)
	LoadDir(ctx context.Context, dir string) ([]Document, error)
}
