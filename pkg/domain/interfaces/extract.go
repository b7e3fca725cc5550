package interfaces

import (
	"context"

	"github.com/fataldecomp/roller-installer/pkg/domain/model"
)

// Extractor pulls the FATDATA asset tree out of a source container into
// outDir.
type Extractor interface {
	Extract(ctx context.Context, src, outDir string) (*model.ExtractionResult, error)
}

// ToolResolver locates an external tool on the host. ok is false when the
// tool cannot be found; callers treat that as "capability absent", not as
// an error.
type ToolResolver interface {
	Resolve(name string) (path string, ok bool)
}
