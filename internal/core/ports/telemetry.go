package ports

import (
	"context"
	"io"

	"go.trai.ch/ucdstore/internal/core/domain"
)

// Telemetry records units of work for progress display.
type Telemetry interface {
	// Record starts a new vertex.
	Record(ctx context.Context, name string, opts ...VertexOption) (context.Context, Vertex)
	// Close flushes the recording session.
	Close() error
}

// Vertex is a single recorded unit of work.
type Vertex interface {
	Stdout() io.Writer
	Stderr() io.Writer
	Log(level domain.LogLevel, msg string)
	Complete(err error)
	Cached()
}

// VertexConfig holds options for a vertex.
type VertexConfig struct {
	// Inputs are names of vertices this one depends on.
	Inputs []string
}

// VertexOption configures a vertex.
type VertexOption func(*VertexConfig)

// WithInputs declares vertex dependencies.
func WithInputs(names ...string) VertexOption {
	return func(c *VertexConfig) {
		c.Inputs = append(c.Inputs, names...)
	}
}

type vertexKey struct{}

// ContextWithVertex returns a copy of ctx carrying v.
func ContextWithVertex(ctx context.Context, v Vertex) context.Context {
	return context.WithValue(ctx, vertexKey{}, v)
}

// VertexFromContext returns the vertex stored in ctx, if any.
func VertexFromContext(ctx context.Context) (Vertex, bool) {
	v, ok := ctx.Value(vertexKey{}).(Vertex)
	return v, ok
}
