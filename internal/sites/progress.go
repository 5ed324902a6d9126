package sites

import "context"

// ProgressFunc is invoked after each chapter with the number of chapters
// done so far and the total the extraction will produce.
type ProgressFunc func(done, total int)

type progressKey struct{}

// ContextWithProgress attaches a progress callback to the context. The
// extraction loop is sequential, so the callback never runs concurrently.
func ContextWithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

// ReportProgress invokes the context's progress callback, if any.
func ReportProgress(ctx context.Context, done, total int) {
	if fn, ok := ctx.Value(progressKey{}).(ProgressFunc); ok && fn != nil {
		fn(done, total)
	}
}
