package adapter

import "context"

// ContentExtractor pulls readable text out of a web page. Implementations
// may fail (network, robots, unreadable page); callers decide what a
// failure means for the job.
type ContentExtractor interface {
	Extract(ctx context.Context, url string) (string, error)
}
