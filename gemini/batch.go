package gemini

import (
	"context"
	"fmt"

	"gemfiles/core"
)

// uploadOutcome is one session's completion, tagged with its input position.
type uploadOutcome struct {
	index int
	file  *core.FileDescriptor
	err   error
}

// UploadFiles uploads every path concurrently and returns the descriptors in
// input order, or the first error observed. Fail-fast: once any session
// fails, the batch stops waiting and sibling results are discarded.
//
// One goroutine is launched per path with no concurrency cap; bounding
// simultaneous uploads is the caller's responsibility. In-flight siblings
// are not cancelled after a failure - they run to completion independently
// and their sends land in the buffered channel, so the resource bound after
// an error is best-effort only.
func (c *Client) UploadFiles(ctx context.Context, paths []string, opts *UploadOptions) ([]*core.FileDescriptor, error) {
	if len(paths) == 0 {
		return []*core.FileDescriptor{}, nil
	}

	results := make([]*core.FileDescriptor, len(paths))
	done := make(chan uploadOutcome, len(paths))

	for i, path := range paths {
		go func(index int, path string) {
			defer func() {
				if r := recover(); r != nil {
					done <- uploadOutcome{
						index: index,
						err:   fmt.Errorf("upload of %q panicked: %v", path, r),
					}
				}
			}()
			fd, err := c.UploadFile(ctx, path, opts)
			done <- uploadOutcome{index: index, file: fd, err: err}
		}(i, path)
	}

	for range paths {
		outcome := <-done
		if outcome.err != nil {
			c.logger.Warn("batch upload failed", "index", outcome.index, "error", outcome.err)
			return nil, outcome.err
		}
		results[outcome.index] = outcome.file
	}
	return results, nil
}
