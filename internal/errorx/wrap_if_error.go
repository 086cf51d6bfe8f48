package errorx

import (
	"fmt"
)

// WrapIfError wraps the error pointed to by err with the formatted message if
// it is not nil. This is intended to be used inside a defer to wrap the
// returned error:
//
//	func (c *DefaultClient) DeletePost(ctx context.Context, id int) (err error) {
//		defer errorx.WrapIfError(&err, "delete post %d", id)
//		...
//	}
func WrapIfError(err *error, format string, args ...any) {
	if *err != nil {
		*err = fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), *err)
	}
}
