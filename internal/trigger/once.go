package trigger

import (
	"context"
	"fmt"
)

// OnceSource fires exactly once and returns.
type OnceSource struct {
	folder string
}

func NewOnceSource(folder string) *OnceSource {
	return &OnceSource{folder: folder}
}

func (s *OnceSource) Name() string { return "single" }

func (s *OnceSource) Banner() string {
	return fmt.Sprintf("Uploading folder: %s", s.folder)
}

func (s *OnceSource) Run(ctx context.Context, fire FireFunc) error {
	if err := ctx.Err(); err != nil {
		return nil
	}
	fire("single upload")
	return nil
}
