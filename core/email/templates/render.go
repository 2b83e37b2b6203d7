package templates

import (
	"context"
	"strings"

	"github.com/a-h/templ"
)

// Render renders c into a string.
func Render(ctx context.Context, c templ.Component) (string, error) {
	if c == nil {
		return "", nil
	}
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
