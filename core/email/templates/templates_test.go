package templates_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onedesigner/onedesigner/core/email/templates"
)

func TestRender(t *testing.T) {
	t.Parallel()

	html, err := templates.Render(context.Background(), templates.Layout("Your code",
		templates.Header("Your login code", "Valid for 10 minutes"),
		templates.OTP("123456"),
		templates.Text("Hello <Ana>"),
		templates.KeyValue([2]string{"Project", "Logo & brand"}, [2]string{"Budget", "$2k"}),
		templates.PrimaryButton("Open dashboard", "https://onedesigner.app/client/dashboard"),
		templates.TextSecondary("Ignore this email if you did not ask for it."),
		nil,
		templates.Footer("OneDesigner"),
	))
	require.NoError(t, err)

	assert.Contains(t, html, "<!doctype html>")
	assert.Contains(t, html, "<title>Your code</title>")
	assert.Contains(t, html, "123456")
	assert.Contains(t, html, "Hello &lt;Ana&gt;")
	assert.Contains(t, html, "Logo &amp; brand")
	assert.Contains(t, html, `href="https://onedesigner.app/client/dashboard"`)
	assert.Contains(t, html, "Valid for 10 minutes")
	assert.NotContains(t, html, "<Ana>")
}

func TestPrimaryButtonRejectsScriptURLs(t *testing.T) {
	t.Parallel()

	html, err := templates.Render(context.Background(), templates.PrimaryButton("x", "javascript:alert(1)"))
	require.NoError(t, err)
	assert.NotContains(t, html, "javascript:")
}

func TestHeaderWithoutSubtitle(t *testing.T) {
	t.Parallel()

	html, err := templates.Render(context.Background(), templates.Header("Hi", ""))
	require.NoError(t, err)
	assert.NotContains(t, html, "<p")
}

func TestRenderPropagatesErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	broken := templ.ComponentFunc(func(context.Context, io.Writer) error { return boom })

	_, err := templates.Render(context.Background(), templates.Layout("x", broken))
	assert.ErrorIs(t, err, boom)

	html, err := templates.Render(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, html)
}

func TestPrimaryButtonKeepsHTTPSLinks(t *testing.T) {
	t.Parallel()

	html, err := templates.Render(context.Background(), templates.PrimaryButton("Open", "https://onedesigner.app/a?b=1&c=2"))
	require.NoError(t, err)
	assert.Contains(t, html, `href="https://onedesigner.app/a?b=1&amp;c=2"`)
	assert.Contains(t, html, ">Open</a>")
}
