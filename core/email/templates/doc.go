// Package templates holds the building blocks of OneDesigner emails as
// templ components and renders them to HTML strings.
//
// Components are plain templ.Component values, so they compose with
// generated .templ code and with each other:
//
//	body := templates.Layout("Your login code",
//		templates.Header("Your login code", "Use it within 10 minutes"),
//		templates.OTP(code),
//		templates.TextSecondary("If you did not request this, ignore this email."),
//	)
//	html, err := templates.Render(ctx, body)
//
// The markup lives in components.templ. After editing it, regenerate the
// committed components_templ.go with:
//
//	templ generate ./core/email/templates
//
// Every piece of text passes through templ's HTML escaping. Button links are
// passed as templ.SafeURL values built by templ.URL, which replaces unsafe
// schemes such as javascript: with a harmless placeholder.
package templates
