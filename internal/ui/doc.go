// Package ui provides semantic text formatting for asap output.
//
// Each formatter renders one kind of content (commands, paths, URLs, tags,
// status marks). With a color-capable terminal the text is colorized;
// with NO_COLOR set or a dumb terminal, a plain-text decoration is used
// instead so the meaning survives.
//
//	ui.Success.Sprint("✓") + " Deployed to " + ui.URL.Sprint(siteURL)
//	ui.Error.Sprint("✗") + " " + err.Error()
//	ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("asap list")
//
// Without color:
//   - Code: `backticks`
//   - Tag: 'single quotes'
//   - URL: <angle brackets>
//   - Muted: (parentheses)
//   - Others: no decoration
package ui
