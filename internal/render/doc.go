// Package render draws inkwell documents as styled terminal text.
//
// Each block is written on its own line behind a dim gutter label naming
// its type (h1-h6, >, *, 1., ```). Inline styles resolve through a Theme
// to SGR attributes and colors; configured styles from the [styles] table
// override the built-in theme via ThemeFromConfig.
//
// Output capability is a Profile: ProfileNone emits plain text with "|"
// for the cursor and brackets around a range, Profile256 maps colors to
// the nearest xterm palette entry, and ProfileTrueColor writes 24-bit
// color. DetectProfile honors NO_COLOR and COLORTERM.
//
//	r := render.New(theme, render.DetectProfile(os.Stdout))
//	_ = r.Render(os.Stdout, editor.Document(), editor.Selection())
package render
