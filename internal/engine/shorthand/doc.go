// Package shorthand implements the post-edit formatter that turns typed
// line prefixes into formatting.
//
// A Formatter holds an ordered table of rules. Each rule pairs a literal
// prefix with either an inline style or a block type:
//
//	"*** "  UNDERLINE over the rest of the block
//	"** "   redLine over the rest of the block
//	"* "    BOLD over the rest of the block
//	"# "    header-one block type
//
// Format inspects only the block holding the selection focus. When the
// block text starts with a rule's prefix and is longer than it, the
// prefix is deleted and the rule's effect applied; the first matching
// rule wins. Rules are tried longest prefix first, so "*** " is always
// recognized before "** " and "* ".
//
// The formatter runs once per edit. It never reexamines its own output,
// which keeps formatting terminating even when the result would itself
// look like another trigger.
//
// No match is a normal outcome: Result.Changed is false and the input
// document and selection are returned unchanged.
package shorthand
