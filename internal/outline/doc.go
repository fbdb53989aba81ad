// Package outline tokenizes the table-of-contents outline notation.
//
// The notation is line oriented. A heading line is one or more depth markers,
// whitespace, then text:
//
//	# Part One
//	## Chapter 1 || Jane Austen; [Translator Name]
//	## Interlude /
//
// The marker count is the nesting depth. Text after the first " || " lists
// contributors. A trailing lone "/" marks a section heading, which carries
// structure only and no contributors. Any other non-blank line is skipped.
package outline
