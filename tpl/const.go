package tpl

// Template syntax.
const (
	BifOpen         = "{:"
	BifClose        = ":}"
	BifName         = ";"
	BifCode         = ">>"
	BifArray        = "->"
	BifCommentOpen  = "{:*"
	BifCommentClose = "*:}"

	BifModFilter = '&'
	BifModNegate = '!'
	BifModUpline = '^'
	BifModScope  = '+'

	// BifSanitizeOpen and BifSanitizeClose replace delimiters in text that
	// must never be evaluated.
	BifSanitizeOpen  = "&#123;:"
	BifSanitizeClose = ":&#125;"

	// Unprintable marks an intentionally empty output. It is removed during
	// post-processing.
	Unprintable = "&#0;"

	// Backspace prefixes the output of upline blocks. It is removed during
	// post-processing together with any whitespace before it.
	Backspace = "&#9224"

	// LocalPrefix selects scope-local data in var and each.
	LocalPrefix = "local::"

	// SnippetFileMarker must appear in the path of a file that sets
	// snippets or declarations.
	SnippetFileMarker = "snippet"

	allowMarker       = "{:allow;"
	allowNegateMarker = "{:!allow;"
	evalBinding       = "__eval__"
)

// Schema regions.
const (
	keyConfig  = "config"
	keyData    = "data"
	keyInherit = "inherit"
	keyIndir   = "__indir"
	keyMoveTo  = "__moveto"
	keyError   = "__error"

	keyLocale   = "locale"
	keyTrans    = "trans"
	keySnippets = "snippets"
	keyDeclare  = "declare"
	keyParams   = "params"
)
