package features

// DefaultStopWords is the English stop-word list used by the bag-of-words
// generators when no custom list is supplied.
var DefaultStopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"that": true, "the": true, "to": true, "was": true, "were": true, "will": true,
	"with": true, "this": true, "but": true, "they": true, "have": true,
	"had": true, "what": true, "when": true, "where": true, "who": true, "which": true,
	"why": true, "how": true, "all": true, "any": true, "both": true, "each": true,
	"few": true, "more": true, "most": true, "other": true, "some": true, "such": true,
	"no": true, "nor": true, "not": true, "only": true, "own": true, "same": true,
	"so": true, "than": true, "too": true, "very": true, "can": true, "did": true,
	"do": true, "does": true, "doing": true, "done": true, "down": true, "up": true,
	"we": true, "our": true, "these": true, "those": true, "their": true, "there": true,
	"been": true, "also": true, "into": true, "between": true, "during": true,
}
