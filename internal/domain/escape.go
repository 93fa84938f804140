package domain

import "strings"

// markdownV2Reserved is the full set of characters Telegram's MarkdownV2
// parse mode treats as markup. Any of them appearing in user-supplied or
// fetched text must be backslash-escaped or the API rejects the message.
const markdownV2Reserved = "_*[]()~`>#+-=|{}.!"

var markdownV2Replacer = buildReplacer()

func buildReplacer() *strings.Replacer {
	pairs := make([]string, 0, len(markdownV2Reserved)*2)
	for _, c := range markdownV2Reserved {
		pairs = append(pairs, string(c), `\`+string(c))
	}
	return strings.NewReplacer(pairs...)
}

// EscapeMarkdownV2 escapes every reserved MarkdownV2 character in text.
// Apply exactly once per string; escaping already-escaped text doubles
// the backslashes.
func EscapeMarkdownV2(text string) string {
	return markdownV2Replacer.Replace(text)
}
