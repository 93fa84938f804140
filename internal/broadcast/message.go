package broadcast

import (
	"fmt"

	"morningbot/internal/content"
	"morningbot/internal/domain"
)

const unknownAuthor = "Неизвестный автор"

func header(kind Kind) string {
	if kind == KindEvening {
		return `*Доброй ночи\!* 🌙`
	}
	return `*Доброе утро\!* ☀️`
}

// Caption renders the MarkdownV2 photo caption for a broadcast. Fetched
// text is escaped before insertion; the static markup is not.
func Caption(kind Kind, q content.Quote) string {
	return fmt.Sprintf("%s\n\nЦитата дня:\n`%s` _\\(c\\) %s_",
		header(kind),
		domain.EscapeMarkdownV2(q.Text),
		authorOrUnknown(q.Author),
	)
}

// CitationText renders the MarkdownV2 message for a one-off citation.
func CitationText(q content.Quote) string {
	return fmt.Sprintf("*Случайная цитата\\!* 🎲:\n\n>%s\n_\\(c\\) %s_",
		domain.EscapeMarkdownV2(q.Text),
		authorOrUnknown(q.Author),
	)
}

func authorOrUnknown(author string) string {
	if author == "" {
		return unknownAuthor
	}
	return domain.EscapeMarkdownV2(author)
}
