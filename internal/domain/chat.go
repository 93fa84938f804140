package domain

import "time"

// Chat represents a chat subscribed to the daily broadcasts.
type Chat struct {
	ChatID    int64     // Telegram chat id, immutable
	Title     string    // best-available display name at registration time
	CreatedAt time.Time // UTC, set once
}

// DisplayName picks the best-available name for a chat:
// title, then username, then first name, then "Unknown".
func DisplayName(title, username, firstName string) string {
	switch {
	case title != "":
		return title
	case username != "":
		return username
	case firstName != "":
		return firstName
	default:
		return "Unknown"
	}
}
