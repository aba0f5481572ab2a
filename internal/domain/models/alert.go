package models

import "time"

// FilingAlert is a lightweight new-filing notification from the alert
// stream: which security filed, and when.
type FilingAlert struct {
	Symbol    string
	Timestamp time.Time
}

// NewsArticle is one headline used as context for escalated securities.
type NewsArticle struct {
	Title       string
	Link        string
	Publisher   string
	PublishedAt time.Time
	Summary     string
}
