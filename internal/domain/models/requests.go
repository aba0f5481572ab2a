package models

// Requests for the signals HTTP endpoints. Defined in domain for consistency and reuse.

type ScanRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Force  bool   `query:"force" json:"force" default:"false"`
}

type SignalsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Limit  int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}

type WatchlistRequest struct {
	Symbol string `json:"symbol" validate:"required,min=1,max=12"`
}
