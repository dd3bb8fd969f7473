package models

// Requests for the on-demand HTTP endpoints.

type SymbolRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,max=12"`
}

type CryptoRequest struct {
	Currency string `query:"currency" json:"currency" validate:"omitempty,lowercase,alpha,max=5"`
	Coins    string `query:"coins" json:"coins"` // comma separated, defaults to the watch-list
}
