package handler

import (
	"github.com/shopspring/decimal"
)

// CreateAccountRequest represents a request to create a new ledger account
type CreateAccountRequest struct {
	Name           string          `json:"name" binding:"required"`
	Currency       string          `json:"currency" binding:"required,len=3"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Currency   string `json:"currency"`
	Balance    string `json:"balance"`
	Unverified bool   `json:"unverified"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// PartyRefDTO represents one side of a transaction: an internal account ID,
// a free-text external party, or neither
type PartyRefDTO struct {
	AccountID string `json:"account_id,omitempty"`
	External  string `json:"external,omitempty"`
}

// TransactionRequest represents a request to create or edit a transaction
type TransactionRequest struct {
	Type             string          `json:"type,omitempty"`
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	Date             string          `json:"date" binding:"required"`
	Category         string          `json:"category,omitempty"`
	Description      string          `json:"description,omitempty"`
	AccountFrom      PartyRefDTO     `json:"account_from"`
	AccountTo        PartyRefDTO     `json:"account_to"`
	PaymentMethod    string          `json:"payment_method,omitempty"`
	PaymentReference string          `json:"payment_reference,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID               string      `json:"id"`
	Type             string      `json:"type"`
	Amount           string      `json:"amount"`
	Date             string      `json:"date"`
	Category         string      `json:"category,omitempty"`
	Description      string      `json:"description,omitempty"`
	AccountFrom      PartyRefDTO `json:"account_from"`
	AccountTo        PartyRefDTO `json:"account_to"`
	PaymentMethod    string      `json:"payment_method,omitempty"`
	PaymentReference string      `json:"payment_reference,omitempty"`
	Status           string      `json:"status"`
	Deleted          bool        `json:"deleted,omitempty"`
	CreatedAt        string      `json:"created_at"`
	CreatedBy        string      `json:"created_by,omitempty"`
	UpdatedAt        string      `json:"updated_at"`
	UpdatedBy        string      `json:"updated_by,omitempty"`
}

// CreatePayableRequest represents a request to create a payable record
type CreatePayableRequest struct {
	Kind      string          `json:"kind" binding:"required,oneof=INVOICE MAINTENANCE_LOG VD_FINANCE"`
	Reference string          `json:"reference,omitempty"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

// AddPaymentRequest represents a request to record a partial payment
type AddPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Date      string          `json:"date" binding:"required"`
	Method    string          `json:"method,omitempty"`
	Reference string          `json:"reference,omitempty"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID        string `json:"id"`
	Amount    string `json:"amount"`
	Date      string `json:"date"`
	Method    string `json:"method,omitempty"`
	Reference string `json:"reference,omitempty"`
}

// PayableResponse represents a payable record in API responses
type PayableResponse struct {
	ID              string            `json:"id"`
	Kind            string            `json:"kind"`
	Reference       string            `json:"reference,omitempty"`
	Amount          string            `json:"amount"`
	PaidAmount      string            `json:"paid_amount"`
	RemainingAmount string            `json:"remaining_amount"`
	PaymentStatus   string            `json:"payment_status"`
	Payments        []PaymentResponse `json:"payments"`
	CreatedAt       string            `json:"created_at"`
	UpdatedAt       string            `json:"updated_at"`
}

// CreatePettyCashRequest represents a request to record a petty cash movement
type CreatePettyCashRequest struct {
	Date        string          `json:"date" binding:"required"`
	Description string          `json:"description,omitempty"`
	AmountIn    decimal.Decimal `json:"amount_in"`
	AmountOut   decimal.Decimal `json:"amount_out"`
}

// PettyCashEntryResponse represents a petty cash entry with its running balance
type PettyCashEntryResponse struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	Description    string `json:"description,omitempty"`
	AmountIn       string `json:"amount_in"`
	AmountOut      string `json:"amount_out"`
	RunningBalance string `json:"running_balance"`
	CreatedAt      string `json:"created_at"`
}

// PettyCashListResponse represents a petty cash ledger page
type PettyCashListResponse struct {
	Entries        []PettyCashEntryResponse `json:"entries"`
	ClosingBalance string                   `json:"closing_balance"`
}

// SplitRecipientDTO represents one recipient in a split request or response
type SplitRecipientDTO struct {
	Name       string          `json:"name" binding:"required"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     string          `json:"amount,omitempty"`
}

// SplitRequest represents a request to create, edit or preview a profit split
type SplitRequest struct {
	WindowStart string              `json:"window_start" binding:"required"`
	WindowEnd   string              `json:"window_end" binding:"required"`
	Recipients  []SplitRecipientDTO `json:"recipients" binding:"required,min=1,dive"`
}

// SplitResponse represents a split record in API responses
type SplitResponse struct {
	ID                   string              `json:"id,omitempty"`
	WindowStart          string              `json:"window_start"`
	WindowEnd            string              `json:"window_end"`
	DistributableBalance string              `json:"distributable_balance,omitempty"`
	Recipients           []SplitRecipientDTO `json:"recipients"`
	TotalSplitAmount     string              `json:"total_split_amount"`
	CreatedAt            string              `json:"created_at,omitempty"`
	UpdatedAt            string              `json:"updated_at,omitempty"`
}

// CostLineDTO represents one itemised cost line
type CostLineDTO struct {
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
	IncludeVAT  bool            `json:"include_vat"`
}

// ChargeDTO represents one add-on charge, either a percentage of the net
// amount or a fixed value
type ChargeDTO struct {
	Description string          `json:"description,omitempty"`
	Mode        string          `json:"mode" binding:"required,oneof=PERCENT FIXED"`
	Value       decimal.Decimal `json:"value"`
}

// CostQuoteRequest represents a request to compute a cost breakdown
type CostQuoteRequest struct {
	Lines            []CostLineDTO   `json:"lines" binding:"dive"`
	LaborHours       decimal.Decimal `json:"labor_hours"`
	LaborRate        decimal.Decimal `json:"labor_rate"`
	LaborIncludesVAT bool            `json:"labor_includes_vat"`
	Charges          []ChargeDTO     `json:"charges,omitempty" binding:"dive"`
}

// ChargeQuote represents one resolved charge in a cost quote response
type ChargeQuote struct {
	Description string `json:"description,omitempty"`
	Mode        string `json:"mode"`
	Amount      string `json:"amount"`
}

// CostQuoteResponse represents a computed cost breakdown
type CostQuoteResponse struct {
	NetAmount   string        `json:"net_amount"`
	VATAmount   string        `json:"vat_amount"`
	TotalAmount string        `json:"total_amount"`
	PartsTotal  string        `json:"parts_total"`
	LaborTotal  string        `json:"labor_total"`
	Charges     []ChargeQuote `json:"charges,omitempty"`
	GrandTotal  string        `json:"grand_total"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

// DateRangeParams represents an optional closed date window on list endpoints
type DateRangeParams struct {
	Start string `form:"start"`
	End   string `form:"end"`
}
