package mongo

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taxiops-finance-core/internal/domain/ledgerbook"
	"github.com/taxiops-finance-core/internal/domain/payable"
	"github.com/taxiops-finance-core/internal/domain/shared"
	"github.com/taxiops-finance-core/internal/domain/split"
)

// Decimal amounts are stored as strings: BSON has no lossless mapping for
// arbitrary-precision decimals, and round-tripping through float64 would
// reintroduce exactly the rounding noise the core exists to avoid.

func decodeDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid stored decimal %q: %w", s, err)
	}
	return d, nil
}

type actorDoc struct {
	ID   string `bson:"id"`
	Name string `bson:"name"`
}

func toActorDoc(a shared.Actor) actorDoc  { return actorDoc{ID: a.ID, Name: a.Name} }
func (d actorDoc) toDomain() shared.Actor { return shared.Actor{ID: d.ID, Name: d.Name} }

type paymentDoc struct {
	ID        uuid.UUID `bson:"id"`
	Amount    string    `bson:"amount"`
	Date      time.Time `bson:"date"`
	Method    string    `bson:"method,omitempty"`
	Reference string    `bson:"reference,omitempty"`
}

type payableDoc struct {
	ID              uuid.UUID    `bson:"_id"`
	Kind            payable.Kind `bson:"kind"`
	Reference       string       `bson:"reference,omitempty"`
	Amount          string       `bson:"amount"`
	PaidAmount      string       `bson:"paid_amount"`
	RemainingAmount string       `bson:"remaining_amount"`
	PaymentStatus   string       `bson:"payment_status"`
	Payments        []paymentDoc `bson:"payments"`
	CreatedAt       time.Time    `bson:"created_at"`
	CreatedBy       actorDoc     `bson:"created_by"`
	UpdatedAt       time.Time    `bson:"updated_at"`
	UpdatedBy       actorDoc     `bson:"updated_by"`
}

func toPayableDoc(rec *payable.Record) payableDoc {
	payments := make([]paymentDoc, len(rec.Payments))
	for i, p := range rec.Payments {
		payments[i] = paymentDoc{
			ID:        p.ID,
			Amount:    p.Amount.String(),
			Date:      p.Date,
			Method:    p.Method,
			Reference: p.Reference,
		}
	}
	return payableDoc{
		ID:              rec.ID,
		Kind:            rec.Kind,
		Reference:       rec.Reference,
		Amount:          rec.Amount.String(),
		PaidAmount:      rec.PaidAmount.String(),
		RemainingAmount: rec.RemainingAmount.String(),
		PaymentStatus:   string(rec.PaymentStatus),
		Payments:        payments,
		CreatedAt:       rec.CreatedAt,
		CreatedBy:       toActorDoc(rec.CreatedBy),
		UpdatedAt:       rec.UpdatedAt,
		UpdatedBy:       toActorDoc(rec.UpdatedBy),
	}
}

func (d payableDoc) toDomain() (*payable.Record, error) {
	amount, err := decodeDecimal(d.Amount)
	if err != nil {
		return nil, err
	}
	paid, err := decodeDecimal(d.PaidAmount)
	if err != nil {
		return nil, err
	}
	remaining, err := decodeDecimal(d.RemainingAmount)
	if err != nil {
		return nil, err
	}

	payments := make([]payable.Payment, len(d.Payments))
	for i, p := range d.Payments {
		amt, err := decodeDecimal(p.Amount)
		if err != nil {
			return nil, err
		}
		payments[i] = payable.Payment{
			ID:        p.ID,
			Amount:    amt,
			Date:      p.Date,
			Method:    p.Method,
			Reference: p.Reference,
		}
	}

	return &payable.Record{
		ID:              d.ID,
		Kind:            d.Kind,
		Reference:       d.Reference,
		Amount:          amount,
		PaidAmount:      paid,
		RemainingAmount: remaining,
		PaymentStatus:   shared.PaymentStatus(d.PaymentStatus),
		Payments:        payments,
		CreatedAt:       d.CreatedAt,
		CreatedBy:       d.CreatedBy.toDomain(),
		UpdatedAt:       d.UpdatedAt,
		UpdatedBy:       d.UpdatedBy.toDomain(),
	}, nil
}

type entryDoc struct {
	ID          uuid.UUID `bson:"_id"`
	Date        time.Time `bson:"date"`
	Description string    `bson:"description,omitempty"`
	AmountIn    string    `bson:"amount_in"`
	AmountOut   string    `bson:"amount_out"`
	CreatedAt   time.Time `bson:"created_at"`
	CreatedBy   actorDoc  `bson:"created_by"`
}

func toEntryDoc(e *ledgerbook.Entry) entryDoc {
	return entryDoc{
		ID:          e.ID,
		Date:        e.Date,
		Description: e.Description,
		AmountIn:    e.AmountIn.String(),
		AmountOut:   e.AmountOut.String(),
		CreatedAt:   e.CreatedAt,
		CreatedBy:   toActorDoc(e.CreatedBy),
	}
}

func (d entryDoc) toDomain() (ledgerbook.Entry, error) {
	in, err := decodeDecimal(d.AmountIn)
	if err != nil {
		return ledgerbook.Entry{}, err
	}
	out, err := decodeDecimal(d.AmountOut)
	if err != nil {
		return ledgerbook.Entry{}, err
	}
	return ledgerbook.Entry{
		ID:          d.ID,
		Date:        d.Date,
		Description: d.Description,
		AmountIn:    in,
		AmountOut:   out,
		CreatedAt:   d.CreatedAt,
		CreatedBy:   d.CreatedBy.toDomain(),
	}, nil
}

type recipientDoc struct {
	Name       string `bson:"name"`
	Percentage string `bson:"percentage"`
	Amount     string `bson:"amount"`
}

type splitDoc struct {
	ID               uuid.UUID      `bson:"_id"`
	WindowStart      time.Time      `bson:"window_start"`
	WindowEnd        time.Time      `bson:"window_end"`
	Recipients       []recipientDoc `bson:"recipients"`
	TotalSplitAmount string         `bson:"total_split_amount"`
	CreatedAt        time.Time      `bson:"created_at"`
	CreatedBy        actorDoc       `bson:"created_by"`
	UpdatedAt        time.Time      `bson:"updated_at"`
	UpdatedBy        actorDoc       `bson:"updated_by"`
}

func toSplitDoc(rec *split.Record) splitDoc {
	recipients := make([]recipientDoc, len(rec.Recipients))
	for i, r := range rec.Recipients {
		recipients[i] = recipientDoc{
			Name:       r.Name,
			Percentage: r.Percentage.String(),
			Amount:     r.Amount.String(),
		}
	}
	return splitDoc{
		ID:               rec.ID,
		WindowStart:      rec.Window.Start,
		WindowEnd:        rec.Window.End,
		Recipients:       recipients,
		TotalSplitAmount: rec.TotalSplitAmount.String(),
		CreatedAt:        rec.CreatedAt,
		CreatedBy:        toActorDoc(rec.CreatedBy),
		UpdatedAt:        rec.UpdatedAt,
		UpdatedBy:        toActorDoc(rec.UpdatedBy),
	}
}

func (d splitDoc) toDomain() (*split.Record, error) {
	total, err := decodeDecimal(d.TotalSplitAmount)
	if err != nil {
		return nil, err
	}

	recipients := make([]split.Recipient, len(d.Recipients))
	for i, r := range d.Recipients {
		pct, err := decodeDecimal(r.Percentage)
		if err != nil {
			return nil, err
		}
		amt, err := decodeDecimal(r.Amount)
		if err != nil {
			return nil, err
		}
		recipients[i] = split.Recipient{Name: r.Name, Percentage: pct, Amount: amt}
	}

	return &split.Record{
		ID:               d.ID,
		Window:           split.Window{Start: d.WindowStart, End: d.WindowEnd},
		Recipients:       recipients,
		TotalSplitAmount: total,
		CreatedAt:        d.CreatedAt,
		CreatedBy:        d.CreatedBy.toDomain(),
		UpdatedAt:        d.UpdatedAt,
		UpdatedBy:        d.UpdatedBy.toDomain(),
	}, nil
}
