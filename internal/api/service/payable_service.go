package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taxiops-finance-core/internal/domain/money"
	"github.com/taxiops-finance-core/internal/domain/payable"
	"github.com/taxiops-finance-core/internal/domain/shared"
)

// PayableServiceImpl implements the PayableService interface
type PayableServiceImpl struct {
	payableRepo payable.Repository
	logger      *slog.Logger
}

// NewPayableService creates a new payable service
func NewPayableService(logger *slog.Logger, payableRepo payable.Repository) PayableService {
	return &PayableServiceImpl{
		payableRepo: payableRepo,
		logger:      logger,
	}
}

// CreateRecord creates an unpaid payable record
func (s *PayableServiceImpl) CreateRecord(ctx context.Context, kind payable.Kind, reference string, amount decimal.Decimal, actor shared.Actor) (*payable.Record, error) {
	rec, err := payable.NewRecord(kind, reference, amount, actor)
	if err != nil {
		return nil, err
	}

	if err := s.payableRepo.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("Payable record created",
		"record_id", rec.ID.String(),
		"kind", string(rec.Kind),
		"amount", rec.Amount.String(),
	)
	return rec, nil
}

// GetRecordByID retrieves a payable record by its ID
func (s *PayableServiceImpl) GetRecordByID(ctx context.Context, id uuid.UUID) (*payable.Record, error) {
	rec, err := s.payableRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.warnOnDiscrepancy(rec)
	return rec, nil
}

// ListRecords retrieves paginated payable records of one kind
func (s *PayableServiceImpl) ListRecords(ctx context.Context, kind payable.Kind, page, perPage int) ([]*payable.Record, int64, error) {
	offset := (page - 1) * perPage

	recs, err := s.payableRepo.ListByKind(ctx, kind, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.payableRepo.CountByKind(ctx, kind)
	if err != nil {
		return nil, 0, err
	}

	return recs, total, nil
}

// DeleteRecord removes a payable record and its payment history
func (s *PayableServiceImpl) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	return s.payableRepo.Delete(ctx, id)
}

// AddPayment records a partial payment against a record and returns the
// updated record with its re-derived payment status
func (s *PayableServiceImpl) AddPayment(ctx context.Context, recordID uuid.UUID, amount decimal.Decimal, date time.Time, method, reference string, actor shared.Actor) (*payable.Record, error) {
	rec, err := s.payableRepo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}

	payment, err := rec.AddPayment(amount, date, method, reference, actor)
	if err != nil {
		return nil, err
	}

	if err := s.payableRepo.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("Payment recorded",
		"record_id", rec.ID.String(),
		"payment_id", payment.ID.String(),
		"amount", payment.Amount.String(),
		"payment_status", string(rec.PaymentStatus),
	)
	return rec, nil
}

// RemovePayment deletes a payment from a record and returns the updated record
func (s *PayableServiceImpl) RemovePayment(ctx context.Context, recordID, paymentID uuid.UUID, actor shared.Actor) (*payable.Record, error) {
	rec, err := s.payableRepo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}

	if err := rec.RemovePayment(paymentID, actor); err != nil {
		return nil, err
	}

	if err := s.payableRepo.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("Payment removed",
		"record_id", rec.ID.String(),
		"payment_id", paymentID.String(),
		"payment_status", string(rec.PaymentStatus),
	)
	return rec, nil
}

// warnOnDiscrepancy logs when a stored total disagrees with the sum of
// payments by more than one cent. The stored value is never corrected here.
func (s *PayableServiceImpl) warnOnDiscrepancy(rec *payable.Record) {
	if err := rec.CheckIntegrity(); err != nil {
		var discrepancy money.RoundingDiscrepancyError
		if errors.As(err, &discrepancy) {
			s.logger.Warn("Payable record has a rounding discrepancy",
				"record_id", rec.ID.String(),
				"stored", discrepancy.Stored.StringFixed(2),
				"derived", discrepancy.Derived.StringFixed(2),
			)
		}
	}
}
