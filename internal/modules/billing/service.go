package billing

import (
	"context"
	"strings"

	"bluemoon/internal/cascade"
	"bluemoon/internal/database"
	"bluemoon/internal/domain"
	"bluemoon/internal/ledger"
	"bluemoon/internal/repository"
)

type Service struct {
	fees    FeeReader
	ledger  Ledger
	deleter Deleter
}

func NewService(fees FeeReader, ledger Ledger, deleter Deleter) *Service {
	return &Service{fees: fees, ledger: ledger, deleter: deleter}
}

func (s *Service) ListFees(ctx context.Context, f repository.FeeFilter) (*repository.FeePage, error) {
	page, err := s.fees.ListFees(ctx, f)
	if err != nil {
		return nil, database.Classify(err)
	}
	return page, nil
}

func (s *Service) GetFee(ctx context.Context, id int64) (*repository.FeeView, error) {
	fee, err := s.fees.GetFee(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrFeeNotFound
		}
		return nil, database.Classify(err)
	}
	return fee, nil
}

func (s *Service) CreateFee(ctx context.Context, req CreateFeeRequest) (*domain.Fee, error) {
	due, ok := domain.ParseDate(req.DueDate)
	if !ok {
		return nil, ErrInvalidDate
	}
	return s.ledger.CreateFee(ctx, ledger.NewFee{
		RoomID:    req.RoomID,
		PersonID:  req.PersonID,
		VehicleID: req.VehicleID,
		FeeName:   req.FeeName,
		FeeType:   domain.FeeType(strings.ToUpper(strings.TrimSpace(req.FeeType))),
		Period:    domain.NullIfEmpty(strings.TrimSpace(req.Period)),
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		DueDate:   due,
		Note:      req.Note,
	})
}

func (s *Service) UpdateFee(ctx context.Context, id int64, req UpdateFeeRequest) (*domain.Fee, error) {
	patch, err := req.Patch()
	if err != nil {
		return nil, err
	}
	return s.ledger.ReviseFee(ctx, id, patch)
}

func (s *Service) DeleteFee(ctx context.Context, id int64) (*cascade.FeeDeletion, error) {
	return s.deleter.DeleteFee(ctx, id)
}

func (s *Service) OverdueFees(ctx context.Context) ([]repository.FeeView, error) {
	fees, err := s.fees.OverdueFees(ctx, domain.Today())
	if err != nil {
		return nil, database.Classify(err)
	}
	return fees, nil
}

func (s *Service) ListPayments(ctx context.Context, feeID int64) ([]repository.PaymentView, error) {
	ok, err := s.fees.FeeExists(ctx, feeID)
	if err != nil {
		return nil, database.Classify(err)
	}
	if !ok {
		return nil, ErrFeeNotFound
	}

	payments, err := s.fees.ListPayments(ctx, feeID)
	if err != nil {
		return nil, database.Classify(err)
	}
	return payments, nil
}

// RecordPayment attributes the payment to the acting user when there is one.
func (s *Service) RecordPayment(ctx context.Context, userID int64, req RecordPaymentRequest) (*ledger.PaymentResult, error) {
	in := ledger.PaymentInput{
		FeeID:  req.FeeID,
		Amount: req.Amount,
		Method: req.Method,
		Note:   req.Note,
	}
	if userID > 0 {
		in.ActingUserID = &userID
	}
	return s.ledger.RecordPayment(ctx, in)
}
