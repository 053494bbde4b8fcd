package billing

import (
	"context"

	"gorm.io/datatypes"

	"bluemoon/internal/cascade"
	"bluemoon/internal/domain"
	"bluemoon/internal/ledger"
	"bluemoon/internal/repository"
)

type FeeReader interface {
	ListFees(ctx context.Context, f repository.FeeFilter) (*repository.FeePage, error)
	GetFee(ctx context.Context, id int64) (*repository.FeeView, error)
	FeeExists(ctx context.Context, id int64) (bool, error)
	OverdueFees(ctx context.Context, today datatypes.Date) ([]repository.FeeView, error)
	ListPayments(ctx context.Context, feeID int64) ([]repository.PaymentView, error)
}

// Ledger is implemented by ledger.Engine.
type Ledger interface {
	CreateFee(ctx context.Context, in ledger.NewFee) (*domain.Fee, error)
	ReviseFee(ctx context.Context, id int64, patch domain.FeePatch) (*domain.Fee, error)
	RecordPayment(ctx context.Context, in ledger.PaymentInput) (*ledger.PaymentResult, error)
}

type Deleter interface {
	DeleteFee(ctx context.Context, feeID int64) (*cascade.FeeDeletion, error)
}
