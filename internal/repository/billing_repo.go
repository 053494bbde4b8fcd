package repository

import (
	"context"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"bluemoon/internal/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type FeeFilter struct {
	Q         string
	FeeType   string
	Status    string
	Period    string
	RoomID    *int64
	VehicleID *int64
	Page      int
	PageSize  int
}

// Normalize clamps paging to page >= 1 and 1 <= page_size <= MaxPageSize.
func (f *FeeFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

type FeeView struct {
	domain.Fee
	RoomNo  *string `json:"room_no"`
	Plate   *string `json:"plate"`
	PaidSum float64 `json:"paid_sum"`
}

type FeePage struct {
	Items    []FeeView `json:"items"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

type PaymentView struct {
	domain.Payment
	CreatedByName *string `json:"created_by_name"`
}

type BillingRepository struct {
	db *gorm.DB
}

func NewBillingRepository(db *gorm.DB) *BillingRepository {
	return &BillingRepository{db: db}
}

func (r *BillingRepository) fees(ctx context.Context, f FeeFilter) *gorm.DB {
	q := r.db.WithContext(ctx).
		Table("fees f").
		Joins("LEFT JOIN rooms r ON r.id = f.room_id").
		Joins("LEFT JOIN vehicles v ON v.id = f.vehicle_id")

	if s := strings.TrimSpace(f.Q); s != "" {
		p := likePattern(s)
		q = q.Where("(f.fee_name LIKE ?"+likeEscape+" OR r.room_no LIKE ?"+likeEscape+" OR v.plate LIKE ?"+likeEscape+")", p, p, p)
	}
	if f.FeeType != "" {
		q = q.Where("f.fee_type = ?", f.FeeType)
	}
	if f.Status != "" {
		q = q.Where("f.status = ?", f.Status)
	}
	if f.Period != "" {
		q = q.Where("f.period = ?", f.Period)
	}
	if f.RoomID != nil {
		q = q.Where("f.room_id = ?", *f.RoomID)
	}
	if f.VehicleID != nil {
		q = q.Where("f.vehicle_id = ?", *f.VehicleID)
	}
	return q
}

const feeViewSelect = "f.*, r.room_no, v.plate, " +
	"(SELECT COALESCE(SUM(p.amount), 0) FROM payments p WHERE p.fee_id = f.id) AS paid_sum"

func (r *BillingRepository) ListFees(ctx context.Context, f FeeFilter) (*FeePage, error) {
	f.Normalize()
	page := &FeePage{Items: []FeeView{}, Page: f.Page, PageSize: f.PageSize}

	if err := r.fees(ctx, f).Count(&page.Total).Error; err != nil {
		return nil, err
	}
	if page.Total == 0 {
		return page, nil
	}

	err := r.fees(ctx, f).
		Select(feeViewSelect).
		Order("f.created_at DESC").
		Order("f.id DESC").
		Limit(f.PageSize).
		Offset((f.Page - 1) * f.PageSize).
		Scan(&page.Items).Error
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (r *BillingRepository) GetFee(ctx context.Context, id int64) (*FeeView, error) {
	var fee FeeView
	err := r.fees(ctx, FeeFilter{}).
		Select(feeViewSelect).
		Where("f.id = ?", id).
		Take(&fee).Error
	if err != nil {
		return nil, err
	}
	return &fee, nil
}

func (r *BillingRepository) FeeExists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, &domain.Fee{}, id)
}

// OverdueFees lists unpaid or partially paid fees whose due date is before
// today, oldest first.
func (r *BillingRepository) OverdueFees(ctx context.Context, today datatypes.Date) ([]FeeView, error) {
	out := []FeeView{}
	err := r.fees(ctx, FeeFilter{}).
		Select(feeViewSelect).
		Where("f.due_date IS NOT NULL AND f.due_date < ?", today).
		Where("f.status <> ?", domain.FeePaid).
		Order("f.due_date ASC").
		Order("f.id ASC").
		Scan(&out).Error
	return out, err
}

// ListPayments returns a fee's payments newest first with the name of the
// user who recorded them.
func (r *BillingRepository) ListPayments(ctx context.Context, feeID int64) ([]PaymentView, error) {
	out := []PaymentView{}
	err := r.db.WithContext(ctx).
		Table("payments p").
		Select("p.*, u.full_name AS created_by_name").
		Joins("LEFT JOIN users u ON u.id = p.user_id").
		Where("p.fee_id = ?", feeID).
		Order("p.payment_date DESC").
		Order("p.id DESC").
		Scan(&out).Error
	return out, err
}
