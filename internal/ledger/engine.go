// Package ledger owns every write that changes what a fee is owed or has been
// paid. A fee's amount_paid is the running sum of its payments and its status
// is derived from amount_paid and amount_due on every change.
package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bluemoon/internal/apperr"
	"bluemoon/internal/database"
	"bluemoon/internal/domain"
	"bluemoon/internal/events"
)

type Engine struct {
	db     *gorm.DB
	events events.Publisher
	log    *zap.Logger
}

func NewEngine(db *gorm.DB, publisher events.Publisher, log *zap.Logger) *Engine {
	if publisher == nil {
		publisher = events.Nop
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{db: db, events: publisher, log: log}
}

type PaymentInput struct {
	FeeID        int64
	Amount       float64
	Method       string
	Note         string
	ActingUserID *int64
}

type PaymentResult struct {
	Payment       domain.Payment   `json:"payment"`
	FeeID         int64            `json:"fee_id"`
	NewAmountPaid float64          `json:"new_amount_paid"`
	NewStatus     domain.FeeStatus `json:"new_status"`
}

// RecordPayment applies a payment to a fee. The fee row is locked for the
// duration of the transaction so concurrent payments against the same fee
// serialize. Overpayment is accepted; amount_paid is not capped.
func (e *Engine) RecordPayment(ctx context.Context, in PaymentInput) (*PaymentResult, error) {
	if !domain.Finite(in.Amount) {
		return nil, ErrInvalidAmount
	}
	amount := domain.Round2(in.Amount)
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	method := strings.TrimSpace(in.Method)
	if method == "" {
		method = domain.DefaultPaymentMethod
	}

	var result PaymentResult
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var fee domain.Fee
		if err := lockFee(tx, in.FeeID, &fee); err != nil {
			return err
		}

		newPaid := domain.Round2(fee.AmountPaid + amount)
		newStatus := domain.StatusFor(newPaid, fee.AmountDue)

		payment := domain.Payment{
			FeeID:       fee.ID,
			UserID:      in.ActingUserID,
			PaymentDate: time.Now().UTC(),
			Amount:      amount,
			Method:      method,
			Note:        domain.NullIfEmpty(strings.TrimSpace(in.Note)),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		if err := tx.Model(&domain.Fee{}).Where("id = ?", fee.ID).Updates(map[string]any{
			"amount_paid": newPaid,
			"status":      newStatus,
		}).Error; err != nil {
			return err
		}

		result = PaymentResult{Payment: payment, FeeID: fee.ID, NewAmountPaid: newPaid, NewStatus: newStatus}
		return nil
	})
	if err != nil {
		return nil, e.fail("record payment", err, zap.Int64("fee_id", in.FeeID))
	}

	e.log.Info("payment recorded",
		zap.Int64("fee_id", result.FeeID),
		zap.Int64("payment_id", result.Payment.ID),
		zap.Float64("amount", amount),
		zap.Float64("amount_paid", result.NewAmountPaid),
		zap.String("status", string(result.NewStatus)),
	)
	e.events.Publish(events.New(events.PaymentRecorded, result))
	return &result, nil
}

type CheckoutInput struct {
	FeeName   string
	UnitPrice *float64
	Quantity  *float64
}

type CheckoutResult struct {
	VehicleID       int64      `json:"vehicle_id"`
	FeeID           int64      `json:"fee_id"`
	Total           float64    `json:"total"`
	ParkingFeeTotal float64    `json:"parking_fee_total"`
	Fee             domain.Fee `json:"fee"`
}

// CheckoutVehicle marks a vehicle as out of the lot and bills the stay as a
// PARKING fee due today. Quantity defaults to 1 and unit price to 0.
func (e *Engine) CheckoutVehicle(ctx context.Context, vehicleID int64, in CheckoutInput) (*CheckoutResult, error) {
	quantity := 1.0
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	if !domain.Finite(quantity) || quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	unitPrice := 0.0
	if in.UnitPrice != nil {
		unitPrice = *in.UnitPrice
	}
	if !domain.Finite(unitPrice) || unitPrice < 0 {
		return nil, ErrInvalidUnitPrice
	}

	feeName := strings.TrimSpace(in.FeeName)
	if feeName == "" {
		feeName = domain.DefaultParkingFeeName
	}
	total := domain.AmountDue(quantity, unitPrice)

	var result CheckoutResult
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vehicle domain.Vehicle
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", vehicleID).First(&vehicle).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVehicleNotFound
			}
			return err
		}

		now := time.Now().UTC()
		feeTotal := domain.Round2(vehicle.ParkingFeeTotal + total)
		if err := tx.Model(&domain.Vehicle{}).Where("id = ?", vehicle.ID).Updates(map[string]any{
			"parking_status":    domain.ParkingOut,
			"last_checkout":     now,
			"parking_fee_total": feeTotal,
		}).Error; err != nil {
			return err
		}

		roomID := vehicle.RoomID
		vid := vehicle.ID
		today := domain.Today()
		fee := domain.Fee{
			RoomID:     &roomID,
			PersonID:   vehicle.PersonID,
			VehicleID:  &vid,
			FeeName:    feeName,
			FeeType:    domain.FeeTypeParking,
			Quantity:   quantity,
			UnitPrice:  unitPrice,
			AmountDue:  total,
			AmountPaid: 0,
			DueDate:    &today,
			Status:     domain.FeeUnpaid,
		}
		if err := tx.Create(&fee).Error; err != nil {
			return err
		}

		result = CheckoutResult{VehicleID: vehicle.ID, FeeID: fee.ID, Total: total, ParkingFeeTotal: feeTotal, Fee: fee}
		return nil
	})
	if err != nil {
		return nil, e.fail("checkout vehicle", err, zap.Int64("vehicle_id", vehicleID))
	}

	e.log.Info("vehicle checked out",
		zap.Int64("vehicle_id", result.VehicleID),
		zap.Int64("fee_id", result.FeeID),
		zap.Float64("total", result.Total),
	)
	e.events.Publish(events.New(events.VehicleCheckedOut, result))
	return &result, nil
}

// NewFee describes a fee to create. Nil Quantity means 1 and nil UnitPrice
// means 0.
type NewFee struct {
	RoomID    *int64
	PersonID  *int64
	VehicleID *int64
	FeeName   string
	FeeType   domain.FeeType
	Period    *string
	Quantity  *float64
	UnitPrice *float64
	DueDate   *datatypes.Date
	Note      *string
}

// CreateFee inserts an unpaid fee with amount_due = round2(quantity * unit_price).
// Referenced rooms, persons and vehicles must exist.
func (e *Engine) CreateFee(ctx context.Context, in NewFee) (*domain.Fee, error) {
	fee := domain.Fee{
		RoomID:    in.RoomID,
		PersonID:  in.PersonID,
		VehicleID: in.VehicleID,
		FeeName:   strings.TrimSpace(in.FeeName),
		FeeType:   in.FeeType,
		Period:    in.Period,
		Quantity:  1,
		DueDate:   in.DueDate,
		Note:      in.Note,
		Status:    domain.FeeUnpaid,
	}
	if fee.FeeName == "" {
		return nil, ErrFeeNameRequired
	}
	if fee.FeeType == "" {
		fee.FeeType = domain.FeeTypeRoom
	}
	if !fee.FeeType.Valid() {
		return nil, ErrInvalidFeeType
	}
	if in.Period != nil && !domain.ValidPeriod(*in.Period) {
		return nil, ErrInvalidPeriod
	}
	if in.Quantity != nil {
		fee.Quantity = *in.Quantity
	}
	if !domain.Finite(fee.Quantity) || fee.Quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if in.UnitPrice != nil {
		fee.UnitPrice = *in.UnitPrice
	}
	if !domain.Finite(fee.UnitPrice) || fee.UnitPrice < 0 {
		return nil, ErrInvalidUnitPrice
	}
	fee.AmountDue = domain.AmountDue(fee.Quantity, fee.UnitPrice)

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, fee.RoomID, fee.PersonID, fee.VehicleID); err != nil {
			return err
		}
		return tx.Create(&fee).Error
	})
	if err != nil {
		return nil, e.fail("create fee", err)
	}

	e.log.Info("fee created",
		zap.Int64("fee_id", fee.ID),
		zap.String("fee_type", string(fee.FeeType)),
		zap.Float64("amount_due", fee.AmountDue),
	)
	return &fee, nil
}

// ReviseFee applies a partial update to a fee. amount_due is recomputed from
// the resulting quantity and unit price and status is derived again from the
// unchanged amount_paid.
func (e *Engine) ReviseFee(ctx context.Context, id int64, patch domain.FeePatch) (*domain.Fee, error) {
	if patch.Empty() {
		return nil, ErrNoFieldsToUpdate
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	var fee domain.Fee
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockFee(tx, id, &fee); err != nil {
			return err
		}

		var roomID, personID, vehicleID *int64
		if patch.RoomID.Set {
			roomID = patch.RoomID.Value
		}
		if patch.PersonID.Set {
			personID = patch.PersonID.Value
		}
		if patch.VehicleID.Set {
			vehicleID = patch.VehicleID.Value
		}
		if err := checkReferences(tx, roomID, personID, vehicleID); err != nil {
			return err
		}

		quantity, unitPrice := fee.Quantity, fee.UnitPrice
		if patch.Quantity.Set {
			quantity = patch.Quantity.Value
		}
		if patch.UnitPrice.Set {
			unitPrice = patch.UnitPrice.Value
		}
		amountDue := domain.AmountDue(quantity, unitPrice)

		cols := patch.Columns()
		cols["amount_due"] = amountDue
		cols["status"] = domain.StatusFor(fee.AmountPaid, amountDue)
		if err := tx.Model(&domain.Fee{}).Where("id = ?", fee.ID).Updates(cols).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", fee.ID).First(&fee).Error
	})
	if err != nil {
		return nil, e.fail("revise fee", err, zap.Int64("fee_id", id))
	}

	e.log.Info("fee revised",
		zap.Int64("fee_id", fee.ID),
		zap.Float64("amount_due", fee.AmountDue),
		zap.String("status", string(fee.Status)),
	)
	e.events.Publish(events.New(events.FeeRevised, fee))
	return &fee, nil
}

func validatePatch(p domain.FeePatch) error {
	if p.FeeName.Set && strings.TrimSpace(p.FeeName.Value) == "" {
		return ErrFeeNameRequired
	}
	if p.FeeType.Set && !p.FeeType.Value.Valid() {
		return ErrInvalidFeeType
	}
	if p.Period.Set && p.Period.Value != nil && !domain.ValidPeriod(*p.Period.Value) {
		return ErrInvalidPeriod
	}
	if p.Quantity.Set && (!domain.Finite(p.Quantity.Value) || p.Quantity.Value < 0) {
		return ErrInvalidQuantity
	}
	if p.UnitPrice.Set && (!domain.Finite(p.UnitPrice.Value) || p.UnitPrice.Value < 0) {
		return ErrInvalidUnitPrice
	}
	return nil
}

func lockFee(tx *gorm.DB, id int64, fee *domain.Fee) error {
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(fee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFeeNotFound
		}
		return err
	}
	return nil
}

func checkReferences(tx *gorm.DB, roomID, personID, vehicleID *int64) error {
	refs := []struct {
		id       *int64
		model    any
		notFound error
	}{
		{roomID, &domain.Room{}, ErrRoomNotFound},
		{personID, &domain.Person{}, ErrPersonNotFound},
		{vehicleID, &domain.Vehicle{}, ErrVehicleNotFound},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		var n int64
		if err := tx.Model(ref.model).Where("id = ?", *ref.id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ref.notFound
		}
	}
	return nil
}

// fail classifies a transaction error and logs infrastructure failures.
func (e *Engine) fail(op string, err error, fields ...zap.Field) error {
	err = database.Classify(err)
	if errors.Is(err, apperr.ErrInfrastructure) {
		fields = append(fields, zap.String("op", op), zap.Bool("retryable", apperr.IsRetryable(err)), zap.Error(err))
		e.log.Error("ledger transaction failed", fields...)
	}
	return err
}
