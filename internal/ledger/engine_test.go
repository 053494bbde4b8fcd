package ledger

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bluemoon/internal/apperr"
	"bluemoon/internal/database/dbtest"
	"bluemoon/internal/domain"
	"bluemoon/internal/events"
)

func setupEngine(t *testing.T) (*Engine, *gorm.DB, *events.Recorder) {
	t.Helper()
	db := dbtest.Open(t)
	rec := &events.Recorder{}
	return NewEngine(db, rec, nil), db, rec
}

func seedFee(t *testing.T, db *gorm.DB, amountDue float64) domain.Fee {
	t.Helper()
	room := domain.Room{RoomNo: "A-101"}
	dbtest.Create(t, db, &room)
	fee := domain.Fee{
		RoomID:    &room.ID,
		FeeName:   "Phí quản lý",
		FeeType:   domain.FeeTypeRoom,
		Quantity:  1,
		UnitPrice: amountDue,
		AmountDue: amountDue,
		Status:    domain.FeeUnpaid,
	}
	dbtest.Create(t, db, &fee)
	return fee
}

func loadFee(t *testing.T, db *gorm.DB, id int64) domain.Fee {
	t.Helper()
	var fee domain.Fee
	require.NoError(t, db.First(&fee, id).Error)
	return fee
}

func countPayments(t *testing.T, db *gorm.DB, feeID int64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&domain.Payment{}).Where("fee_id = ?", feeID).Count(&n).Error)
	return n
}

func TestRecordPaymentPartialThenPaid(t *testing.T) {
	engine, db, rec := setupEngine(t)
	ctx := context.Background()
	fee := seedFee(t, db, 100000)
	userID := int64(7)

	res, err := engine.RecordPayment(ctx, PaymentInput{FeeID: fee.ID, Amount: 40000, ActingUserID: &userID})
	require.NoError(t, err)
	assert.Equal(t, 40000.0, res.NewAmountPaid)
	assert.Equal(t, domain.FeePartial, res.NewStatus)
	assert.Equal(t, domain.DefaultPaymentMethod, res.Payment.Method)
	require.NotNil(t, res.Payment.UserID)
	assert.Equal(t, userID, *res.Payment.UserID)

	res, err = engine.RecordPayment(ctx, PaymentInput{FeeID: fee.ID, Amount: 60000, Method: "TRANSFER", Note: "tháng 3"})
	require.NoError(t, err)
	assert.Equal(t, 100000.0, res.NewAmountPaid)
	assert.Equal(t, domain.FeePaid, res.NewStatus)
	assert.Nil(t, res.Payment.UserID)

	stored := loadFee(t, db, fee.ID)
	assert.Equal(t, 100000.0, stored.AmountPaid)
	assert.Equal(t, domain.FeePaid, stored.Status)
	assert.Equal(t, int64(2), countPayments(t, db, fee.ID))
	assert.Equal(t, []string{events.PaymentRecorded, events.PaymentRecorded}, rec.Types())
}

func TestRecordPaymentRejectsInvalidAmounts(t *testing.T) {
	engine, db, rec := setupEngine(t)
	fee := seedFee(t, db, 50000)

	for _, amount := range []float64{0, -1, -50000, 0.004, math.NaN(), math.Inf(1)} {
		_, err := engine.RecordPayment(context.Background(), PaymentInput{FeeID: fee.ID, Amount: amount})
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %v", amount)
		assert.ErrorIs(t, err, apperr.ErrValidation, "amount %v", amount)
	}

	stored := loadFee(t, db, fee.ID)
	assert.Equal(t, 0.0, stored.AmountPaid)
	assert.Equal(t, domain.FeeUnpaid, stored.Status)
	assert.Zero(t, countPayments(t, db, fee.ID))
	assert.Empty(t, rec.Events())
}

func TestRecordPaymentUnknownFee(t *testing.T) {
	engine, db, _ := setupEngine(t)

	_, err := engine.RecordPayment(context.Background(), PaymentInput{FeeID: 404, Amount: 1000})
	assert.ErrorIs(t, err, ErrFeeNotFound)
	assert.Equal(t, 404, apperr.StatusCode(err))

	var n int64
	require.NoError(t, db.Model(&domain.Payment{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestRecordPaymentAccumulatesWithoutDrift(t *testing.T) {
	engine, db, _ := setupEngine(t)
	fee := seedFee(t, db, 1)

	var last *PaymentResult
	for i := 0; i < 10; i++ {
		res, err := engine.RecordPayment(context.Background(), PaymentInput{FeeID: fee.ID, Amount: 0.1})
		require.NoError(t, err)
		last = res
	}

	assert.Equal(t, 1.0, last.NewAmountPaid)
	assert.Equal(t, domain.FeePaid, last.NewStatus)
	assert.Equal(t, 1.0, loadFee(t, db, fee.ID).AmountPaid)
}

func TestRecordPaymentAllowsOverpayment(t *testing.T) {
	engine, db, _ := setupEngine(t)
	fee := seedFee(t, db, 50000)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.RecordPayment(context.Background(), PaymentInput{FeeID: fee.ID, Amount: 30000})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored := loadFee(t, db, fee.ID)
	assert.Equal(t, 60000.0, stored.AmountPaid)
	assert.Equal(t, domain.FeePaid, stored.Status)
	assert.Equal(t, int64(2), countPayments(t, db, fee.ID))
}

func TestConcurrentPaymentsNeverLoseUpdates(t *testing.T) {
	engine, db, rec := setupEngine(t)
	fee := seedFee(t, db, 1000000)

	const workers = 12
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			amount := 12500.25
			if i%2 == 0 {
				amount = 7499.75
			}
			_, err := engine.RecordPayment(context.Background(), PaymentInput{FeeID: fee.ID, Amount: amount})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored := loadFee(t, db, fee.ID)
	assert.Equal(t, domain.Round2(6*12500.25+6*7499.75), stored.AmountPaid)
	assert.Equal(t, domain.FeePartial, stored.Status)
	assert.Equal(t, int64(workers), countPayments(t, db, fee.ID))

	var sum float64
	require.NoError(t, db.Model(&domain.Payment{}).Where("fee_id = ?", fee.ID).Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error)
	assert.Equal(t, stored.AmountPaid, domain.Round2(sum))
	assert.Len(t, rec.Events(), workers)
}

func TestConcurrentPaymentsSerializeAcrossPool(t *testing.T) {
	db := dbtest.OpenPool(t, 5)
	engine := NewEngine(db, nil, nil)
	fee := seedFee(t, db, 50000)

	const workers = 10
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.RecordPayment(context.Background(), PaymentInput{FeeID: fee.ID, Amount: 30000})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	stored := loadFee(t, db, fee.ID)
	assert.Equal(t, 300000.0, stored.AmountPaid)
	assert.Equal(t, domain.FeePaid, stored.Status)
	assert.Equal(t, int64(workers), countPayments(t, db, fee.ID))
}

func seedVehicle(t *testing.T, db *gorm.DB, status domain.ParkingStatus) (domain.Room, domain.Person, domain.Vehicle) {
	t.Helper()
	room := domain.Room{RoomNo: "B-202"}
	dbtest.Create(t, db, &room)
	owner := domain.Person{RoomID: room.ID, FullName: "Nguyễn Văn An", IsHead: true}
	dbtest.Create(t, db, &owner)
	vehicle := domain.Vehicle{RoomID: room.ID, PersonID: &owner.ID, Plate: "29A-12345", ParkingStatus: status, ParkingFeeTotal: 2000}
	dbtest.Create(t, db, &vehicle)
	return room, owner, vehicle
}

func TestCheckoutVehicleBillsParkingFee(t *testing.T) {
	engine, db, rec := setupEngine(t)
	room, owner, vehicle := seedVehicle(t, db, domain.ParkingIn)

	res, err := engine.CheckoutVehicle(context.Background(), vehicle.ID, CheckoutInput{
		FeeName:   domain.DefaultParkingFeeName,
		UnitPrice: dbtest.Float(5000),
		Quantity:  dbtest.Float(3),
	})
	require.NoError(t, err)
	assert.Equal(t, 15000.0, res.Total)
	assert.Equal(t, 17000.0, res.ParkingFeeTotal)

	fee := loadFee(t, db, res.FeeID)
	assert.Equal(t, 15000.0, fee.AmountDue)
	assert.Equal(t, 0.0, fee.AmountPaid)
	assert.Equal(t, domain.FeeUnpaid, fee.Status)
	assert.Equal(t, domain.FeeTypeParking, fee.FeeType)
	assert.Equal(t, domain.DefaultParkingFeeName, fee.FeeName)
	require.NotNil(t, fee.RoomID)
	assert.Equal(t, room.ID, *fee.RoomID)
	require.NotNil(t, fee.PersonID)
	assert.Equal(t, owner.ID, *fee.PersonID)
	require.NotNil(t, fee.VehicleID)
	assert.Equal(t, vehicle.ID, *fee.VehicleID)
	require.NotNil(t, fee.DueDate)
	assert.Equal(t, time.Now().UTC().Format(domain.DateLayout), time.Time(*fee.DueDate).Format(domain.DateLayout))

	var stored domain.Vehicle
	require.NoError(t, db.First(&stored, vehicle.ID).Error)
	assert.Equal(t, domain.ParkingOut, stored.ParkingStatus)
	assert.Equal(t, 17000.0, stored.ParkingFeeTotal)
	assert.NotNil(t, stored.LastCheckout)
	assert.Equal(t, []string{events.VehicleCheckedOut}, rec.Types())
}

func TestCheckoutVehicleDefaults(t *testing.T) {
	engine, db, _ := setupEngine(t)
	_, _, vehicle := seedVehicle(t, db, domain.ParkingOut)

	res, err := engine.CheckoutVehicle(context.Background(), vehicle.ID, CheckoutInput{})
	require.NoError(t, err)

	fee := loadFee(t, db, res.FeeID)
	assert.Equal(t, domain.DefaultParkingFeeName, fee.FeeName)
	assert.Equal(t, 1.0, fee.Quantity)
	assert.Equal(t, 0.0, fee.UnitPrice)
	assert.Equal(t, 0.0, fee.AmountDue)
	assert.Equal(t, domain.FeeUnpaid, fee.Status)
}

func TestCheckoutVehicleValidation(t *testing.T) {
	engine, db, _ := setupEngine(t)
	_, _, vehicle := seedVehicle(t, db, domain.ParkingIn)

	_, err := engine.CheckoutVehicle(context.Background(), vehicle.ID, CheckoutInput{UnitPrice: dbtest.Float(-1)})
	assert.ErrorIs(t, err, ErrInvalidUnitPrice)

	_, err = engine.CheckoutVehicle(context.Background(), vehicle.ID, CheckoutInput{Quantity: dbtest.Float(-2)})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = engine.CheckoutVehicle(context.Background(), vehicle.ID+100, CheckoutInput{})
	assert.ErrorIs(t, err, ErrVehicleNotFound)

	var stored domain.Vehicle
	require.NoError(t, db.First(&stored, vehicle.ID).Error)
	assert.Equal(t, domain.ParkingIn, stored.ParkingStatus)

	var n int64
	require.NoError(t, db.Model(&domain.Fee{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateFee(t *testing.T) {
	engine, db, _ := setupEngine(t)
	room := domain.Room{RoomNo: "C-303"}
	dbtest.Create(t, db, &room)

	fee, err := engine.CreateFee(context.Background(), NewFee{
		RoomID:    &room.ID,
		FeeName:   " Phí dịch vụ ",
		Period:    dbtest.String("2024-03"),
		Quantity:  dbtest.Float(2.5),
		UnitPrice: dbtest.Float(1000.333),
	})
	require.NoError(t, err)
	assert.Equal(t, "Phí dịch vụ", fee.FeeName)
	assert.Equal(t, domain.FeeTypeRoom, fee.FeeType)
	assert.Equal(t, 2500.83, fee.AmountDue)
	assert.Equal(t, domain.FeeUnpaid, fee.Status)

	free, err := engine.CreateFee(context.Background(), NewFee{FeeName: "Miễn phí", FeeType: domain.FeeTypeOther, Quantity: dbtest.Float(0)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, loadFee(t, db, free.ID).Quantity)
}

func TestCreateFeeValidation(t *testing.T) {
	engine, _, _ := setupEngine(t)
	ctx := context.Background()

	cases := []struct {
		in   NewFee
		want error
	}{
		{NewFee{FeeName: "  "}, ErrFeeNameRequired},
		{NewFee{FeeName: "x", FeeType: "WATER"}, ErrInvalidFeeType},
		{NewFee{FeeName: "x", Period: dbtest.String("2024-13")}, ErrInvalidPeriod},
		{NewFee{FeeName: "x", Quantity: dbtest.Float(-1)}, ErrInvalidQuantity},
		{NewFee{FeeName: "x", UnitPrice: dbtest.Float(math.NaN())}, ErrInvalidUnitPrice},
		{NewFee{FeeName: "x", RoomID: dbtest.Int64(99)}, ErrRoomNotFound},
		{NewFee{FeeName: "x", VehicleID: dbtest.Int64(99)}, ErrVehicleNotFound},
	}
	for _, tc := range cases {
		_, err := engine.CreateFee(ctx, tc.in)
		assert.ErrorIs(t, err, tc.want)
	}
}

func TestReviseFeeRederivesStatus(t *testing.T) {
	engine, db, rec := setupEngine(t)
	ctx := context.Background()
	fee := seedFee(t, db, 100000)

	_, err := engine.RecordPayment(ctx, PaymentInput{FeeID: fee.ID, Amount: 40000})
	require.NoError(t, err)

	revised, err := engine.ReviseFee(ctx, fee.ID, domain.FeePatch{UnitPrice: domain.Some(40000.0)})
	require.NoError(t, err)
	assert.Equal(t, 40000.0, revised.AmountDue)
	assert.Equal(t, 40000.0, revised.AmountPaid)
	assert.Equal(t, domain.FeePaid, revised.Status)

	revised, err = engine.ReviseFee(ctx, fee.ID, domain.FeePatch{
		Quantity: domain.Some(3.0),
		FeeName:  domain.Some("Phí quản lý quý"),
		Note:     domain.Some[*string](nil),
	})
	require.NoError(t, err)
	assert.Equal(t, 120000.0, revised.AmountDue)
	assert.Equal(t, domain.FeePartial, revised.Status)
	assert.Equal(t, "Phí quản lý quý", revised.FeeName)
	assert.Equal(t, []string{events.PaymentRecorded, events.FeeRevised, events.FeeRevised}, rec.Types())
}

func TestReviseFeeErrors(t *testing.T) {
	engine, db, _ := setupEngine(t)
	ctx := context.Background()
	fee := seedFee(t, db, 1000)

	_, err := engine.ReviseFee(ctx, fee.ID, domain.FeePatch{})
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)

	_, err = engine.ReviseFee(ctx, fee.ID, domain.FeePatch{Quantity: domain.Some(-1.0)})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = engine.ReviseFee(ctx, fee.ID+1, domain.FeePatch{FeeName: domain.Some("x")})
	assert.ErrorIs(t, err, ErrFeeNotFound)

	_, err = engine.ReviseFee(ctx, fee.ID, domain.FeePatch{RoomID: domain.Some(dbtest.Int64(999))})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	assert.Equal(t, 1000.0, loadFee(t, db, fee.ID).AmountDue)
}
