// Package cascade deletes rooms, vehicles, fees and persons together with
// every row that depends on them. The schema declares no ON DELETE CASCADE,
// so children are removed in order (payments, fees, vehicles, user links,
// persons) inside one transaction that first locks the root row.
package cascade

import (
	"context"
	"errors"

	"go.uber.org/zap"
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

type RoomDeletion struct {
	RoomID          int64 `json:"room_id"`
	DeletedPayments int64 `json:"deleted_payments"`
	DeletedFees     int64 `json:"deleted_fees"`
	DeletedVehicles int64 `json:"deleted_vehicles"`
	DeletedPersons  int64 `json:"deleted_persons"`
	DetachedUsers   int64 `json:"detached_users"`
}

// DeleteRoom removes a room and everything hanging off it. Fees are swept
// through the room link and the vehicle link. Fees, users and vehicles of
// other rooms that reference the room's persons are kept with the person
// link cleared.
func (e *Engine) DeleteRoom(ctx context.Context, roomID int64) (*RoomDeletion, error) {
	res := RoomDeletion{RoomID: roomID}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx, &domain.Room{}, roomID, ErrRoomNotFound); err != nil {
			return err
		}

		var vehicleIDs, personIDs []int64
		if err := tx.Model(&domain.Vehicle{}).Where("room_id = ?", roomID).Pluck("id", &vehicleIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Person{}).Where("room_id = ?", roomID).Pluck("id", &personIDs).Error; err != nil {
			return err
		}

		feeQuery := tx.Model(&domain.Fee{}).Where("room_id = ?", roomID)
		if len(vehicleIDs) > 0 {
			feeQuery = feeQuery.Or("vehicle_id IN ?", vehicleIDs)
		}
		var feeIDs []int64
		if err := feeQuery.Pluck("id", &feeIDs).Error; err != nil {
			return err
		}

		var err error
		if res.DeletedPayments, res.DeletedFees, err = deleteFees(tx, feeIDs); err != nil {
			return err
		}

		deleted := tx.Where("room_id = ?", roomID).Delete(&domain.Vehicle{})
		if deleted.Error != nil {
			return deleted.Error
		}
		res.DeletedVehicles = deleted.RowsAffected

		if len(personIDs) > 0 {
			if res.DetachedUsers, err = detachPersons(tx, personIDs); err != nil {
				return err
			}
		}

		deleted = tx.Where("room_id = ?", roomID).Delete(&domain.Person{})
		if deleted.Error != nil {
			return deleted.Error
		}
		res.DeletedPersons = deleted.RowsAffected

		return tx.Where("id = ?", roomID).Delete(&domain.Room{}).Error
	})
	if err != nil {
		return nil, e.fail("delete room", err, zap.Int64("room_id", roomID))
	}

	e.log.Info("room deleted",
		zap.Int64("room_id", roomID),
		zap.Int64("fees", res.DeletedFees),
		zap.Int64("payments", res.DeletedPayments),
		zap.Int64("vehicles", res.DeletedVehicles),
		zap.Int64("persons", res.DeletedPersons),
		zap.Int64("detached_users", res.DetachedUsers),
	)
	e.events.Publish(events.New(events.RoomDeleted, res))
	return &res, nil
}

type VehicleDeletion struct {
	VehicleID       int64 `json:"vehicle_id"`
	DeletedPayments int64 `json:"deleted_payments"`
	DeletedFees     int64 `json:"deleted_fees"`
}

func (e *Engine) DeleteVehicle(ctx context.Context, vehicleID int64) (*VehicleDeletion, error) {
	res := VehicleDeletion{VehicleID: vehicleID}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx, &domain.Vehicle{}, vehicleID, ErrVehicleNotFound); err != nil {
			return err
		}

		var feeIDs []int64
		if err := tx.Model(&domain.Fee{}).Where("vehicle_id = ?", vehicleID).Pluck("id", &feeIDs).Error; err != nil {
			return err
		}

		var err error
		if res.DeletedPayments, res.DeletedFees, err = deleteFees(tx, feeIDs); err != nil {
			return err
		}

		return tx.Where("id = ?", vehicleID).Delete(&domain.Vehicle{}).Error
	})
	if err != nil {
		return nil, e.fail("delete vehicle", err, zap.Int64("vehicle_id", vehicleID))
	}

	e.log.Info("vehicle deleted",
		zap.Int64("vehicle_id", vehicleID),
		zap.Int64("fees", res.DeletedFees),
		zap.Int64("payments", res.DeletedPayments),
	)
	e.events.Publish(events.New(events.VehicleDeleted, res))
	return &res, nil
}

type FeeDeletion struct {
	FeeID           int64 `json:"fee_id"`
	DeletedPayments int64 `json:"deleted_payments"`
}

func (e *Engine) DeleteFee(ctx context.Context, feeID int64) (*FeeDeletion, error) {
	res := FeeDeletion{FeeID: feeID}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx, &domain.Fee{}, feeID, ErrFeeNotFound); err != nil {
			return err
		}

		var err error
		res.DeletedPayments, _, err = deleteFees(tx, []int64{feeID})
		return err
	})
	if err != nil {
		return nil, e.fail("delete fee", err, zap.Int64("fee_id", feeID))
	}

	e.log.Info("fee deleted", zap.Int64("fee_id", feeID), zap.Int64("payments", res.DeletedPayments))
	e.events.Publish(events.New(events.FeeDeleted, res))
	return &res, nil
}

type PersonDeletion struct {
	Requested  int     `json:"requested"`
	Deleted    int64   `json:"deleted"`
	DeletedIDs []int64 `json:"deleted_ids"`
}

// BulkDeletePersons deletes the given persons except heads of household,
// which are skipped without error. References from users, vehicles and fees
// to the deleted persons are cleared.
func (e *Engine) BulkDeletePersons(ctx context.Context, ids []int64) (*PersonDeletion, error) {
	ids = uniquePositive(ids)
	if len(ids) == 0 {
		return nil, ErrEmptyIDList
	}
	return e.deletePersons(ctx, ids)
}

// DeletePerson deletes one person unless it is the head of household, in
// which case nothing is deleted and Deleted is 0.
func (e *Engine) DeletePerson(ctx context.Context, id int64) (*PersonDeletion, error) {
	var n int64
	if err := e.db.WithContext(ctx).Model(&domain.Person{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return nil, e.fail("delete person", err, zap.Int64("person_id", id))
	}
	if n == 0 {
		return nil, ErrPersonNotFound
	}
	return e.deletePersons(ctx, []int64{id})
}

func (e *Engine) deletePersons(ctx context.Context, ids []int64) (*PersonDeletion, error) {
	res := PersonDeletion{Requested: len(ids), DeletedIDs: []int64{}}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var targets []int64
		if err := tx.Model(&domain.Person{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ? AND is_head = ?", ids, false).
			Order("id").
			Pluck("id", &targets).Error; err != nil {
			return err
		}
		if len(targets) == 0 {
			return nil
		}

		if _, err := detachPersons(tx, targets); err != nil {
			return err
		}

		deleted := tx.Where("id IN ? AND is_head = ?", targets, false).Delete(&domain.Person{})
		if deleted.Error != nil {
			return deleted.Error
		}
		res.Deleted = deleted.RowsAffected
		res.DeletedIDs = targets
		return nil
	})
	if err != nil {
		return nil, e.fail("delete persons", err, zap.Int("requested", len(ids)))
	}

	e.log.Info("persons deleted", zap.Int("requested", res.Requested), zap.Int64("deleted", res.Deleted))
	if res.Deleted > 0 {
		e.events.Publish(events.New(events.PersonsDeleted, res))
	}
	return &res, nil
}

// deleteFees removes the payments of the given fees, then the fees.
func deleteFees(tx *gorm.DB, feeIDs []int64) (payments, fees int64, err error) {
	if len(feeIDs) == 0 {
		return 0, 0, nil
	}

	deleted := tx.Where("fee_id IN ?", feeIDs).Delete(&domain.Payment{})
	if deleted.Error != nil {
		return 0, 0, deleted.Error
	}
	payments = deleted.RowsAffected

	deleted = tx.Where("id IN ?", feeIDs).Delete(&domain.Fee{})
	if deleted.Error != nil {
		return 0, 0, deleted.Error
	}
	return payments, deleted.RowsAffected, nil
}

// detachPersons clears user, vehicle and fee references to persons about to
// be deleted and returns how many users were detached.
func detachPersons(tx *gorm.DB, personIDs []int64) (int64, error) {
	users := tx.Model(&domain.User{}).Where("person_id IN ?", personIDs).Update("person_id", nil)
	if users.Error != nil {
		return 0, users.Error
	}
	if err := tx.Model(&domain.Vehicle{}).Where("person_id IN ?", personIDs).Update("person_id", nil).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&domain.Fee{}).Where("person_id IN ?", personIDs).Update("person_id", nil).Error; err != nil {
		return 0, err
	}
	return users.RowsAffected, nil
}

func lockRow(tx *gorm.DB, model any, id int64, notFound error) error {
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound
		}
		return err
	}
	return nil
}

func uniquePositive(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (e *Engine) fail(op string, err error, fields ...zap.Field) error {
	err = database.Classify(err)
	if errors.Is(err, apperr.ErrInfrastructure) {
		fields = append(fields, zap.String("op", op), zap.Bool("retryable", apperr.IsRetryable(err)), zap.Error(err))
		e.log.Error("cascade transaction failed", fields...)
	}
	return err
}
