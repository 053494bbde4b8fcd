package parking

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"bluemoon/internal/apperr"
	"bluemoon/internal/cascade"
	"bluemoon/internal/database"
	"bluemoon/internal/domain"
	"bluemoon/internal/ledger"
	"bluemoon/internal/repository"
)

// DefaultStatisticsDays is the window used when no from/to is given.
const DefaultStatisticsDays = 30

type Service struct {
	vehicles  VehicleStore
	directory Directory
	checkout  Checkout
	deleter   Deleter
	log       *zap.Logger
}

func NewService(vehicles VehicleStore, directory Directory, checkout Checkout, deleter Deleter, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		vehicles:  vehicles,
		directory: directory,
		checkout:  checkout,
		deleter:   deleter,
		log:       log,
	}
}

func (s *Service) List(ctx context.Context, f repository.VehicleFilter) ([]repository.VehicleView, error) {
	out, err := s.vehicles.List(ctx, f)
	if err != nil {
		return nil, database.Classify(err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*repository.VehicleView, error) {
	v, err := s.vehicles.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrVehicleNotFound)
	}
	return v, nil
}

// Create registers a vehicle. New vehicles start outside the lot with no
// parking fees.
func (s *Service) Create(ctx context.Context, req CreateVehicleRequest) (*domain.Vehicle, error) {
	plate := strings.TrimSpace(req.Plate)
	if plate == "" {
		return nil, ErrPlateRequired
	}
	if err := s.checkLinks(ctx, &req.RoomID, req.PersonID); err != nil {
		return nil, err
	}

	vehicleType := strings.TrimSpace(req.VehicleType)
	if vehicleType == "" {
		vehicleType = domain.DefaultVehicleType
	}
	v := &domain.Vehicle{
		RoomID:        req.RoomID,
		PersonID:      req.PersonID,
		Plate:         plate,
		VehicleType:   vehicleType,
		Brand:         req.Brand,
		Model:         req.Model,
		Color:         req.Color,
		ParkingStatus: domain.ParkingOut,
		ParkingSlot:   req.ParkingSlot,
	}
	if err := s.vehicles.Create(ctx, v); err != nil {
		return nil, plateConflict(database.Classify(err))
	}
	return v, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateVehicleRequest) (*domain.Vehicle, error) {
	patch, err := req.Patch()
	if err != nil {
		return nil, err
	}
	cols := patch.Columns()
	if len(cols) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	var roomID, personID *int64
	if patch.RoomID.Set {
		roomID = &patch.RoomID.Value
	}
	if patch.PersonID.Set {
		personID = patch.PersonID.Value
	}
	if err := s.checkLinks(ctx, roomID, personID); err != nil {
		return nil, err
	}

	v, err := s.vehicles.Update(ctx, id, cols)
	if err != nil {
		return nil, plateConflict(notFound(err, ErrVehicleNotFound))
	}
	return v, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (*cascade.VehicleDeletion, error) {
	return s.deleter.DeleteVehicle(ctx, id)
}

func (s *Service) Checkin(ctx context.Context, id int64, slot *string) (*domain.Vehicle, error) {
	if slot != nil && strings.TrimSpace(*slot) == "" {
		slot = nil
	}
	v, err := s.vehicles.Checkin(ctx, id, slot)
	if err != nil {
		return nil, notFound(err, ErrVehicleNotFound)
	}
	s.log.Info("vehicle checked in", zap.Int64("vehicle_id", id))
	return v, nil
}

func (s *Service) Checkout(ctx context.Context, id int64, req CheckoutRequest) (*ledger.CheckoutResult, error) {
	return s.checkout.CheckoutVehicle(ctx, id, ledger.CheckoutInput{
		FeeName:   req.FeeName,
		UnitPrice: req.UnitPrice,
		Quantity:  req.Quantity,
	})
}

func (s *Service) InLot(ctx context.Context, f repository.LotFilter) ([]repository.VehicleView, error) {
	out, err := s.vehicles.InLot(ctx, f)
	if err != nil {
		return nil, database.Classify(err)
	}
	return out, nil
}

// Statistics reports PARKING fees created between from and to, inclusive.
// Both empty selects the last DefaultStatisticsDays days.
func (s *Service) Statistics(ctx context.Context, from, to string) (*repository.ParkingStatistics, error) {
	start, end, err := statisticsRange(from, to, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	stats, err := s.vehicles.Statistics(ctx, start, end)
	if err != nil {
		return nil, database.Classify(err)
	}
	return stats, nil
}

func statisticsRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	if from == "" && to == "" {
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return end.AddDate(0, 0, -(DefaultStatisticsDays - 1)), end, nil
	}
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}

	start, ok := domain.ParseDate(from)
	if !ok || start == nil {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	end, ok := domain.ParseDate(to)
	if !ok || end == nil {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	if time.Time(*start).After(time.Time(*end)) {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	return time.Time(*start), time.Time(*end), nil
}

func (s *Service) checkLinks(ctx context.Context, roomID, personID *int64) error {
	if roomID != nil {
		ok, err := s.directory.RoomExists(ctx, *roomID)
		if err != nil {
			return database.Classify(err)
		}
		if !ok {
			return ErrRoomNotFound
		}
	}
	if personID != nil {
		if _, err := s.directory.GetPerson(ctx, *personID); err != nil {
			return notFound(err, ErrPersonNotFound)
		}
	}
	return nil
}

func notFound(err error, sentinel error) error {
	if repository.IsNotFound(err) {
		return sentinel
	}
	return database.Classify(err)
}

func plateConflict(err error) error {
	if errors.Is(err, apperr.ErrConflict) {
		return ErrPlateTaken
	}
	return err
}
