package parking

import (
	"context"
	"time"

	"bluemoon/internal/cascade"
	"bluemoon/internal/domain"
	"bluemoon/internal/ledger"
	"bluemoon/internal/repository"
)

type VehicleStore interface {
	List(ctx context.Context, f repository.VehicleFilter) ([]repository.VehicleView, error)
	Get(ctx context.Context, id int64) (*repository.VehicleView, error)
	Create(ctx context.Context, v *domain.Vehicle) error
	Update(ctx context.Context, id int64, cols map[string]any) (*domain.Vehicle, error)
	Checkin(ctx context.Context, id int64, slot *string) (*domain.Vehicle, error)
	InLot(ctx context.Context, f repository.LotFilter) ([]repository.VehicleView, error)
	Statistics(ctx context.Context, from, to time.Time) (*repository.ParkingStatistics, error)
}

// Directory resolves the rooms and persons a vehicle points at.
type Directory interface {
	RoomExists(ctx context.Context, id int64) (bool, error)
	GetPerson(ctx context.Context, id int64) (*domain.Person, error)
}

type Checkout interface {
	CheckoutVehicle(ctx context.Context, vehicleID int64, in ledger.CheckoutInput) (*ledger.CheckoutResult, error)
}

type Deleter interface {
	DeleteVehicle(ctx context.Context, vehicleID int64) (*cascade.VehicleDeletion, error)
}
