package resident

import (
	"context"

	"bluemoon/internal/cascade"
	"bluemoon/internal/domain"
	"bluemoon/internal/repository"
)

// ResidentStore is the repository surface the resident service uses.
type ResidentStore interface {
	ListRooms(ctx context.Context, f repository.RoomFilter) ([]repository.RoomView, error)
	GetRoom(ctx context.Context, id int64) (*repository.RoomView, error)
	RoomExists(ctx context.Context, id int64) (bool, error)
	CreateRoom(ctx context.Context, room *domain.Room, head *domain.Person, user *domain.User) error
	UpdateRoom(ctx context.Context, id int64, cols map[string]any) (*domain.Room, error)
	ListPersons(ctx context.Context, roomID *int64) ([]domain.Person, error)
	GetPerson(ctx context.Context, id int64) (*domain.Person, error)
	CreatePerson(ctx context.Context, p *domain.Person) error
	UpdatePerson(ctx context.Context, id int64, cols map[string]any) (*domain.Person, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// Deleter is implemented by the cascade engine.
type Deleter interface {
	DeleteRoom(ctx context.Context, roomID int64) (*cascade.RoomDeletion, error)
	DeletePerson(ctx context.Context, id int64) (*cascade.PersonDeletion, error)
	BulkDeletePersons(ctx context.Context, ids []int64) (*cascade.PersonDeletion, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}
