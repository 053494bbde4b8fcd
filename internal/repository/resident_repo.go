package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"bluemoon/internal/domain"
)

type RoomFilter struct {
	Q        string
	Status   string
	RoomType string
}

// RoomView is a room with its head of household and occupant count.
type RoomView struct {
	domain.Room
	HeadName       *string `json:"head_name"`
	HeadPhone      *string `json:"head_phone"`
	OccupantsCount int64   `json:"occupants_count"`
}

const roomViewSelect = `r.*,
	(SELECT h.full_name FROM persons h WHERE h.room_id = r.id AND h.is_head = TRUE ORDER BY h.id LIMIT 1) AS head_name,
	(SELECT h.phone FROM persons h WHERE h.room_id = r.id AND h.is_head = TRUE ORDER BY h.id LIMIT 1) AS head_phone,
	(SELECT COUNT(*) FROM persons o WHERE o.room_id = r.id) AS occupants_count`

type ResidentRepository struct {
	db *gorm.DB
}

func NewResidentRepository(db *gorm.DB) *ResidentRepository {
	return &ResidentRepository{db: db}
}

func (r *ResidentRepository) ListRooms(ctx context.Context, f RoomFilter) ([]RoomView, error) {
	q := r.db.WithContext(ctx).Table("rooms r").Select(roomViewSelect)

	if s := strings.TrimSpace(f.Q); s != "" {
		p := likePattern(s)
		q = q.Where("(r.room_no LIKE ?"+likeEscape+
			" OR EXISTS (SELECT 1 FROM persons h WHERE h.room_id = r.id AND h.is_head = TRUE AND h.full_name LIKE ?"+likeEscape+"))", p, p)
	}
	if f.Status != "" {
		q = q.Where("r.status = ?", f.Status)
	}
	if f.RoomType != "" {
		q = q.Where("r.room_type = ?", f.RoomType)
	}

	rooms := []RoomView{}
	err := q.Order("r.room_no ASC").Scan(&rooms).Error
	return rooms, err
}

func (r *ResidentRepository) GetRoom(ctx context.Context, id int64) (*RoomView, error) {
	var room RoomView
	err := r.db.WithContext(ctx).
		Table("rooms r").
		Select(roomViewSelect).
		Where("r.id = ?", id).
		Take(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *ResidentRepository) RoomExists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, &domain.Room{}, id)
}

// CreateRoom inserts a room, and optionally its head of household and a user
// account linked to that person, in one transaction.
func (r *ResidentRepository) CreateRoom(ctx context.Context, room *domain.Room, head *domain.Person, user *domain.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		if head != nil {
			head.RoomID = room.ID
			head.IsHead = true
			if err := tx.Create(head).Error; err != nil {
				return err
			}
		}
		if user != nil {
			if head != nil {
				user.PersonID = &head.ID
			}
			if err := tx.Create(user).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ResidentRepository) UpdateRoom(ctx context.Context, id int64, cols map[string]any) (*domain.Room, error) {
	var room domain.Room
	if err := updateByID(ctx, r.db, &room, id, cols); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListPersons returns heads of household first, then by name. A nil roomID
// lists every person.
func (r *ResidentRepository) ListPersons(ctx context.Context, roomID *int64) ([]domain.Person, error) {
	q := r.db.WithContext(ctx).Model(&domain.Person{})
	if roomID != nil {
		q = q.Where("room_id = ?", *roomID)
	}

	persons := []domain.Person{}
	err := q.Order("is_head DESC").Order("full_name ASC").Order("id ASC").Find(&persons).Error
	return persons, err
}

func (r *ResidentRepository) GetPerson(ctx context.Context, id int64) (*domain.Person, error) {
	var p domain.Person
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ResidentRepository) CreatePerson(ctx context.Context, p *domain.Person) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ResidentRepository) UpdatePerson(ctx context.Context, id int64, cols map[string]any) (*domain.Person, error) {
	var p domain.Person
	if err := updateByID(ctx, r.db, &p, id, cols); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ResidentRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", username).Count(&n).Error
	return n > 0, err
}
