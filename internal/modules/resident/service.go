package resident

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"bluemoon/internal/apperr"
	"bluemoon/internal/cascade"
	"bluemoon/internal/database"
	"bluemoon/internal/domain"
	"bluemoon/internal/repository"
)

type Service struct {
	repo    ResidentStore
	deleter Deleter
	hasher  PasswordHasher
	log     *zap.Logger
}

func NewService(repo ResidentStore, deleter Deleter, hasher PasswordHasher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, deleter: deleter, hasher: hasher, log: log}
}

func (s *Service) ListRooms(ctx context.Context, f repository.RoomFilter) ([]repository.RoomView, error) {
	rooms, err := s.repo.ListRooms(ctx, f)
	if err != nil {
		return nil, database.Classify(err)
	}
	return rooms, nil
}

func (s *Service) GetRoom(ctx context.Context, id int64) (*repository.RoomView, error) {
	room, err := s.repo.GetRoom(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrRoomNotFound)
	}
	return room, nil
}

// CreateRoom stores the room together with its optional head of household and
// login account.
func (s *Service) CreateRoom(ctx context.Context, req CreateRoomRequest) (*CreateRoomResponse, error) {
	roomNo := strings.TrimSpace(req.RoomNo)
	if roomNo == "" {
		return nil, ErrRoomNoRequired
	}
	start, ok := domain.ParseDate(req.ContractStart)
	if !ok {
		return nil, ErrInvalidDate
	}
	end, ok := domain.ParseDate(req.ContractEnd)
	if !ok {
		return nil, ErrInvalidDate
	}

	room := &domain.Room{
		RoomNo:        roomNo,
		Building:      req.Building,
		Floor:         req.Floor,
		RoomType:      req.RoomType,
		AreaM2:        req.AreaM2,
		Status:        req.Status,
		ContractStart: start,
		ContractEnd:   end,
		Note:          req.Note,
	}

	var head *domain.Person
	if p := req.PersonData; p != nil && strings.TrimSpace(p.FullName) != "" {
		dob, ok := domain.ParseDate(p.DOB)
		if !ok {
			return nil, ErrInvalidDate
		}
		head = &domain.Person{
			FullName:       strings.TrimSpace(p.FullName),
			CCCD:           p.CCCD,
			Ethnicity:      p.Ethnicity,
			Occupation:     p.Occupation,
			DOB:            dob,
			Hometown:       p.Hometown,
			RelationToHead: p.RelationToHead,
			Phone:          p.Phone,
			Email:          p.Email,
		}
	}

	user, err := s.newAccount(req, head)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateRoom(ctx, room, head, user); err != nil {
		err = database.Classify(err)
		if errors.Is(err, apperr.ErrConflict) {
			return nil, s.conflictFor(ctx, user)
		}
		return nil, err
	}

	res := &CreateRoomResponse{RoomID: room.ID}
	if head != nil {
		res.PersonID = &head.ID
	}
	if user != nil {
		res.UserID = &user.ID
	}
	s.log.Info("room created", zap.Int64("room_id", room.ID), zap.String("room_no", room.RoomNo))
	return res, nil
}

// conflictFor names the unique column a failed room creation collided with.
func (s *Service) conflictFor(ctx context.Context, user *domain.User) error {
	if user != nil {
		if taken, err := s.repo.UsernameExists(ctx, user.Username); err == nil && taken {
			return ErrUsernameTaken
		}
	}
	return ErrRoomNoTaken
}

func (s *Service) newAccount(req CreateRoomRequest, head *domain.Person) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, nil
	}
	if req.Password == "" {
		return nil, ErrPasswordRequired
	}
	role, err := parseRole(req.Role)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperr.Infrastructure(err, false)
	}

	fullName := req.FullName
	if (fullName == nil || strings.TrimSpace(*fullName) == "") && head != nil {
		fullName = &head.FullName
	}
	return &domain.User{
		Username:     username,
		PasswordHash: hash,
		Phone:        req.Phone,
		Email:        req.Email,
		FullName:     fullName,
		Role:         role,
	}, nil
}

// parseRole accepts the canonical roles and the legacy "admin"/"user" values.
func parseRole(s string) (domain.UserRole, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "resident", "user":
		return domain.RoleResident, nil
	case "admin":
		return domain.RoleAdmin, nil
	}
	return "", ErrInvalidRole
}

func (s *Service) UpdateRoom(ctx context.Context, id int64, req UpdateRoomRequest) (*domain.Room, error) {
	patch, err := req.Patch()
	if err != nil {
		return nil, err
	}
	cols := patch.Columns()
	if len(cols) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	room, err := s.repo.UpdateRoom(ctx, id, cols)
	if err != nil {
		err = notFound(err, ErrRoomNotFound)
		if errors.Is(err, apperr.ErrConflict) {
			return nil, ErrRoomNoTaken
		}
		return nil, err
	}
	return room, nil
}

func (s *Service) DeleteRoom(ctx context.Context, id int64) (*cascade.RoomDeletion, error) {
	return s.deleter.DeleteRoom(ctx, id)
}

func (s *Service) ListPersons(ctx context.Context, roomID *int64) ([]domain.Person, error) {
	persons, err := s.repo.ListPersons(ctx, roomID)
	if err != nil {
		return nil, database.Classify(err)
	}
	return persons, nil
}

func (s *Service) GetPerson(ctx context.Context, id int64) (*domain.Person, error) {
	p, err := s.repo.GetPerson(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrPersonNotFound)
	}
	return p, nil
}

func (s *Service) CreatePerson(ctx context.Context, req CreatePersonRequest) (*domain.Person, error) {
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, ErrFullNameRequired
	}
	dob, ok := domain.ParseDate(req.DOB)
	if !ok {
		return nil, ErrInvalidDate
	}
	if err := s.requireRoom(ctx, req.RoomID); err != nil {
		return nil, err
	}

	p := &domain.Person{
		RoomID:         req.RoomID,
		FullName:       fullName,
		CCCD:           req.CCCD,
		Ethnicity:      req.Ethnicity,
		Occupation:     req.Occupation,
		DOB:            dob,
		Hometown:       req.Hometown,
		RelationToHead: req.RelationToHead,
		Phone:          req.Phone,
		Email:          req.Email,
		IsHead:         req.IsHead,
	}
	if err := s.repo.CreatePerson(ctx, p); err != nil {
		return nil, database.Classify(err)
	}
	return p, nil
}

func (s *Service) UpdatePerson(ctx context.Context, id int64, req UpdatePersonRequest) (*domain.Person, error) {
	patch, err := req.Patch()
	if err != nil {
		return nil, err
	}
	cols := patch.Columns()
	if len(cols) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	if patch.RoomID.Set {
		if err := s.requireRoom(ctx, patch.RoomID.Value); err != nil {
			return nil, err
		}
	}

	p, err := s.repo.UpdatePerson(ctx, id, cols)
	if err != nil {
		return nil, notFound(err, ErrPersonNotFound)
	}
	return p, nil
}

func (s *Service) DeletePerson(ctx context.Context, id int64) (*cascade.PersonDeletion, error) {
	return s.deleter.DeletePerson(ctx, id)
}

func (s *Service) BulkDeletePersons(ctx context.Context, ids []int64) (*cascade.PersonDeletion, error) {
	return s.deleter.BulkDeletePersons(ctx, ids)
}

func (s *Service) requireRoom(ctx context.Context, roomID int64) error {
	ok, err := s.repo.RoomExists(ctx, roomID)
	if err != nil {
		return database.Classify(err)
	}
	if !ok {
		return ErrRoomNotFound
	}
	return nil
}

// notFound maps a missing row to the given sentinel and classifies the rest.
func notFound(err error, sentinel error) error {
	if repository.IsNotFound(err) {
		return sentinel
	}
	return database.Classify(err)
}
