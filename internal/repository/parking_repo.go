package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bluemoon/internal/domain"
)

type VehicleFilter struct {
	Q             string
	RoomID        *int64
	ParkingStatus string
}

type LotFilter struct {
	Q      string
	RoomID *int64
}

type VehicleView struct {
	domain.Vehicle
	RoomNo    *string `json:"room_no"`
	OwnerName *string `json:"owner_name"`
}

type ParkingTotals struct {
	TotalFees       int64   `json:"total_fees"`
	TotalAmountDue  float64 `json:"total_amount_due"`
	TotalAmountPaid float64 `json:"total_amount_paid"`
}

type StatusTotals struct {
	Status     domain.FeeStatus `json:"status"`
	Count      int64            `json:"cnt"`
	AmountDue  float64          `json:"amount_due"`
	AmountPaid float64          `json:"amount_paid"`
}

type DayTotals struct {
	Day string `json:"day"`
	ParkingTotals
}

type ParkingStatistics struct {
	From     string         `json:"from"`
	To       string         `json:"to"`
	Summary  ParkingTotals  `json:"summary"`
	ByStatus []StatusTotals `json:"by_status"`
	ByDay    []DayTotals    `json:"by_day"`
}

type ParkingRepository struct {
	db *gorm.DB
}

func NewParkingRepository(db *gorm.DB) *ParkingRepository {
	return &ParkingRepository{db: db}
}

func (r *ParkingRepository) vehicles(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("vehicles v").
		Select("v.*, r.room_no, p.full_name AS owner_name").
		Joins("LEFT JOIN rooms r ON r.id = v.room_id").
		Joins("LEFT JOIN persons p ON p.id = v.person_id")
}

func (r *ParkingRepository) List(ctx context.Context, f VehicleFilter) ([]VehicleView, error) {
	q := r.vehicles(ctx)
	if f.RoomID != nil {
		q = q.Where("v.room_id = ?", *f.RoomID)
	}
	if f.ParkingStatus != "" {
		q = q.Where("v.parking_status = ?", f.ParkingStatus)
	}
	if s := strings.TrimSpace(f.Q); s != "" {
		p := likePattern(s)
		q = q.Where("(v.plate LIKE ?"+likeEscape+" OR v.brand LIKE ?"+likeEscape+" OR v.model LIKE ?"+likeEscape+")", p, p, p)
	}

	out := []VehicleView{}
	err := q.Order("v.created_at DESC").Order("v.id DESC").Scan(&out).Error
	return out, err
}

func (r *ParkingRepository) Get(ctx context.Context, id int64) (*VehicleView, error) {
	var v VehicleView
	if err := r.vehicles(ctx).Where("v.id = ?", id).Take(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ParkingRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, &domain.Vehicle{}, id)
}

func (r *ParkingRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *ParkingRepository) Update(ctx context.Context, id int64, cols map[string]any) (*domain.Vehicle, error) {
	var v domain.Vehicle
	if err := updateByID(ctx, r.db, &v, id, cols); err != nil {
		return nil, err
	}
	return &v, nil
}

// Checkin puts the vehicle in the lot and clears its last checkout time.
func (r *ParkingRepository) Checkin(ctx context.Context, id int64, slot *string) (*domain.Vehicle, error) {
	var v domain.Vehicle
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(&v).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Vehicle{}).Where("id = ?", id).Updates(map[string]any{
			"parking_status": domain.ParkingIn,
			"parking_slot":   slot,
			"last_checkin":   time.Now().UTC(),
			"last_checkout":  nil,
		}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Take(&v).Error
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// InLot lists vehicles currently parked, ordered by slot then plate.
func (r *ParkingRepository) InLot(ctx context.Context, f LotFilter) ([]VehicleView, error) {
	q := r.vehicles(ctx).Where("v.parking_status = ?", domain.ParkingIn)
	if f.RoomID != nil {
		q = q.Where("v.room_id = ?", *f.RoomID)
	}
	if s := strings.TrimSpace(f.Q); s != "" {
		p := likePattern(s)
		q = q.Where("(v.plate LIKE ?"+likeEscape+" OR p.full_name LIKE ?"+likeEscape+" OR r.room_no LIKE ?"+likeEscape+")", p, p, p)
	}

	out := []VehicleView{}
	err := q.Order("v.parking_slot ASC").Order("v.plate ASC").Scan(&out).Error
	return out, err
}

type parkingFeeRow struct {
	Status     domain.FeeStatus
	AmountDue  float64
	AmountPaid float64
	CreatedAt  time.Time
}

// Statistics aggregates PARKING fees created between from and to, both days
// inclusive. Grouping by day happens here rather than in SQL because date
// truncation differs between the supported databases.
func (r *ParkingRepository) Statistics(ctx context.Context, from, to time.Time) (*ParkingStatistics, error) {
	var rows []parkingFeeRow
	err := r.db.WithContext(ctx).
		Model(&domain.Fee{}).
		Select("status, amount_due, amount_paid, created_at").
		Where("fee_type = ?", domain.FeeTypeParking).
		Where("created_at >= ? AND created_at < ?", from, to.AddDate(0, 0, 1)).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &ParkingStatistics{
		From:     from.Format(domain.DateLayout),
		To:       to.Format(domain.DateLayout),
		ByStatus: []StatusTotals{},
		ByDay:    []DayTotals{},
	}
	byStatus := map[domain.FeeStatus]*StatusTotals{}
	byDay := map[string]*DayTotals{}

	for _, row := range rows {
		stats.Summary.add(row)

		st, ok := byStatus[row.Status]
		if !ok {
			st = &StatusTotals{Status: row.Status}
			byStatus[row.Status] = st
		}
		st.Count++
		st.AmountDue = domain.Round2(st.AmountDue + row.AmountDue)
		st.AmountPaid = domain.Round2(st.AmountPaid + row.AmountPaid)

		day := row.CreatedAt.UTC().Format(domain.DateLayout)
		dt, ok := byDay[day]
		if !ok {
			dt = &DayTotals{Day: day}
			byDay[day] = dt
		}
		dt.add(row)
	}

	for _, st := range byStatus {
		stats.ByStatus = append(stats.ByStatus, *st)
	}
	sort.Slice(stats.ByStatus, func(i, j int) bool { return stats.ByStatus[i].Status < stats.ByStatus[j].Status })

	for _, dt := range byDay {
		stats.ByDay = append(stats.ByDay, *dt)
	}
	sort.Slice(stats.ByDay, func(i, j int) bool { return stats.ByDay[i].Day < stats.ByDay[j].Day })

	return stats, nil
}

func (t *ParkingTotals) add(row parkingFeeRow) {
	t.TotalFees++
	t.TotalAmountDue = domain.Round2(t.TotalAmountDue + row.AmountDue)
	t.TotalAmountPaid = domain.Round2(t.TotalAmountPaid + row.AmountPaid)
}
