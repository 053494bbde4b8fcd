package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bluemoon/internal/config"
	"bluemoon/internal/database"
	"bluemoon/internal/domain"
	"bluemoon/internal/ledger"
	"bluemoon/internal/logger"
	"bluemoon/internal/pkg/password"
)

type seedRoom struct {
	no       string
	floor    int
	area     float64
	head     string
	members  []string
	plates   []string
	resident string
}

var rooms = []seedRoom{
	{no: "A-101", floor: 1, area: 68.5, head: "Nguyễn Văn An", members: []string{"Trần Thị Bình"}, plates: []string{"29B1-123.45"}, resident: "a101"},
	{no: "A-102", floor: 1, area: 72, head: "Lê Minh Châu", plates: []string{"30A-678.90", "29C1-555.12"}},
	{no: "B-201", floor: 2, area: 90, head: "Phạm Quốc Dũng", members: []string{"Phạm Thu Hà", "Phạm Gia Huy"}, resident: "b201"},
	{no: "B-202", floor: 2, area: 55},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel, "console", "bluemoon-seed")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(database.Options{DSN: cfg.Database.URL}, log)
	if err != nil {
		log.Fatal("database connect failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}

	scheme, err := password.ParseScheme(cfg.PasswordScheme)
	if err != nil {
		log.Fatal("password scheme", zap.Error(err))
	}
	hasher := password.NewHasher(scheme)

	log.Info("cleaning old data")
	if err := clean(db); err != nil {
		log.Fatal("cleanup failed", zap.Error(err))
	}

	ctx := context.Background()
	engine := ledger.NewEngine(db, nil, log)

	admin := domain.User{Username: "admin", Role: domain.RoleAdmin, FullName: str("Ban Quản Lý")}
	if admin.PasswordHash, err = hasher.Hash("admin123"); err != nil {
		log.Fatal("hash failed", zap.Error(err))
	}
	must(log, db.Create(&admin).Error)

	for _, r := range rooms {
		room := domain.Room{RoomNo: r.no, Floor: &r.floor, AreaM2: &r.area, Building: str("BlueMoon"), Status: str("OCCUPIED")}
		if r.head == "" {
			room.Status = str("EMPTY")
		}
		must(log, db.Create(&room).Error)

		var head *domain.Person
		if r.head != "" {
			head = &domain.Person{RoomID: room.ID, FullName: r.head, IsHead: true, RelationToHead: str("Chủ hộ")}
			must(log, db.Create(head).Error)
		}
		for _, name := range r.members {
			must(log, db.Create(&domain.Person{RoomID: room.ID, FullName: name, RelationToHead: str("Thành viên")}).Error)
		}
		if r.resident != "" && head != nil {
			user := domain.User{Username: r.resident, Role: domain.RoleResident, PersonID: &head.ID, FullName: &head.FullName}
			if user.PasswordHash, err = hasher.Hash("resident123"); err != nil {
				log.Fatal("hash failed", zap.Error(err))
			}
			must(log, db.Create(&user).Error)
		}

		for _, plate := range r.plates {
			v := domain.Vehicle{RoomID: room.ID, Plate: plate, VehicleType: domain.DefaultVehicleType}
			if head != nil {
				v.PersonID = &head.ID
			}
			must(log, db.Create(&v).Error)
		}

		if r.head == "" {
			continue
		}
		fee, err := engine.CreateFee(ctx, ledger.NewFee{
			RoomID:    &room.ID,
			FeeName:   "Phí quản lý tháng 10",
			FeeType:   domain.FeeTypeRoom,
			Period:    str("2026-10"),
			Quantity:  &r.area,
			UnitPrice: num(7000),
		})
		must(log, err)
		if r.no == "A-101" {
			_, err = engine.RecordPayment(ctx, ledger.PaymentInput{
				FeeID:        fee.ID,
				Amount:       fee.AmountDue / 2,
				Method:       "CASH",
				ActingUserID: &admin.ID,
			})
			must(log, err)
		}
	}

	log.Info("seed completed",
		zap.String("admin", "admin / admin123"),
		zap.String("residents", "a101, b201 / resident123"),
	)
}

func clean(db *gorm.DB) error {
	all := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{
		&domain.Payment{},
		&domain.Fee{},
		&domain.Vehicle{},
		&domain.User{},
		&domain.Person{},
		&domain.Room{},
	} {
		if err := all.Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func must(log *zap.Logger, err error) {
	if err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
}

func str(s string) *string { return &s }

func num(f float64) *float64 { return &f }
