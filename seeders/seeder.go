package seeders

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"maintenance-system/pkg/constants"
	"maintenance-system/pkg/service"
	"maintenance-system/pkg/types"
)

// SeedDirectory наполняет справочник лабораторий и сотрудников.
func SeedDirectory(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения справочника...")

	if err := seedDirectory(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения справочника: %v", err)
	}
	log.Println("✅ Наполнение справочника завершено!")
}

// SeedEquipment зависит от справочника лабораторий.
func SeedEquipment(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения оборудования...")

	if err := seedEquipments(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения оборудования: %v", err)
	}
	log.Println("✅ Наполнение оборудования завершено!")
}

// PrintDevTokens выводит токены для ручной проверки API: по одному на роль для первого сотрудника.
func PrintDevTokens(db *pgxpool.Pool, jwtSvc service.JWTService, ttl time.Duration) {
	ctx := context.Background()

	var staffID uint64
	if err := db.QueryRow(ctx, `SELECT COALESCE(MIN(id), 0) FROM staff`).Scan(&staffID); err != nil || staffID == 0 {
		log.Fatalf("❌ Сотрудники не найдены, сначала запустите -directory: %v", err)
	}

	for _, actor := range []types.Actor{
		{Role: constants.RoleLabAssistant, StaffID: staffID},
		{Role: constants.RoleLabInCharge, StaffID: staffID},
		{Role: constants.RoleAdmin, StaffID: staffID},
	} {
		token, err := jwtSvc.GenerateToken(actor, ttl)
		if err != nil {
			log.Fatalf("❌ Ошибка выпуска токена: %v", err)
		}
		log.Printf("🔑 %s (staff_id=%d): %s", actor.Role, actor.StaffID, token)
	}
}
