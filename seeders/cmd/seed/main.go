package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"maintenance-system/pkg/config"
	"maintenance-system/pkg/database/postgresql"
	"maintenance-system/pkg/service"
	"maintenance-system/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	// --- Определяем флаги ---
	runDirectory := flag.Bool("directory", false, "Наполнить справочник: администраторы, лаборатории, сотрудники")
	runEquipment := flag.Bool("equipment", false, "Наполнить оборудование (требует -directory)")
	runTokens := flag.Bool("tokens", false, "Вывести JWT-токены разработчика для каждой роли")
	runAll := flag.Bool("all", false, "Запустить все сидеры (эквивалентно -directory -equipment -tokens)")

	flag.Parse()

	// Если ни один флаг не указан - показываем справку
	if !*runDirectory && !*runEquipment && !*runTokens && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -directory -equipment")
		log.Println("  go run ./seeders/cmd/seed -all")
		log.Println("======================================================")
		return
	}

	// Подключаемся к БД и применяем миграции
	ctx := context.Background()
	cfg := config.New()
	logger := zap.NewNop()

	dbPool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		log.Fatalf("❌ Не удалось подключиться к БД: %v", err)
	}
	defer dbPool.Close()

	if err := postgresql.Migrate(ctx, dbPool, logger); err != nil {
		log.Fatalf("❌ Не удалось применить миграции: %v", err)
	}

	log.Println("======================================================")

	// Запуск сидеров в правильном порядке
	if *runAll || *runDirectory {
		seeders.SeedDirectory(dbPool)
		log.Println("======================================================")
	}

	if *runAll || *runEquipment {
		seeders.SeedEquipment(dbPool)
		log.Println("======================================================")
	}

	if *runAll || *runTokens {
		seeders.PrintDevTokens(dbPool, service.NewJWTService(cfg.JWT.SecretKey), 24*time.Hour)
		log.Println("======================================================")
	}

	log.Println("✅ Все указанные операции сидирования успешно завершены.")
	log.Println("======================================================")
}
