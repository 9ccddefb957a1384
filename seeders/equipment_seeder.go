package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

func seedEquipments(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'equipments'...")

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE TABLE equipments RESTART IDENTITY CASCADE"); err != nil {
		return err
	}

	labsMap, err := mapAllIDsByName(ctx, tx, "labs")
	if err != nil {
		return fmt.Errorf("ошибка получения ID лабораторий: %w", err)
	}

	query := `INSERT INTO equipments (lab_id, equipment_type, equipment_code, equipment_name, company_name, specification, location, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, e := range equipmentsData {
		labID, ok := labsMap[e.LabName]
		if !ok {
			log.Printf("ПРЕДУПРЕЖДЕНИЕ: Лаборатория '%s' не найдена, пропускаем оборудование '%s'.", e.LabName, e.Name)
			continue
		}
		code, err := e.Status.Code()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, query, labID, e.Type, e.Code, e.Name, e.Company, e.Specification, e.Location, code); err != nil {
			log.Printf("Ошибка при вставке оборудования '%s': %v", e.Name, err)
			return err
		}
	}

	return tx.Commit(ctx)
}
