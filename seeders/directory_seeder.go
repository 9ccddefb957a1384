package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// seedDirectory наполняет справочник: администраторы, лаборатории, сотрудники и их контакты.
func seedDirectory(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение справочника лабораторий и сотрудников...")

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE TABLE lab_incharges, lab_assistants, staff, labs, admins RESTART IDENTITY CASCADE"); err != nil {
		return err
	}

	// --- ШАГ 1: Администраторы ---
	adminIDs := make(map[string]uint64, len(adminsData))
	for _, a := range adminsData {
		var id uint64
		err := tx.QueryRow(ctx, `INSERT INTO admins (name, email) VALUES ($1, $2) RETURNING id`, a.Name, a.Email).Scan(&id)
		if err != nil {
			return fmt.Errorf("ошибка вставки администратора '%s': %w", a.Email, err)
		}
		adminIDs[a.Email] = id
	}

	// --- ШАГ 2: Лаборатории ---
	for _, l := range labsData {
		var adminID *uint64
		if id, ok := adminIDs[l.AdminEmail]; ok {
			adminID = &id
		} else {
			log.Printf("ПРЕДУПРЕЖДЕНИЕ: Администратор '%s' не найден, лаборатория '%s' без администратора.", l.AdminEmail, l.Name)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO labs (name, admin_id) VALUES ($1, $2)`, l.Name, adminID); err != nil {
			return fmt.Errorf("ошибка вставки лаборатории '%s': %w", l.Name, err)
		}
	}

	labsMap, err := mapAllIDsByName(ctx, tx, "labs")
	if err != nil {
		return fmt.Errorf("ошибка получения ID лабораторий: %w", err)
	}

	// --- ШАГ 3: Сотрудники и контакты по ролям ---
	for _, s := range staffData {
		labID, ok := labsMap[s.LabName]
		if !ok {
			log.Printf("ПРЕДУПРЕЖДЕНИЕ: Лаборатория '%s' не найдена, пропускаем сотрудника '%s'.", s.LabName, s.Name)
			continue
		}
		var staffID uint64
		if err := tx.QueryRow(ctx, `INSERT INTO staff (lab_id, name) VALUES ($1, $2) RETURNING id`, labID, s.Name).Scan(&staffID); err != nil {
			return fmt.Errorf("ошибка вставки сотрудника '%s': %w", s.Name, err)
		}
		if s.AssistantEmail != "" {
			if _, err := tx.Exec(ctx, `INSERT INTO lab_assistants (staff_id, name, email, notify_email) VALUES ($1, $2, $3, $4)`,
				staffID, s.Name, s.AssistantEmail, s.NotifyByEmail); err != nil {
				return err
			}
		}
		if s.InChargeEmail != "" {
			if _, err := tx.Exec(ctx, `INSERT INTO lab_incharges (staff_id, name, email, notify_email) VALUES ($1, $2, $3, $4)`,
				staffID, s.LabName+" In-charge", s.InChargeEmail, s.NotifyByEmail); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

// --- Вспомогательные функции ---
func mapAllIDsByName(ctx context.Context, tx pgx.Tx, table string) (map[string]uint64, error) {
	rows, err := tx.Query(ctx, fmt.Sprintf("SELECT id, name FROM %s", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]uint64)
	for rows.Next() {
		var id uint64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		result[name] = id
	}
	return result, rows.Err()
}
