package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebridge/practice-scheduling/internal/db"
)

var zones = []string{
	"America/New_York",
	"America/Chicago",
	"America/Denver",
	"America/Los_Angeles",
	"Europe/London",
	"Asia/Tokyo",
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	clinicianIDs, err := seedClinicians(context.Background(), pool, 25)
	if err != nil {
		log.Fatalf("seed clinicians: %v", err)
	}
	clientIDs, err := seedClients(context.Background(), pool, 500)
	if err != nil {
		log.Fatalf("seed clients: %v", err)
	}
	if err := seedAvailability(context.Background(), pool, clinicianIDs); err != nil {
		log.Fatalf("seed availability: %v", err)
	}
	if err := seedAppointments(context.Background(), pool, clinicianIDs, clientIDs, 2000); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

func seedClinicians(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d clinicians", count)

	specialties := []string{
		"Psychiatry",
		"Psychology",
		"Counseling",
		"Family Therapy",
		"Social Work",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Name()
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]
		zone := zones[gofakeit.Number(0, len(zones)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO clinicians (id, name, specialty, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, id, name, spec)
		if err != nil {
			return nil, err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO user_timezone_preferences (user_id, timezone, updated_at)
			VALUES ($1, $2, now())
		`, id, zone)
		if err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("clinicians seeded")
	return ids, nil
}

func seedClients(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d clients", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Name()
		email := gofakeit.Email()
		zone := zones[gofakeit.Number(0, len(zones)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO clients (id, name, email, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, id, name, email)
		if err != nil {
			return nil, err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO user_timezone_preferences (user_id, timezone, updated_at)
			VALUES ($1, $2, now())
		`, id, zone)
		if err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("clients seeded")
	return ids, nil
}

// seedAvailability gives every clinician a plausible working week: weekday
// windows in their own zone, plus the occasional single-day override.
func seedAvailability(ctx context.Context, pool *pgxpool.Pool, clinicianIDs []uuid.UUID) error {
	log.Printf("seeding availability for %d clinicians", len(clinicianIDs))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, clinicianID := range clinicianIDs {
		zone := zones[gofakeit.Number(0, len(zones)-1)]

		for day := 1; day <= 5; day++ { // Monday..Friday
			if gofakeit.Number(0, 4) == 0 {
				continue // a day off now and then
			}
			startHour := gofakeit.Number(8, 10)
			endHour := gofakeit.Number(15, 18)
			_, err := tx.Exec(ctx, `
				INSERT INTO availability_weekly_rules
					(id, clinician_id, day_of_week, start_time, end_time, zone, recurrence, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
			`, uuid.New(), clinicianID, day,
				twoDigit(startHour)+":00", twoDigit(endHour)+":00",
				zone, "FREQ=WEEKLY;BYDAY="+byday(day))
			if err != nil {
				return err
			}
		}

		if gofakeit.Number(0, 2) == 0 {
			date := time.Now().AddDate(0, 0, gofakeit.Number(1, 21)).Format("2006-01-02")
			_, err := tx.Exec(ctx, `
				INSERT INTO availability_overrides
					(id, clinician_id, date, start_time, end_time, zone, created_at)
				VALUES ($1, $2, $3::date, $4, $5, $6, now())
				ON CONFLICT (clinician_id, date) DO NOTHING
			`, uuid.New(), clinicianID, date, "12:00", "14:00", zone)
			if err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("availability seeded")
	return nil
}

func seedAppointments(ctx context.Context, pool *pgxpool.Pool, clinicianIDs, clientIDs []uuid.UUID, count int) error {
	log.Printf("seeding %d appointments", count)

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			clinicianID := clinicianIDs[gofakeit.Number(0, len(clinicianIDs)-1)]
			clientID := clientIDs[gofakeit.Number(0, len(clientIDs)-1)]
			zone := zones[gofakeit.Number(0, len(zones)-1)]

			startsAt := time.Now().UTC().
				AddDate(0, 0, gofakeit.Number(-30, 30)).
				Truncate(time.Hour).
				Add(time.Duration(gofakeit.Number(9, 17)) * time.Hour)
			endsAt := startsAt.Add(time.Duration(gofakeit.Number(1, 2)) * 30 * time.Minute)

			status := "scheduled"
			if startsAt.Before(time.Now().UTC()) {
				if gofakeit.Number(0, 9) == 0 {
					status = "cancelled"
				} else {
					status = "completed"
				}
			}

			_, err := tx.Exec(ctx, `
				INSERT INTO appointments
					(id, client_id, clinician_id, starts_at, ends_at, source_zone, type, status, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
			`, uuid.New(), clientID, clinicianID, startsAt, endsAt, zone, "therapy", status)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
	}

	log.Println("appointments seeded")
	return nil
}

func twoDigit(n int) string {
	return fmt.Sprintf("%02d", n)
}

func byday(day int) string {
	codes := [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}
	return codes[day]
}
