package jobdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/domain/jobbus"
	"github.com/voxgate/voxgate/business/types/kind"
)

type jobDB struct {
	ID           uuid.UUID     `db:"job_id"`
	TenantID     uuid.UUID     `db:"tenant_id"`
	UserID       uuid.NullUUID `db:"user_id"`
	KeyID        uuid.NullUUID `db:"key_id"`
	Kind         string        `db:"kind"`
	Status       string        `db:"status"`
	InputRef     string        `db:"input_ref"`
	ResultRef    string        `db:"result_ref"`
	ErrorMessage string        `db:"error_message"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
	CompletedAt  sql.NullTime  `db:"completed_at"`
}

func toDBJob(bus jobbus.Job) jobDB {
	db := jobDB{
		ID:           bus.ID,
		TenantID:     bus.TenantID,
		Kind:         bus.Kind.String(),
		Status:       bus.Status.String(),
		InputRef:     bus.InputRef,
		ResultRef:    bus.ResultRef,
		ErrorMessage: bus.ErrorMessage,
		CreatedAt:    bus.CreatedAt.UTC(),
		UpdatedAt:    bus.UpdatedAt.UTC(),
	}

	if bus.UserID != nil {
		db.UserID = uuid.NullUUID{UUID: *bus.UserID, Valid: true}
	}

	if bus.KeyID != nil {
		db.KeyID = uuid.NullUUID{UUID: *bus.KeyID, Valid: true}
	}

	if bus.CompletedAt != nil {
		db.CompletedAt = sql.NullTime{Time: bus.CompletedAt.UTC(), Valid: true}
	}

	return db
}

func toBusJob(db jobDB) (jobbus.Job, error) {
	knd, err := kind.Parse(db.Kind)
	if err != nil {
		return jobbus.Job{}, fmt.Errorf("parse kind: %w", err)
	}

	status, err := jobbus.ParseStatus(db.Status)
	if err != nil {
		return jobbus.Job{}, fmt.Errorf("parse status: %w", err)
	}

	bus := jobbus.Job{
		ID:           db.ID,
		TenantID:     db.TenantID,
		Kind:         knd,
		Status:       status,
		InputRef:     db.InputRef,
		ResultRef:    db.ResultRef,
		ErrorMessage: db.ErrorMessage,
		CreatedAt:    db.CreatedAt.In(time.Local),
		UpdatedAt:    db.UpdatedAt.In(time.Local),
	}

	if db.UserID.Valid {
		id := db.UserID.UUID
		bus.UserID = &id
	}

	if db.KeyID.Valid {
		id := db.KeyID.UUID
		bus.KeyID = &id
	}

	if db.CompletedAt.Valid {
		t := db.CompletedAt.Time.In(time.Local)
		bus.CompletedAt = &t
	}

	return bus, nil
}

func toBusJobs(dbs []jobDB) ([]jobbus.Job, error) {
	bus := make([]jobbus.Job, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusJob(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
