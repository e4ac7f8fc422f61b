package usagedb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/domain/usagebus"
	"github.com/voxgate/voxgate/business/types/kind"
)

type recordDB struct {
	ID        uuid.UUID      `db:"record_id"`
	TenantID  uuid.UUID      `db:"tenant_id"`
	KeyID     uuid.NullUUID  `db:"key_id"`
	JobID     uuid.UUID      `db:"job_id"`
	Kind      string         `db:"kind"`
	Units     float64        `db:"units"`
	Metadata  sql.NullString `db:"metadata"`
	CreatedAt time.Time      `db:"created_at"`
}

func toDBRecord(bus usagebus.Record) (recordDB, error) {
	db := recordDB{
		ID:        bus.ID,
		TenantID:  bus.TenantID,
		JobID:     bus.JobID,
		Kind:      bus.Kind.String(),
		Units:     bus.Units,
		CreatedAt: bus.CreatedAt.UTC(),
	}

	if bus.KeyID != nil {
		db.KeyID = uuid.NullUUID{UUID: *bus.KeyID, Valid: true}
	}

	if len(bus.Metadata) > 0 {
		meta, err := json.Marshal(bus.Metadata)
		if err != nil {
			return recordDB{}, fmt.Errorf("marshal metadata: %w", err)
		}
		db.Metadata = sql.NullString{String: string(meta), Valid: true}
	}

	return db, nil
}

func toBusRecord(db recordDB) (usagebus.Record, error) {
	knd, err := kind.Parse(db.Kind)
	if err != nil {
		return usagebus.Record{}, fmt.Errorf("parse kind: %w", err)
	}

	bus := usagebus.Record{
		ID:        db.ID,
		TenantID:  db.TenantID,
		JobID:     db.JobID,
		Kind:      knd,
		Units:     db.Units,
		CreatedAt: db.CreatedAt.In(time.Local),
	}

	if db.KeyID.Valid {
		id := db.KeyID.UUID
		bus.KeyID = &id
	}

	if db.Metadata.Valid && db.Metadata.String != "" {
		if err := json.Unmarshal([]byte(db.Metadata.String), &bus.Metadata); err != nil {
			return usagebus.Record{}, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}

	return bus, nil
}

func toBusRecords(dbs []recordDB) ([]usagebus.Record, error) {
	bus := make([]usagebus.Record, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusRecord(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
