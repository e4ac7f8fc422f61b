package voicedb

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/domain/voicebus"
	"github.com/voxgate/voxgate/business/types/name"
)

type voiceDB struct {
	ID        uuid.UUID     `db:"voice_id"`
	TenantID  uuid.NullUUID `db:"tenant_id"`
	Name      string        `db:"name"`
	Language  string        `db:"language"`
	Gender    string        `db:"gender"`
	Cloned    bool          `db:"cloned"`
	SampleRef string        `db:"sample_ref"`
	CreatedAt time.Time     `db:"created_at"`
}

func toDBVoice(bus voicebus.Voice) voiceDB {
	db := voiceDB{
		ID:        bus.ID,
		Name:      bus.Name.String(),
		Language:  bus.Language,
		Gender:    bus.Gender,
		Cloned:    bus.Cloned,
		SampleRef: bus.SampleRef,
		CreatedAt: bus.CreatedAt.UTC(),
	}

	if bus.TenantID != nil {
		db.TenantID = uuid.NullUUID{UUID: *bus.TenantID, Valid: true}
	}

	return db
}

func toBusVoice(db voiceDB) (voicebus.Voice, error) {
	nme, err := name.Parse(db.Name)
	if err != nil {
		return voicebus.Voice{}, fmt.Errorf("parse name: %w", err)
	}

	bus := voicebus.Voice{
		ID:        db.ID,
		Name:      nme,
		Language:  db.Language,
		Gender:    db.Gender,
		Cloned:    db.Cloned,
		SampleRef: db.SampleRef,
		CreatedAt: db.CreatedAt.In(time.Local),
	}

	if db.TenantID.Valid {
		id := db.TenantID.UUID
		bus.TenantID = &id
	}

	return bus, nil
}

func toBusVoices(dbs []voiceDB) ([]voicebus.Voice, error) {
	bus := make([]voicebus.Voice, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusVoice(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
