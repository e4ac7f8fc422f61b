package keydb

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/domain/keybus"
	"github.com/voxgate/voxgate/business/types/name"
	"github.com/voxgate/voxgate/business/types/scope"
)

type keyDB struct {
	ID              uuid.UUID    `db:"key_id"`
	TenantID        uuid.UUID    `db:"tenant_id"`
	Label           string       `db:"label"`
	Digest          []byte       `db:"digest"`
	Prefix          string       `db:"prefix"`
	Scopes          string       `db:"scopes"`
	RateLimitPerMin int          `db:"rate_limit_per_min"`
	CreatedAt       time.Time    `db:"created_at"`
	LastUsedAt      sql.NullTime `db:"last_used_at"`
	RevokedAt       sql.NullTime `db:"revoked_at"`
}

func toDBKey(bus keybus.Key) keyDB {
	db := keyDB{
		ID:              bus.ID,
		TenantID:        bus.TenantID,
		Label:           bus.Label.String(),
		Digest:          bus.Digest,
		Prefix:          bus.Prefix,
		Scopes:          strings.Join(scope.ToStrings(bus.Scopes), ","),
		RateLimitPerMin: bus.RateLimitPerMin,
		CreatedAt:       bus.CreatedAt.UTC(),
	}

	if bus.LastUsedAt != nil {
		db.LastUsedAt = sql.NullTime{Time: bus.LastUsedAt.UTC(), Valid: true}
	}

	if bus.RevokedAt != nil {
		db.RevokedAt = sql.NullTime{Time: bus.RevokedAt.UTC(), Valid: true}
	}

	return db
}

func toBusKey(db keyDB) (keybus.Key, error) {
	label, err := name.Parse(db.Label)
	if err != nil {
		return keybus.Key{}, fmt.Errorf("parse label: %w", err)
	}

	var scopes []scope.Scope
	if db.Scopes != "" {
		scopes, err = scope.ParseMany(strings.Split(db.Scopes, ","))
		if err != nil {
			return keybus.Key{}, fmt.Errorf("parse scopes: %w", err)
		}
	}

	bus := keybus.Key{
		ID:              db.ID,
		TenantID:        db.TenantID,
		Label:           label,
		Digest:          db.Digest,
		Prefix:          db.Prefix,
		Scopes:          scopes,
		RateLimitPerMin: db.RateLimitPerMin,
		CreatedAt:       db.CreatedAt.In(time.Local),
	}

	if db.LastUsedAt.Valid {
		t := db.LastUsedAt.Time.In(time.Local)
		bus.LastUsedAt = &t
	}

	if db.RevokedAt.Valid {
		t := db.RevokedAt.Time.In(time.Local)
		bus.RevokedAt = &t
	}

	return bus, nil
}

func toBusKeys(dbs []keyDB) ([]keybus.Key, error) {
	bus := make([]keybus.Key, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusKey(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
