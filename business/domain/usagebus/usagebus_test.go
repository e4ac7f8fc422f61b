package usagebus_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/domain/usagebus"
	"github.com/voxgate/voxgate/business/sdk/order"
	"github.com/voxgate/voxgate/business/sdk/page"
	"github.com/voxgate/voxgate/business/sdk/sqldb"
	"github.com/voxgate/voxgate/business/types/kind"
)

type fakeUsageStore struct {
	records []usagebus.Record
	failing bool
}

func (s *fakeUsageStore) NewWithTx(tx sqldb.CommitRollbacker) (usagebus.Storer, error) {
	return s, nil
}

func (s *fakeUsageStore) Create(ctx context.Context, rec usagebus.Record) error {
	if s.failing {
		return errors.New("storage fault")
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeUsageStore) Query(ctx context.Context, filter usagebus.QueryFilter, orderBy order.By, page page.Page) ([]usagebus.Record, error) {
	return s.records, nil
}

func (s *fakeUsageStore) Count(ctx context.Context, filter usagebus.QueryFilter) (int, error) {
	return len(s.records), nil
}

func (s *fakeUsageStore) SumUnits(ctx context.Context, filter usagebus.QueryFilter) (float64, error) {
	var total float64
	for _, rec := range s.records {
		total += rec.Units
	}
	return total, nil
}

func TestAppend(t *testing.T) {
	store := &fakeUsageStore{}
	core := usagebus.NewCore(store)
	ctx := context.Background()

	keyID := uuid.New()
	nr := usagebus.NewRecord{
		TenantID: uuid.New(),
		KeyID:    &keyID,
		JobID:    uuid.New(),
		Kind:     kind.Synthesis,
		Units:    128,
		Metadata: map[string]string{"language": "en"},
	}

	rec, err := core.Append(ctx, nr)
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if len(store.records) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(store.records))
	}

	diff := cmp.Diff(rec, store.records[0], cmpopts.IgnoreFields(usagebus.Record{}, "ID", "CreatedAt"))
	if diff != "" {
		t.Errorf("returned and stored record differ:\n%s", diff)
	}

	if rec.ID == uuid.Nil {
		t.Error("record should be assigned an id")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("record should carry a creation time")
	}
}

func TestAppend_NegativeUnits(t *testing.T) {
	store := &fakeUsageStore{}
	core := usagebus.NewCore(store)

	_, err := core.Append(context.Background(), usagebus.NewRecord{
		TenantID: uuid.New(),
		JobID:    uuid.New(),
		Kind:     kind.Recognition,
		Units:    -1,
	})
	if !errors.Is(err, usagebus.ErrNegativeUnits) {
		t.Fatalf("expected ErrNegativeUnits, got %v", err)
	}

	if len(store.records) != 0 {
		t.Error("nothing should be stored on rejection")
	}
}

func TestAppend_ZeroUnits(t *testing.T) {
	store := &fakeUsageStore{}
	core := usagebus.NewCore(store)

	// Zero is a legitimate billable amount (empty audio, no duration data).
	if _, err := core.Append(context.Background(), usagebus.NewRecord{
		TenantID: uuid.New(),
		JobID:    uuid.New(),
		Kind:     kind.Recognition,
		Units:    0,
	}); err != nil {
		t.Fatalf("zero units should be accepted: %v", err)
	}
}

func TestAppend_StorageFault(t *testing.T) {
	store := &fakeUsageStore{failing: true}
	core := usagebus.NewCore(store)

	if _, err := core.Append(context.Background(), usagebus.NewRecord{
		TenantID: uuid.New(),
		JobID:    uuid.New(),
		Kind:     kind.Synthesis,
		Units:    10,
	}); err == nil {
		t.Fatal("storage fault should propagate")
	}
}
