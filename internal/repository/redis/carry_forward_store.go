package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"gstreco/internal/domain"
	"gstreco/internal/port"
)

const carryForwardKeyPrefix = "gstreco:carry_forward"

type carryForwardStore struct {
	rdb goredis.UniversalClient
}

// NewCarryForwardStore creates a Redis-backed CarryForwardStore. Records are
// kept in one list per tenant, period and source.
func NewCarryForwardStore(rdb goredis.UniversalClient) port.CarryForwardStore {
	return &carryForwardStore{rdb: rdb}
}

func carryForwardKey(tenantID uuid.UUID, period domain.Period, source domain.Source) string {
	return fmt.Sprintf("%s:%s:%s:%s", carryForwardKeyPrefix, tenantID, period, source)
}

func (s *carryForwardStore) Load(ctx context.Context, tenantID uuid.UUID, period domain.Period) (*domain.CarryForwardBatch, error) {
	batch := &domain.CarryForwardBatch{}
	for _, src := range []domain.Source{domain.SourceGSTR2B, domain.SourceBooks} {
		items, err := s.rdb.LRange(ctx, carryForwardKey(tenantID, period, src), 0, -1).Result()
		if err != nil {
			return nil, fmt.Errorf("carryForwardStore.Load: %w", err)
		}
		for _, item := range items {
			var rec domain.InvoiceRecord
			if err := json.Unmarshal([]byte(item), &rec); err != nil {
				return nil, fmt.Errorf("carryForwardStore.Load decode: %w", err)
			}
			if src == domain.SourceGSTR2B {
				batch.GSTR2B = append(batch.GSTR2B, rec)
			} else {
				batch.Books = append(batch.Books, rec)
			}
		}
	}
	return batch, nil
}

func (s *carryForwardStore) Append(ctx context.Context, tenantID uuid.UUID, period domain.Period, batch domain.CarryForwardBatch) error {
	if batch.Empty() {
		return nil
	}
	gstr2b, err := encodeAll(batch.GSTR2B)
	if err != nil {
		return fmt.Errorf("carryForwardStore.Append encode: %w", err)
	}
	books, err := encodeAll(batch.Books)
	if err != nil {
		return fmt.Errorf("carryForwardStore.Append encode: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		if len(gstr2b) > 0 {
			pipe.RPush(ctx, carryForwardKey(tenantID, period, domain.SourceGSTR2B), gstr2b...)
		}
		if len(books) > 0 {
			pipe.RPush(ctx, carryForwardKey(tenantID, period, domain.SourceBooks), books...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("carryForwardStore.Append: %w", err)
	}
	return nil
}

func encodeAll(records []domain.InvoiceRecord) ([]interface{}, error) {
	out := make([]interface{}, 0, len(records))
	for i := range records {
		data, err := json.Marshal(records[i])
		if err != nil {
			return nil, err
		}
		out = append(out, string(data))
	}
	return out, nil
}
