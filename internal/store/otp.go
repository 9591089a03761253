package store

import (
	"context"
	"sync"

	"github.com/minitodo/apiserver/types"
)

// OtpRepository stores every code ever issued. Records are append-only.
type OtpRepository struct {
	mu      sync.RWMutex
	records []types.OtpRecord
}

func NewOtpRepository() *OtpRepository {
	return &OtpRepository{}
}

func (r *OtpRepository) Create(ctx context.Context, record types.OtpRecord) (types.OtpRecord, error) {
	if err := ctx.Err(); err != nil {
		return types.OtpRecord{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return record, nil
}

// Find returns the earliest record issued to email with the given code.
func (r *OtpRepository) Find(ctx context.Context, email string, code int) (types.OtpRecord, error) {
	if err := ctx.Err(); err != nil {
		return types.OtpRecord{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, record := range r.records {
		if record.Email == email && record.Code == code {
			return record, nil
		}
	}
	return types.OtpRecord{}, ErrNotFound
}
