package cache

import (
	"context"
	"errors"
	"time"
)

// Layered is a two-level cache: L1 in process, L2 shared (Redis).
type Layered struct {
	l1  *TTLCache
	l2  BytesCache
	ttl time.Duration
}

// NewLayered keeps L1 entries for at most l1TTL so other processes' writes to L2 become visible.
func NewLayered(l1 *TTLCache, l2 BytesCache, l1TTL time.Duration) *Layered {
	return &Layered{l1: l1, l2: l2, ttl: l1TTL}
}

func (lc *Layered) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	if b, ok, _ := lc.l1.GetBytes(ctx, key); ok {
		return b, true, nil
	}
	b, ok, err := lc.l2.GetBytes(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = lc.l1.SetBytes(ctx, key, b, lc.ttl)
	return b, true, nil
}

// SetBytes writes through: L2 first, then L1.
func (lc *Layered) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := lc.l2.SetBytes(ctx, key, value, ttl); err != nil {
		return err
	}
	l1TTL := ttl
	if lc.ttl > 0 && (l1TTL <= 0 || lc.ttl < l1TTL) {
		l1TTL = lc.ttl
	}
	return lc.l1.SetBytes(ctx, key, value, l1TTL)
}

func (lc *Layered) Close() error {
	return errors.Join(lc.l1.Close(), lc.l2.Close())
}
