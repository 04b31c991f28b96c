// Package persist snapshots the entity store and navigation state into a
// durable key-value store. Durability is best-effort: write failures degrade
// to warnings and unreadable snapshots load as the empty baseline, so the
// program always starts and the in-memory state stays authoritative.
package persist

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/amarquez/folio/internal/entity"
	"github.com/amarquez/folio/internal/nav"
)

const snapshotKey = "folio-state"

// KV is the durable storage contract. Get errors for missing keys.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

// Snapshot bundles everything the gateway persists.
type Snapshot struct {
	Entities entity.Snapshot `json:"entities"`
	Nav      nav.Snapshot    `json:"nav"`
}

// Gateway serializes snapshots to a KV store.
type Gateway struct {
	kv     KV
	logger *zap.Logger
}

// NewGateway wraps the store. A nil logger falls back to a nop logger.
func NewGateway(kv KV, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{kv: kv, logger: logger}
}

// Save writes the snapshot. Storage failures are logged and returned so the
// caller can surface a warning; they must never abort the triggering
// operation.
func (g *Gateway) Save(snapshot Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		// Well-formed entities always marshal; this guards foreign Snapshot values.
		g.logger.Warn("snapshot encode failed", zap.Error(err))
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := g.kv.Set(snapshotKey, data); err != nil {
		g.logger.Warn("snapshot write failed", zap.Error(err))
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load returns the last snapshot, or the empty baseline when none exists or
// the stored bytes do not decode. Missing fields keep their zero defaults:
// no documents, no sessions, navigation at Home.
func (g *Gateway) Load() Snapshot {
	data, err := g.kv.Get(snapshotKey)
	if err != nil {
		g.logger.Info("no snapshot found, starting cold", zap.Error(err))
		return Snapshot{}
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		g.logger.Warn("snapshot decode failed, starting cold", zap.Error(err))
		return Snapshot{}
	}
	return snapshot
}

// Reset removes the stored snapshot.
func (g *Gateway) Reset() error {
	if err := g.kv.Remove(snapshotKey); err != nil {
		return fmt.Errorf("remove snapshot: %w", err)
	}
	return nil
}
