// Package store persists match snapshots.
//
// A snapshot is encoded to an opaque JSON blob (cards as text such as
// "RED 7" or "BLUE WILD") and kept by a backend: a file on disk or a Redis
// key.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lox/uno-cli/internal/game"
)

// FormatVersion is written into every blob.
const FormatVersion = 1

var (
	// ErrNoSave is returned by Load when nothing has been saved yet.
	ErrNoSave = errors.New("store: no saved match")
	// ErrBadBlob is returned when a blob cannot be decoded.
	ErrBadBlob = errors.New("store: malformed save data")
)

// Store keeps the most recent snapshot.
type Store interface {
	Save(ctx context.Context, snap game.Snapshot) error
	Load(ctx context.Context) (game.Snapshot, error)
}

type blob struct {
	Version  int           `json:"version"`
	Snapshot game.Snapshot `json:"snapshot"`
}

// Encode turns a snapshot into an opaque blob.
func Encode(snap game.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(blob{Version: FormatVersion, Snapshot: snap}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// Decode restores a snapshot from a blob produced by Encode.
func Decode(data []byte) (game.Snapshot, error) {
	var b blob
	if err := json.Unmarshal(data, &b); err != nil {
		return game.Snapshot{}, fmt.Errorf("%w: %w", ErrBadBlob, err)
	}
	if b.Version != FormatVersion {
		return game.Snapshot{}, fmt.Errorf("%w: unsupported version %d", ErrBadBlob, b.Version)
	}
	if len(b.Snapshot.DiscardPile) == 0 {
		return game.Snapshot{}, fmt.Errorf("%w: empty discard pile", ErrBadBlob)
	}
	return b.Snapshot, nil
}
