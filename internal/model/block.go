package model

import (
	"fmt"
	"time"
)

// GenesisHash is the previous hash recorded by the first block of a chain.
const GenesisHash = "0000"

// TimestampLayout is the ISO-8601 layout blocks are hashed and stored with.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Block is one persisted ledger entry.
type Block struct {
	Number       uint64           `json:"block_number"`
	Timestamp    time.Time        `json:"timestamp"`
	Assessment   AssessmentResult `json:"assessment"`
	PreviousHash string           `json:"previous_hash"`
	CurrentHash  string           `json:"current_hash"`
}

// FormatTimestamp renders t in the block timestamp layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a block timestamp written by FormatTimestamp.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse block timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// ChainStatus is the verdict of a chain verification.
type ChainStatus string

var (
	ChainValid     ChainStatus = "VALID"
	ChainCorrupted ChainStatus = "CORRUPTED"
)

// CorruptionReason explains why a block failed verification.
type CorruptionReason string

var (
	PreviousHashMismatch CorruptionReason = "previous_hash_mismatch"
	HashMismatch         CorruptionReason = "hash_mismatch"
)

// Verification is the result of scanning the whole chain.
type Verification struct {
	Status              ChainStatus      `json:"status"`
	FirstBadBlockNumber *uint64          `json:"first_bad_block_number,omitempty"`
	Reason              CorruptionReason `json:"reason,omitempty"`
	BlocksChecked       int              `json:"blocks_checked"`
}
