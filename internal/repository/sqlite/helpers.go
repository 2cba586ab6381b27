package sqlite

import (
	"database/sql"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"shipperizer/internal/codec"
	"shipperizer/internal/domain"
)

// snapshotDigest fingerprints the canonical encoding of a snapshot
func snapshotDigest(snap domain.Snapshot) (string, error) {
	data, err := codec.Marshal(snap)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// boolToInt converts a bool to the 0/1 integer SQLite stores
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
