// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid generates the opaque identifiers used outside the relational keys:
ingestion run ids and ingestion lock tokens.

Values are UUIDv7, so run ids sort by start time in logs.
*/
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// It panics only when the system entropy source fails, which leaves the
// process unable to issue lock tokens at all.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}
	return id.String()
}
