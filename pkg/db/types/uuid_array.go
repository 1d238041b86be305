// Package dbtypes holds column types gorm cannot map on its own.
package dbtypes

import (
	"database/sql/driver"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UUIDArray maps a Postgres uuid[] column. NULL scans as an empty array.
type UUIDArray []uuid.UUID

func (a *UUIDArray) Scan(src any) error {
	var raw pq.StringArray
	if err := raw.Scan(src); err != nil {
		return fmt.Errorf("scan uuid[]: %w", err)
	}
	ids := make(UUIDArray, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return fmt.Errorf("scan uuid[] element %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	*a = ids
	return nil
}

func (a UUIDArray) Value() (driver.Value, error) {
	raw := make(pq.StringArray, len(a))
	for i, id := range a {
		raw[i] = id.String()
	}
	return raw.Value()
}

// Contains reports whether id is in the array.
func (a UUIDArray) Contains(id uuid.UUID) bool {
	return slices.Contains(a, id)
}
