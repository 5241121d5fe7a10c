package postgres

import (
	"database/sql/driver"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

// textArray carries project tags to and from a TEXT[] column.
//
// Through database/sql the driver only ever sees driver.Value types, so the
// slice is encoded to the Postgres array literal ({go,"web dev"}) and decoded
// back with pgtype's array codec. pgx sends string arguments in text format,
// which the server parses as the column's array type.
//
// A pgtype.Map memoizes plans in unguarded maps, so each call builds its own
// instead of sharing one across requests.
type textArray []string

func (a textArray) Value() (driver.Value, error) {
	tags := []string(a)
	if tags == nil {
		tags = []string{}
	}
	buf, err := pgtype.NewMap().Encode(pgtype.TextArrayOID, pgtype.TextFormatCode, tags, nil)
	if err != nil {
		return nil, fmt.Errorf("postgres: encoding tags: %w", err)
	}
	return string(buf), nil
}

func (a *textArray) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = textArray{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("postgres: cannot scan %T into tags", src)
	}

	var tags []string
	if err := pgtype.NewMap().Scan(pgtype.TextArrayOID, pgtype.TextFormatCode, raw, &tags); err != nil {
		return fmt.Errorf("postgres: decoding tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	*a = tags
	return nil
}
