package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// JSONMap is a free-form JSON object stored in a JSONB column.
// Numbers are kept as json.Number so large integers survive a read/write cycle unchanged.
type JSONMap map[string]interface{}

// Value implements driver.Valuer. lib/pq needs the text form for jsonb parameters.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal json column: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for json column", src)
	}
	if len(raw) == 0 {
		*m = nil
		return nil
	}
	out, err := decodeJSONObject(raw)
	if err != nil {
		return fmt.Errorf("unmarshal json column: %w", err)
	}
	*m = out
	return nil
}

// UnmarshalJSON decodes request bodies with the same number handling as Scan.
func (m *JSONMap) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}
	out, err := decodeJSONObject(data)
	if err != nil {
		return err
	}
	*m = out
	return nil
}

func decodeJSONObject(raw []byte) (JSONMap, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	out := map[string]interface{}{}
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after json object")
	}
	return JSONMap(out), nil
}
