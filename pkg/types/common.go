package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"
)

const (
	NO_PAGINATION = 0

	// DATA_CLASSIFICATION_PLATFORM tags records as platform-internal,
	// as opposed to tenant business data. Used for correlation and
	// reporting, never for access control.
	DATA_CLASSIFICATION_PLATFORM = "platform"
)

// UserContext carries caller identity for correlation. tenant_id scopes
// queries additively; it is not an authorization boundary.
type UserContext struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
}

// TenantID returns the tenant scope of a possibly-nil context.
func (u *UserContext) GetTenantID() string {
	if u == nil {
		return ""
	}
	return u.TenantID
}

// JSONMap stores a sanitized metadata tree as a JSONB column.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}

// NullVector wraps pgvector.Vector for nullable vector columns.
type NullVector struct {
	Vector pgvector.Vector
	Valid  bool
}

func NewNullVector(v []float32) NullVector {
	if len(v) == 0 {
		return NullVector{}
	}
	return NullVector{Vector: pgvector.NewVector(v), Valid: true}
}

func (v NullVector) Value() (driver.Value, error) {
	if !v.Valid {
		return nil, nil
	}
	return v.Vector.Value()
}

func (v *NullVector) Scan(src any) error {
	if src == nil {
		v.Valid = false
		v.Vector = pgvector.Vector{}
		return nil
	}
	v.Valid = true
	return v.Vector.Scan(src)
}
