package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a []string stored as a jsonb column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal([]string(l))
}

func (l *StringList) Scan(value any) error {
	return scanJSON(value, l)
}

// Contains compares by identity value; membership checks never rely on
// populated sub-documents.
func (l StringList) Contains(id string) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Without returns a copy of the list with id removed.
func (l StringList) Without(id string) StringList {
	out := make(StringList, 0, len(l))
	for _, v := range l {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// RoleList is the ordered sequence of roles embedded in a guild row.
type RoleList []Role

func (l RoleList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]Role{})
	}
	return json.Marshal([]Role(l))
}

func (l *RoleList) Scan(value any) error {
	return scanJSON(value, l)
}

func scanJSON(value any, dest any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}
