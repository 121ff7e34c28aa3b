package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

// toJSON encodes v for a JSON column. Nil maps and slices become NULL.
func toJSON(field string, v interface{}) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", field, err)
	}
	if string(data) == "null" {
		return nil, nil
	}
	return datatypes.JSON(data), nil
}

// fromJSON decodes a JSON column into v and leaves v untouched for NULL.
func fromJSON(field string, data datatypes.JSON, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", field, err)
	}
	return nil
}
