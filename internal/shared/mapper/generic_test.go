package mapper

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id    uint
	value string
}

func TestMapSliceWithError(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []int
		wantErr bool
	}{
		{name: "nil input", input: nil, want: nil},
		{name: "empty input", input: []string{}, want: []int{}},
		{name: "all valid", input: []string{"1", "2", "3"}, want: []int{1, 2, 3}},
		{name: "stops on error", input: []string{"1", "x", "3"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MapSliceWithError(tt.input, strconv.Atoi)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapSlicePtrWithID(t *testing.T) {
	getID := func(r *row) uint { return r.id }

	t.Run("skips nil input and output", func(t *testing.T) {
		items := []*row{{id: 1, value: "a"}, nil, {id: 2, value: ""}}
		got, err := MapSlicePtrWithID(items, func(r *row) (*string, error) {
			if r.value == "" {
				return nil, nil
			}
			return &r.value, nil
		}, getID)

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "a", *got[0])
	})

	t.Run("names the failing item", func(t *testing.T) {
		items := []*row{{id: 7, value: "a"}}
		_, err := MapSlicePtrWithID(items, func(r *row) (*string, error) {
			return nil, errors.New("boom")
		}, getID)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to map item ID 7")
	})
}
