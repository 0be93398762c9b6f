package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexInt_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"plain number", `12`, 12, false},
		{"quoted number", `"12"`, 12, false},
		{"quoted year", `"2030"`, 2030, false},
		{"zero", `0`, 0, false},
		{"empty string treated as absent", `""`, 0, false},
		{"not a number", `"twelve"`, 0, true},
		{"decimal string", `"1.5"`, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var f FlexInt
			err := json.Unmarshal([]byte(tc.input), &f)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, f.Int())
		})
	}
}

func TestFlexInt_MarshalsAsNumber(t *testing.T) {
	var f FlexInt
	require.NoError(t, json.Unmarshal([]byte(`"2030"`), &f))

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `2030`, string(out), "a coerced string round-trips as a number")
}

func TestFlexInt_StructField(t *testing.T) {
	var payload struct {
		ExpiryMonth *FlexInt `json:"expiry_month"`
		ExpiryYear  *FlexInt `json:"expiry_year"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"expiry_month":"12","expiry_year":2030}`), &payload))

	require.NotNil(t, payload.ExpiryMonth)
	require.NotNil(t, payload.ExpiryYear)
	assert.Equal(t, 12, payload.ExpiryMonth.Int())
	assert.Equal(t, 2030, payload.ExpiryYear.Int())
}
