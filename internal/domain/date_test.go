package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobkaart/internal/domain"
)

func TestDate_UnmarshalJSON(t *testing.T) {
	want := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		raw  string
	}{
		{"date only", `"2026-03-10"`},
		{"timestamp", `"2026-03-10T14:30:00Z"`},
		{"offset timestamp", `"2026-03-10T09:00:00+02:00"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d domain.Date
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &d))
			assert.True(t, want.Equal(d.Time), "got %s", d.Time)
		})
	}
}

func TestDate_UnmarshalJSON_Invalid(t *testing.T) {
	var d domain.Date
	err := json.Unmarshal([]byte(`"10/03/2026"`), &d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use YYYY-MM-DD")

	assert.Error(t, json.Unmarshal([]byte(`20260310`), &d))
}

func TestDate_NullLeavesPointerNil(t *testing.T) {
	var body struct {
		PaymentDate *domain.Date `json:"payment_date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"payment_date":null}`), &body))
	assert.Nil(t, body.PaymentDate)
}

func TestDate_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(domain.NewDate(time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-10"`, string(b))
}
