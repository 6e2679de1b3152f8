package gateway

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/and161185/custommetrics/model"
	"github.com/stretchr/testify/require"
)

func TestDecode_RoundTrip(t *testing.T) {
	msg := model.NewMessage()
	msg.SetTimestamp(5000)
	msg.AddDataPoint(model.Point{Name: "m", Value: 0, CollectedAt: time.Unix(1000, 0)})
	msg.AddDataPoint(model.Point{Name: "cpu", Value: 2.5, CollectedAt: time.Unix(1030, 0), InstanceID: "i-1"})

	body, err := json.Marshal(msg)
	require.NoError(t, err)

	got, err := Decode(body)
	require.NoError(t, err)
	require.Equal(t, int64(5000), got.Timestamp())
	require.Len(t, got.DataPoints(), 2)

	first := got.DataPoints()[0]
	require.Equal(t, "m", first.Name)
	require.Equal(t, 0.0, first.Value)
	sec, err := first.EpochSeconds()
	require.NoError(t, err)
	require.Equal(t, int64(1000), sec)
	require.Empty(t, first.InstanceID)

	second := got.DataPoints()[1]
	require.Equal(t, "cpu", second.Name)
	require.Equal(t, 2.5, second.Value)
	require.Equal(t, "i-1", second.InstanceID)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"not json", `{`, ErrMalformedPayload},
		{"missing timestamp", `{"proto_version":1,"data":[]}`, ErrMalformedPayload},
		{"string timestamp", `{"timestamp":"1","proto_version":1,"data":[]}`, ErrMalformedPayload},
		{"wrong version", `{"timestamp":1,"proto_version":2,"data":[{"name":"m","value":1,"collected_at":1}]}`, ErrUnsupportedVersion},
		{"missing data", `{"timestamp":1,"proto_version":1}`, ErrNoDataPoints},
		{"empty data", `{"timestamp":1,"proto_version":1,"data":[]}`, ErrNoDataPoints},
		{"data not array", `{"timestamp":1,"proto_version":1,"data":{}}`, ErrMalformedPayload},
		{"missing name", `{"timestamp":1,"proto_version":1,"data":[{"value":1,"collected_at":1}]}`, ErrInvalidPoint},
		{"empty name", `{"timestamp":1,"proto_version":1,"data":[{"name":"","value":1,"collected_at":1}]}`, ErrInvalidPoint},
		{"string value", `{"timestamp":1,"proto_version":1,"data":[{"name":"m","value":"1","collected_at":1}]}`, ErrInvalidPoint},
		{"fractional collected_at", `{"timestamp":1,"proto_version":1,"data":[{"name":"m","value":1,"collected_at":1.5}]}`, ErrInvalidPoint},
		{"numeric instance", `{"timestamp":1,"proto_version":1,"data":[{"name":"m","value":1,"collected_at":1,"instance":7}]}`, ErrInvalidPoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.body))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecode_ReferenceSpacing(t *testing.T) {
	body := `{"timestamp":1,"proto_version":1,"data":[{"name":"cpu","value":5.000000,"collected_at":100, "instance": "i-1"}]}`

	msg, err := Decode([]byte(body))
	require.NoError(t, err)
	require.Equal(t, "i-1", msg.DataPoints()[0].InstanceID)
	require.Equal(t, 5.0, msg.DataPoints()[0].Value)
}
