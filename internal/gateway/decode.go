package gateway

import (
	"errors"
	"fmt"

	"github.com/and161185/custommetrics/model"
	"github.com/valyala/fastjson"
)

var (
	ErrMalformedPayload   = errors.New("malformed JSON payload")
	ErrUnsupportedVersion = errors.New("unsupported proto_version")
	ErrNoDataPoints       = errors.New("message must contain one or more data points")
	ErrInvalidPoint       = errors.New("invalid data point")
)

// Decode parses a gateway message and checks it against the wire schema.
func Decode(body []byte) (*model.Message, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	ts, err := int64Field(v, "timestamp")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	version, err := int64Field(v, "proto_version")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if version != model.ProtocolVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	data := v.Get("data")
	if data == nil {
		return nil, ErrNoDataPoints
	}
	items, err := data.Array()
	if err != nil {
		return nil, fmt.Errorf("%w: data: %v", ErrMalformedPayload, err)
	}
	if len(items) == 0 {
		return nil, ErrNoDataPoints
	}

	points := make([]model.Point, 0, len(items))
	for i, item := range items {
		pt, err := decodePoint(item)
		if err != nil {
			return nil, fmt.Errorf("%w: data[%d]: %v", ErrInvalidPoint, i, err)
		}
		points = append(points, pt)
	}

	msg := model.NewMessage()
	msg.SetTimestamp(ts)
	msg.SetDataPoints(points)
	return msg, nil
}

func decodePoint(v *fastjson.Value) (model.Point, error) {
	name, err := stringField(v, "name")
	if err != nil {
		return model.Point{}, err
	}
	if name == "" {
		return model.Point{}, model.ErrEmptyName
	}

	value, err := float64Field(v, "value")
	if err != nil {
		return model.Point{}, err
	}

	collectedAt, err := int64Field(v, "collected_at")
	if err != nil {
		return model.Point{}, err
	}

	pt := model.Point{Name: name, Value: value}
	pt.SetEpochSeconds(collectedAt)

	if v.Get("instance") != nil {
		instance, err := stringField(v, "instance")
		if err != nil {
			return model.Point{}, err
		}
		pt.InstanceID = instance
	}
	return pt, nil
}

func field(v *fastjson.Value, key string) (*fastjson.Value, error) {
	f := v.Get(key)
	if f == nil {
		return nil, fmt.Errorf("missing %q", key)
	}
	return f, nil
}

func int64Field(v *fastjson.Value, key string) (int64, error) {
	f, err := field(v, key)
	if err != nil {
		return 0, err
	}
	n, err := f.Int64()
	if err != nil {
		return 0, fmt.Errorf("%q: %v", key, err)
	}
	return n, nil
}

func float64Field(v *fastjson.Value, key string) (float64, error) {
	f, err := field(v, key)
	if err != nil {
		return 0, err
	}
	n, err := f.Float64()
	if err != nil {
		return 0, fmt.Errorf("%q: %v", key, err)
	}
	return n, nil
}

func stringField(v *fastjson.Value, key string) (string, error) {
	f, err := field(v, key)
	if err != nil {
		return "", err
	}
	b, err := f.StringBytes()
	if err != nil {
		return "", fmt.Errorf("%q: %v", key, err)
	}
	return string(b), nil
}
