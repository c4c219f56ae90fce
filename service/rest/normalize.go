package rest

import (
	"bytes"
	"errors"

	"github.com/tidwall/gjson"

	"github.com/naiba/gymkit/model"
	"github.com/naiba/gymkit/pkg/utils"
)

var (
	errMarkup   = errors.New("markup page instead of JSON")
	errNotJSON  = errors.New("body is not JSON")
	errBadShape = errors.New("data does not match the expected shape")
)

// rawEnvelope is an envelope whose data has not been decoded yet.
type rawEnvelope struct {
	data    []byte
	message string
	success bool
}

// normalizeRead handles the three shapes the backend uses for GET:
// {status, message, data}, a bare array, or a bare object.
func normalizeRead(body []byte) (rawEnvelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return rawEnvelope{success: true, message: model.MessageSuccess}, nil
	}
	if !gjson.ValidBytes(trimmed) {
		if utils.LooksLikeMarkup(trimmed) {
			return rawEnvelope{}, errMarkup
		}
		return rawEnvelope{}, errNotJSON
	}

	r := gjson.ParseBytes(trimmed)
	if r.Type == gjson.String && utils.LooksLikeMarkup([]byte(r.Str)) {
		return rawEnvelope{}, errMarkup
	}

	if r.IsObject() {
		data, status := r.Get("data"), r.Get("status")
		if data.Exists() && status.Exists() {
			return rawEnvelope{
				data:    []byte(data.Raw),
				message: r.Get("message").String(),
				success: status.Bool(),
			}, nil
		}
	}

	// 裸数组或裸对象，没有状态包装
	return rawEnvelope{
		data:    trimmed,
		message: model.MessageSuccess,
		success: true,
	}, nil
}

// normalizeWrite unwraps the {status, message, data} wrapper that
// POST, PUT and DELETE always use.
func normalizeWrite(body []byte) (rawEnvelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return rawEnvelope{}, nil
	}
	if !gjson.ValidBytes(trimmed) {
		if utils.LooksLikeMarkup(trimmed) {
			return rawEnvelope{}, errMarkup
		}
		return rawEnvelope{}, errNotJSON
	}

	r := gjson.ParseBytes(trimmed)
	if r.Type == gjson.String && utils.LooksLikeMarkup([]byte(r.Str)) {
		return rawEnvelope{}, errMarkup
	}

	var data []byte
	if d := r.Get("data"); d.Exists() {
		data = []byte(d.Raw)
	}
	return rawEnvelope{
		data:    data,
		message: r.Get("message").String(),
		success: r.Get("status").Bool(),
	}, nil
}

func decodeEnvelope[T any](raw rawEnvelope) (*model.Envelope[T], error) {
	env := &model.Envelope[T]{
		Message: raw.message,
		Success: raw.success,
	}
	if len(raw.data) == 0 || gjson.ParseBytes(raw.data).Type == gjson.Null {
		return env, nil
	}
	if err := utils.Json.Unmarshal(raw.data, &env.Data); err != nil {
		return nil, errors.Join(errBadShape, err)
	}
	return env, nil
}
