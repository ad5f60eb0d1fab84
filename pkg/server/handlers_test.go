// Copyright 2023 Hatworks Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatworks/iohat/model"
)

type fakeAPI struct {
	status   model.BoardStatus
	readings []model.AnalogReading
	relays   map[int]bool
	outputs  map[int]bool
	powerOn  bool
	failWith error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		relays:  make(map[int]bool),
		outputs: make(map[int]bool),
	}
}

func (a *fakeAPI) BoardStatus(ctx context.Context) (model.BoardStatus, error) {
	return a.status, a.failWith
}

func (a *fakeAPI) ReadAnalogAll(ctx context.Context) ([]model.AnalogReading, error) {
	return a.readings, a.failWith
}

func (a *fakeAPI) ReadAnalog(ctx context.Context, channel int) (model.AnalogReading, error) {
	if a.failWith != nil {
		return model.AnalogReading{}, a.failWith
	}
	if channel < 0 || channel >= len(a.readings) {
		return model.AnalogReading{}, model.InvalidArgument("Invalid channel: %d. Must be 0-3.", channel)
	}
	return a.readings[channel], nil
}

func (a *fakeAPI) SetRelay(ctx context.Context, index int, on bool) error {
	if a.failWith != nil {
		return a.failWith
	}
	a.relays[index] = on
	return nil
}

func (a *fakeAPI) SetOutput(ctx context.Context, index int, on bool) error {
	if a.failWith != nil {
		return a.failWith
	}
	a.outputs[index] = on
	return nil
}

func (a *fakeAPI) GetInput(ctx context.Context, index int) (bool, error) {
	return false, a.failWith
}

func (a *fakeAPI) SetPower(ctx context.Context, enabled bool) error {
	if a.failWith != nil {
		return a.failWith
	}
	a.powerOn = enabled
	return nil
}

func (a *fakeAPI) SubscribeActuals(cb func(model.ObjectActual)) error {
	return nil
}

func newTestServer(api *fakeAPI) *Server {
	return &Server{
		log: zerolog.Nop(),
		api: api,
	}
}

func doRequest(t *testing.T, handler echo.HandlerFunc, method, target, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for name, value := range params {
		c.SetParamNames(name)
		c.SetParamValues(value)
	}
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(newFakeAPI())
	rec := doRequest(t, s.handleHealth, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHandleStatus(t *testing.T) {
	api := newFakeAPI()
	api.status = model.BoardStatus{
		ProgramVersion: "test",
		HostID:         "abc",
		Relays:         []bool{true, false, false},
	}
	s := newTestServer(api)

	rec := doRequest(t, s.handleStatus, http.MethodGet, "/api/v1/status", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status model.BoardStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "abc", status.HostID)
	assert.Equal(t, []bool{true, false, false}, status.Relays)
}

func TestHandleReadAnalog(t *testing.T) {
	api := newFakeAPI()
	api.readings = []model.AnalogReading{
		{Channel: 0, Raw: 512},
		{Channel: 1, Raw: 1024},
	}
	s := newTestServer(api)

	rec := doRequest(t, s.handleReadAnalog, http.MethodGet, "/api/v1/analog/1", "", map[string]string{"channel": "1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var reading model.AnalogReading
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reading))
	assert.Equal(t, 1024, reading.Raw)

	rec = doRequest(t, s.handleReadAnalog, http.MethodGet, "/api/v1/analog/x", "", map[string]string{"channel": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSetRelay(t *testing.T) {
	api := newFakeAPI()
	s := newTestServer(api)

	rec := doRequest(t, s.handleSetRelay, http.MethodPost, "/api/v1/relay/0", `{"value":true}`, map[string]string{"index": "0"})
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, api.relays[0])

	rec = doRequest(t, s.handleSetRelay, http.MethodPost, "/api/v1/relay/x", `{"value":true}`, map[string]string{"index": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSetPower(t *testing.T) {
	api := newFakeAPI()
	s := newTestServer(api)

	rec := doRequest(t, s.handleSetPower, http.MethodPost, "/api/v1/power", `{"value":true}`, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, api.powerOn)
}

func TestErrorMapping(t *testing.T) {
	api := newFakeAPI()
	s := newTestServer(api)

	api.failWith = model.StateError("not enabled")
	rec := doRequest(t, s.handleReadAnalogAll, http.MethodGet, "/api/v1/analog", "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	api.failWith = model.InvalidArgument("bad")
	rec = doRequest(t, s.handleReadAnalogAll, http.MethodGet, "/api/v1/analog", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	api.failWith = assert.AnError
	rec = doRequest(t, s.handleReadAnalogAll, http.MethodGet, "/api/v1/analog", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
