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
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hatworks/iohat/model"
)

// setRequest is the payload for relay, output & power POST requests.
type setRequest struct {
	Value bool `json:"value"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleStatus(c echo.Context) error {
	status, err := s.api.BoardStatus(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, status)
}

func (s *Server) handleReadAnalogAll(c echo.Context) error {
	readings, err := s.api.ReadAnalogAll(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, readings)
}

func (s *Server) handleReadAnalog(c echo.Context) error {
	channel, err := strconv.Atoi(c.Param("channel"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid channel")
	}
	reading, err := s.api.ReadAnalog(c.Request().Context(), channel)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, reading)
}

func (s *Server) handleGetInput(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid index")
	}
	value, err := s.api.GetInput(c.Request().Context(), index)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, model.ObjectActual{
		Kind:  model.ObjectKindInput,
		Index: index,
		Value: value,
	})
}

func (s *Server) handleSetRelay(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid index")
	}
	var req setRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := s.api.SetRelay(c.Request().Context(), index, req.Value); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleSetOutput(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid index")
	}
	var req setRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := s.api.SetOutput(c.Request().Context(), index, req.Value); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleSetPower(c echo.Context) error {
	var req setRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := s.api.SetPower(c.Request().Context(), req.Value); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// mapError translates service errors into HTTP errors.
func mapError(err error) error {
	switch {
	case model.IsInvalidArgument(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case model.IsStateError(err):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
