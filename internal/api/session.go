/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"context"
	"net/http"
)

func (a *API) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.deps.Session.Status())
}

func (a *API) handleSessionStop(w http.ResponseWriter, r *http.Request) {
	st, err := a.deps.Session.Stop(r.Context())
	if err != nil {
		a.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *API) handleSessionSnooze(w http.ResponseWriter, r *http.Request) {
	st, err := a.deps.Session.Snooze(r.Context())
	if err != nil {
		a.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *API) handleSessionVolume(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Volume *float64 `json:"volume"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Volume == nil {
		writeError(w, http.StatusBadRequest, "volume_required")
		return
	}
	v, err := a.deps.Session.SetVolume(r.Context(), *req.Volume)
	if err != nil {
		a.logger.Warn().Err(err).Msg("set volume failed")
		writeError(w, http.StatusBadGateway, "device_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"volume": v})
}

// handleSessionNext waits for the replacement track, which keeps playing
// after the client goes away.
func (a *API) handleSessionNext(w http.ResponseWriter, r *http.Request) {
	st, err := a.deps.Session.Next(context.WithoutCancel(r.Context()))
	if err != nil {
		a.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
