package controllers

import (
	"net/http"

	"github.com/sijangmap/marketmap-backend/api/responses"
	"github.com/sijangmap/marketmap-backend/api/validators"
	"github.com/sijangmap/marketmap-backend/internal/maps"
	"github.com/sijangmap/marketmap-backend/pkg/logger"
)

type mapCreateRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	ImageURL string `json:"image_url" validate:"required,max=500"`
	Width    int    `json:"width" validate:"required,gt=0"`
	Height   int    `json:"height" validate:"required,gt=0"`
}

type mapActivateRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// ActiveMap serves the background map the kiosk renders markers onto.
func ActiveMap(svc maps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		active, err := svc.ActiveMap(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, active)
	}
}

// AdminMapList lists every registered map, oldest first.
func AdminMapList(svc maps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listing, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

// AdminMapCreate registers a new market map.
func AdminMapCreate(svc maps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mapCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), maps.CreateMapDTO{
			Name:     req.Name,
			ImageURL: req.ImageURL,
			Width:    req.Width,
			Height:   req.Height,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// AdminMapActivate toggles a map's active flag.
func AdminMapActivate(svc maps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "mapID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req mapActivateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetActive(r.Context(), id, *req.Active); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "active": *req.Active})
	}
}
