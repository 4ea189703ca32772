package controllers

import (
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/sijangmap/marketmap-backend/api/middleware"
	"github.com/sijangmap/marketmap-backend/api/responses"
	"github.com/sijangmap/marketmap-backend/api/validators"
	"github.com/sijangmap/marketmap-backend/internal/images"
	"github.com/sijangmap/marketmap-backend/internal/stores"
	pkgerrors "github.com/sijangmap/marketmap-backend/pkg/errors"
	"github.com/sijangmap/marketmap-backend/pkg/logger"
)

type storeCreateRequest struct {
	Name          string  `json:"name" validate:"required,max=100"`
	Code          *string `json:"code,omitempty" validate:"omitempty,max=50"`
	ZoneNumber    *int    `json:"zone_number,omitempty" validate:"omitempty,min=1,max=5"`
	PhoneNumber   *string `json:"phone_number,omitempty" validate:"omitempty,max=20"`
	Address       *string `json:"address,omitempty" validate:"omitempty,max=255"`
	DetailAddress *string `json:"detail_address,omitempty" validate:"omitempty,max=100"`
	X             int     `json:"x" validate:"required,gt=0"`
	Y             int     `json:"y" validate:"required,gt=0"`
	MarkerRadius  *int    `json:"marker_radius,omitempty" validate:"omitempty,gt=0"`
	BusinessHours *string `json:"business_hours,omitempty" validate:"omitempty,max=200"`
	Description   *string `json:"description,omitempty"`
}

type storeUpdateRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Code          *string `json:"code,omitempty" validate:"omitempty,max=50"`
	ZoneNumber    *int    `json:"zone_number,omitempty" validate:"omitempty,min=1,max=5"`
	PhoneNumber   *string `json:"phone_number,omitempty" validate:"omitempty,max=20"`
	Address       *string `json:"address,omitempty" validate:"omitempty,max=255"`
	DetailAddress *string `json:"detail_address,omitempty" validate:"omitempty,max=100"`
	X             *int    `json:"x,omitempty" validate:"omitempty,gt=0"`
	Y             *int    `json:"y,omitempty" validate:"omitempty,gt=0"`
	MarkerRadius  *int    `json:"marker_radius,omitempty" validate:"omitempty,gt=0"`
	BusinessHours *string `json:"business_hours,omitempty" validate:"omitempty,max=200"`
	Description   *string `json:"description,omitempty"`
}

// AdminStoreCreate registers a new store in the directory. A plain
// JSON body creates the record alone; a multipart form carries the
// record in the "store" field plus optional image files, the first of
// which becomes the MAIN image.
func AdminStoreCreate(svc stores.Service, imageSvc images.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req storeCreateRequest
		var files []*multipart.FileHeader

		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
				return
			}
			if err := validators.DecodeJSONString(r.FormValue("store"), &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			files = r.MultipartForm.File["images"]
		} else if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		adminID := middleware.AdminIDFromContext(r.Context())
		dto := stores.CreateStoreDTO{
			Name:          req.Name,
			Code:          trimPtr(req.Code),
			ZoneNumber:    req.ZoneNumber,
			PhoneNumber:   trimPtr(req.PhoneNumber),
			Address:       req.Address,
			DetailAddress: req.DetailAddress,
			X:             req.X,
			Y:             req.Y,
			MarkerRadius:  req.MarkerRadius,
			BusinessHours: req.BusinessHours,
			Description:   req.Description,
		}
		if adminID > 0 {
			dto.CreatedBy = &adminID
		}

		created, err := svc.Create(r.Context(), dto)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if len(files) > 0 {
			if _, err := imageSvc.Attach(r.Context(), created.ID, files); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// AdminStoreUpdate applies a partial update to a store record.
func AdminStoreUpdate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "storeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req storeUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), id, stores.UpdateStoreInput{
			Name:          req.Name,
			Code:          trimPtr(req.Code),
			ZoneNumber:    req.ZoneNumber,
			PhoneNumber:   trimPtr(req.PhoneNumber),
			Address:       req.Address,
			DetailAddress: req.DetailAddress,
			X:             req.X,
			Y:             req.Y,
			MarkerRadius:  req.MarkerRadius,
			BusinessHours: req.BusinessHours,
			Description:   req.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// AdminStoreDelete soft-deletes a store, hiding it from the public
// directory while keeping the record.
func AdminStoreDelete(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "storeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SoftDelete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": id})
	}
}

// AdminStorePurge permanently removes a store and its images.
func AdminStorePurge(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "storeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Purge(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"purged": id})
	}
}

// StoreStats summarizes the catalog for the dashboard.
func StoreStats(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// AdminStoreExport downloads the active directory as a spreadsheet.
func AdminStoreExport(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := svc.ExportXLSX(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filename := "stores-" + time.Now().Format("20060102") + ".xlsx"
		responses.WriteAttachment(w, filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	}
}
