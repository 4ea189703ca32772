package controllers

import (
	"net/http"

	"github.com/sijangmap/marketmap-backend/api/responses"
	"github.com/sijangmap/marketmap-backend/api/validators"
	"github.com/sijangmap/marketmap-backend/internal/images"
	pkgerrors "github.com/sijangmap/marketmap-backend/pkg/errors"
	"github.com/sijangmap/marketmap-backend/pkg/logger"
)

const multipartMemoryLimit = 32 << 20

// StoreImages lists a store's gallery in display order.
func StoreImages(svc images.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := validators.ParseIDParam(r, "storeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		gallery, err := svc.ListByStore(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, gallery)
	}
}

// AdminImageUpload attaches multipart image files to a store. The first
// file of the batch becomes the MAIN image when the store has none.
func AdminImageUpload(svc images.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := validators.ParseIDParam(r, "storeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}
		files := r.MultipartForm.File["images"]

		attached, err := svc.Attach(r.Context(), storeID, files)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, attached)
	}
}

// AdminImageDelete removes one image record and its stored file.
func AdminImageDelete(svc images.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		imageID, err := validators.ParseIDParam(r, "imageID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Remove(r.Context(), imageID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": imageID})
	}
}
