package controllers

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/estatehub/estatehub-backend/api/responses"
	"github.com/estatehub/estatehub-backend/api/validators"
	"github.com/estatehub/estatehub-backend/internal/images"
	"github.com/estatehub/estatehub-backend/pkg/config"
	pkgerrors "github.com/estatehub/estatehub-backend/pkg/errors"
	"github.com/estatehub/estatehub-backend/pkg/logger"
)

// multipartOverhead covers form fields and part headers on top of the file bytes.
const multipartOverhead = 1 << 20

// ImageUpload stores a batch of listing photos sent as multipart "images" parts.
func ImageUpload(svc images.Service, cfg config.ImagesConfig, logg *logger.Logger) http.HandlerFunc {
	maxFiles := cfg.MaxFilesPerBatch
	if maxFiles <= 0 {
		maxFiles = 20
	}
	maxBody := int64(maxFiles)*cfg.MaxUploadBytes() + multipartOverhead

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "image service unavailable"))
			return
		}

		actor, err := requireActor(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := validators.ParseMultipartForm(w, r, maxBody); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		propertyID, err := validators.ParseUUID(validators.FormValue(r, "property_id"), "property_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := images.UploadInput{PropertyID: propertyID}
		if raw := validators.FormValue(r, "seller_id"); raw != "" {
			sellerID, err := validators.ParseUUID(raw, "seller_id")
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			input.SellerID = &sellerID
		}

		headers := validators.FormFiles(r, "images")
		if len(headers) == 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "at least one image is required").
				WithDetails(map[string]any{"field": "images"}))
			return
		}
		if len(headers) > maxFiles {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "too many images in one upload").
				WithDetails(map[string]any{"field": "images", "max": maxFiles}))
			return
		}
		input.Files = make([]images.UploadFile, 0, len(headers))
		for _, header := range headers {
			input.Files = append(input.Files, uploadFile(header))
		}

		resp, err := svc.Upload(ctx, actor, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

func uploadFile(header *multipart.FileHeader) images.UploadFile {
	return images.UploadFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Open: func() (io.ReadCloser, error) {
			return header.Open()
		},
	}
}

// ImageList returns the resolved gallery of a property. Drafts are visible to their owner.
func ImageList(svc images.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "image service unavailable"))
			return
		}

		propertyID, err := validators.ParseUUIDParam(r, "propertyId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp, err := svc.List(ctx, optionalActor(ctx), propertyID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// ImageUpdate applies a batch of display_order / is_cover changes. Clearing a
// cover hands it to the lowest-ordered image, which may be the same one.
func ImageUpdate(svc images.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "image service unavailable"))
			return
		}

		actor, err := requireActor(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload images.UpdateInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp, err := svc.UpdateBatch(ctx, actor, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func ImageDelete(svc images.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "image service unavailable"))
			return
		}

		actor, err := requireActor(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		imageID, err := validators.ParseQueryInt64(r, "imageId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp, err := svc.Delete(ctx, actor, imageID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}
