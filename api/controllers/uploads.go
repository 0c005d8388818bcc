package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/vitrine-backend/api/responses"
	"github.com/angelmondragon/vitrine-backend/internal/media"
	pkgerrors "github.com/angelmondragon/vitrine-backend/pkg/errors"
	"github.com/angelmondragon/vitrine-backend/pkg/logger"
)

// FileNameHeader carries the original name of an uploaded file.
const FileNameHeader = "X-Filename"

type mediaUploader interface {
	Upload(ctx context.Context, input media.UploadInput) (*media.UploadOutput, error)
}

// MediaUpload stores the raw request body as a public product image.
func MediaUpload(svc mediaUploader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "uploads are disabled"))
			return
		}
		out, err := svc.Upload(r.Context(), media.UploadInput{
			Folder:      r.URL.Query().Get("path"),
			FileName:    r.Header.Get(FileNameHeader),
			ContentType: r.Header.Get("Content-Type"),
			Body:        r.Body,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, out)
	}
}
