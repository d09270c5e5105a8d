package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/uploads"
)

type UploadController struct {
	store *uploads.Store
}

func NewUploadController(store *uploads.Store) *UploadController {
	return &UploadController{store: store}
}

type uploadResponse struct {
	FileName string `json:"fileName"`
}

// Upload accepts one multipart image under the "fileImg" field. The
// "upload-type" header tags which entity folder the file belongs to.
// The response carries the server-assigned filename the client stores
// against the entity.
func (controller *UploadController) Upload(c *gin.Context) {
	entity := c.GetHeader("upload-type")
	if entity == "" {
		respondMessage(c, http.StatusBadRequest, "upload-type header is required")
		return
	}

	fileHeader, err := c.FormFile("fileImg")
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "fileImg field is required")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respondInternalError(c, err, "open upload")
		return
	}
	defer f.Close()

	filename, err := controller.store.Save(entity, fileHeader.Filename, f)
	if err != nil {
		switch {
		case errors.Is(err, uploads.ErrUnsupportedType),
			errors.Is(err, uploads.ErrFileTooLarge),
			errors.Is(err, uploads.ErrBadEntityTag):
			respondMessage(c, http.StatusBadRequest, err.Error())
		default:
			respondInternalError(c, err, "save upload")
		}
		return
	}

	respondData(c, http.StatusCreated, uploadResponse{FileName: filename})
}
