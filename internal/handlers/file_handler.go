package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shopsim/internal/domain"
	"shopsim/internal/repos"
	"shopsim/internal/simerr"
)

type FileHandler struct {
	Files *repos.FileRepo
}

type uploadReq struct {
	Filename   string `json:"filename"`
	Mimetype   string `json:"mimetype"`
	Data       []byte `json:"data"`
	UploadedBy string `json:"uploadedBy"`
}

func (h *FileHandler) Upload(ctx context.Context, req *Request) (*Response, error) {
	var in uploadReq
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	if in.Filename == "" {
		return nil, simerr.Validation("filename is required")
	}
	if len(in.Data) == 0 {
		return nil, simerr.Validation("file data is required")
	}
	f := domain.StoredFile{
		ID:         uuid.NewString(),
		Filename:   in.Filename,
		Mimetype:   in.Mimetype,
		Size:       int64(len(in.Data)),
		Data:       in.Data,
		UploadedAt: time.Now(),
		UploadedBy: in.UploadedBy,
	}
	if err := h.Files.Create(ctx, &f); err != nil {
		return nil, err
	}
	// Metadata only; the blob stays in the store.
	f.Data = nil
	return Created(f), nil
}

func (h *FileHandler) Get(ctx context.Context, req *Request) (*Response, error) {
	f, err := h.Files.GetByID(ctx, req.Param("id"))
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, simerr.NotFound("file", req.Param("id"))
	}
	return OK(f), nil
}

// Resolve implements FileURLResolver over the store's file collection.
func (h *FileHandler) Resolve(ctx context.Context, fileID string) (string, bool) {
	f, err := h.Files.GetByID(ctx, fileID)
	if err != nil || f == nil {
		return "", false
	}
	return "/files/" + f.ID, true
}
