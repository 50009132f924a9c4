package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/redisplay/simple-gallery/internal/middleware"
	"github.com/redisplay/simple-gallery/internal/models"
	"github.com/redisplay/simple-gallery/internal/service"
	"github.com/redisplay/simple-gallery/internal/tenant"
)

type pictureResponse struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	TakenOn     *string   `json:"takenOn"`
	Location    *string   `json:"location"`
	Tags        []string  `json:"tags"`
	FileURL     string    `json:"fileUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (h HandlerSet) pictureResponse(c *gin.Context, g *tenant.Gallery, p models.Picture) (pictureResponse, error) {
	tags, err := g.Pictures.TagsOf(c.Request.Context(), p.ID)
	if err != nil {
		return pictureResponse{}, err
	}
	return pictureResponse{
		ID:          p.ID,
		Description: p.Description,
		TakenOn:     p.TakenOn,
		Location:    p.Location,
		Tags:        tags,
		FileURL:     fmt.Sprintf("/api/v1/g/%s/pictures/%d/file", g.Key, p.ID),
		CreatedAt:   p.CreatedAt,
	}, nil
}

func pictureID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return 0, false
	}
	return id, true
}

func (h HandlerSet) ListPictures(c *gin.Context) {
	g, _ := middleware.GalleryFrom(c)

	perPage := 50
	if raw := c.Query("perPage"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			perPage = v
		}
	}
	offset := 0
	if raw := c.Query("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 1 {
			offset = (v - 1) * perPage
		}
	}
	tag := c.Query("tag")

	total, err := g.Pictures.Count(c.Request.Context(), tag)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	pictures, err := g.Pictures.List(c.Request.Context(), tag, perPage, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	items := make([]pictureResponse, 0, len(pictures))
	for _, p := range pictures {
		resp, err := h.pictureResponse(c, g, p)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		items = append(items, resp)
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
	})
}

func (h HandlerSet) GetPicture(c *gin.Context) {
	g, _ := middleware.GalleryFrom(c)
	id, ok := pictureID(c)
	if !ok {
		return
	}

	p, err := g.Pictures.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	resp, err := h.pictureResponse(c, g, p)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h HandlerSet) UploadPicture(c *gin.Context) {
	g, _ := middleware.GalleryFrom(c)

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_required"})
		return
	}
	defer file.Close()

	input := service.IngestInput{
		Reader:      file,
		Description: c.PostForm("description"),
		TakenOn:     optString(c.PostForm("takenOn")),
		Location:    optString(c.PostForm("location")),
		Tags:        splitTags(c.PostForm("tags")),
	}

	p, err := g.Ingest.Ingest(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp, err := h.pictureResponse(c, g, p)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

type patchPictureRequest struct {
	Description *string   `json:"description"`
	TakenOn     *string   `json:"takenOn"`
	Location    *string   `json:"location"`
	Tags        *[]string `json:"tags"`
}

// PatchPicture applies only the fields present in the body; an empty string
// clears an optional field, and an empty tags array removes every tag.
func (h HandlerSet) PatchPicture(c *gin.Context) {
	g, _ := middleware.GalleryFrom(c)
	id, ok := pictureID(c)
	if !ok {
		return
	}

	var req patchPictureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	if req.Description != nil {
		if err := g.Pictures.UpdateDescription(ctx, id, *req.Description); err != nil {
			respondError(c, h.log, err)
			return
		}
	}
	if req.TakenOn != nil || req.Location != nil {
		current, err := g.Pictures.GetByID(ctx, id)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		takenOn, location := current.TakenOn, current.Location
		if req.TakenOn != nil {
			takenOn = optString(*req.TakenOn)
		}
		if req.Location != nil {
			location = optString(*req.Location)
		}
		if err := g.Pictures.UpdateDateLocation(ctx, id, takenOn, location); err != nil {
			respondError(c, h.log, err)
			return
		}
	}
	if req.Tags != nil {
		if err := g.Pictures.SetTags(ctx, id, *req.Tags); err != nil {
			respondError(c, h.log, err)
			return
		}
	}

	p, err := g.Pictures.GetByID(ctx, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	resp, err := h.pictureResponse(c, g, p)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeletePicture removes the metadata row, then the blob best-effort. The row
// is the source of truth for existence; a failed blob removal is logged and
// left for the orphan sweep.
func (h HandlerSet) DeletePicture(c *gin.Context) {
	g, _ := middleware.GalleryFrom(c)
	id, ok := pictureID(c)
	if !ok {
		return
	}

	removed, err := g.Pictures.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := g.Blobs.Delete(c.Request.Context(), removed.Filename); err != nil {
		h.log.Warn().Err(err).
			Str("gallery", g.Key).
			Str("blob", removed.Filename).
			Msg("blob removal failed after delete")
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) PictureFile(c *gin.Context) {
	g, _ := middleware.GalleryFrom(c)
	id, ok := pictureID(c)
	if !ok {
		return
	}

	p, err := g.Pictures.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	blob, err := g.Blobs.Get(c.Request.Context(), p.Filename)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer blob.Close()

	data, err := io.ReadAll(blob)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Data(http.StatusOK, mimeForFilename(p.Filename), data)
}

func (h HandlerSet) ListTags(c *gin.Context) {
	g, _ := middleware.GalleryFrom(c)

	counts, err := g.Pictures.TagsWithCounts(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	items := make([]gin.H, 0, len(counts))
	for _, tc := range counts {
		items = append(items, gin.H{"name": tc.Name, "count": tc.Count})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func mimeForFilename(name string) string {
	switch {
	case strings.HasSuffix(name, ".jpg"), strings.HasSuffix(name, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(name, ".png"):
		return "image/png"
	case strings.HasSuffix(name, ".gif"):
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
