package handlers

import (
	"bytes"
	"errors"
	"io"
	"strconv"

	"github.com/arzan03/FilesManager/internal/middleware"
	"github.com/arzan03/FilesManager/internal/models"
	"github.com/arzan03/FilesManager/internal/services"
	"github.com/arzan03/FilesManager/internal/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
)

// sniffLen is how much of a payload is read to detect its content type.
const sniffLen = 3072

// PostFile creates a folder, or uploads a file or image.
func (h *Handler) PostFile(c *fiber.Ctx) error {
	var request struct {
		Name     string          `json:"name"`
		Type     models.FileType `json:"type"`
		ParentID models.ParentID `json:"parentId"`
		IsPublic bool            `json:"isPublic"`
		Data     string          `json:"data"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	file, err := h.files.Create(c.UserContext(), middleware.UserID(c), services.CreateFileInput{
		Name:     request.Name,
		Type:     request.Type,
		ParentID: request.ParentID,
		IsPublic: request.IsPublic,
		Data:     request.Data,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(file)
}

// GetFile returns one of the caller's records.
func (h *Handler) GetFile(c *fiber.Ctx) error {
	file, err := h.files.Get(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(file)
}

// ListFiles returns a page of the records under ?parentId (root by default).
func (h *Handler) ListFiles(c *fiber.Ctx) error {
	parentID := models.ParentID(c.Query("parentId", string(models.RootParentID)))
	page, err := strconv.Atoi(c.Query("page", "0"))
	if err != nil {
		page = 0
	}

	files, err := h.files.List(c.UserContext(), middleware.UserID(c), parentID, page)
	if err != nil {
		return err
	}
	return c.JSON(files)
}

func (h *Handler) PublishFile(c *fiber.Ctx) error {
	return h.setPublic(c, true)
}

func (h *Handler) UnpublishFile(c *fiber.Ctx) error {
	return h.setPublic(c, false)
}

func (h *Handler) setPublic(c *fiber.Ctx, value bool) error {
	file, err := h.files.SetPublic(c.UserContext(), middleware.UserID(c), c.Params("id"), value)
	if err != nil {
		return err
	}
	return c.JSON(file)
}

// GetFileData streams the payload of a public or owned record, or one of
// its thumbnails with ?size=100|250|500.
func (h *Handler) GetFileData(c *fiber.Ctx) error {
	size := 0
	if raw := c.Query("size"); raw != "" {
		// 0 selects the original inside the service, so it is rejected here.
		n, err := strconv.Atoi(raw)
		if err != nil || !storage.ValidSize(n) {
			return &services.ValidationError{Message: "Invalid size"}
		}
		size = n
	}

	content, err := h.files.Content(c.UserContext(), middleware.UserID(c), c.Params("id"), size)
	if err != nil {
		return err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(content.Body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		content.Body.Close()
		return err
	}
	head = head[:n]

	c.Set(fiber.HeaderContentType, mimetype.Detect(head).String())
	return c.SendStream(struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), content.Body), content.Body})
}
