package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/arzan03/FilesManager/internal/models"
	"github.com/arzan03/FilesManager/internal/repository"
	"github.com/arzan03/FilesManager/internal/storage"
	"go.uber.org/zap"
)

// PageSize is the number of records returned by one List call.
const PageSize = 20

// JobPublisher hands thumbnail work to the worker processes.
type JobPublisher interface {
	Publish(ctx context.Context, fileID, userID string) (models.ThumbnailJob, error)
}

type CreateFileInput struct {
	Name     string
	Type     models.FileType
	ParentID models.ParentID
	IsPublic bool
	// Data is the base64 encoded payload; required unless Type is folder.
	Data string
}

type FileServiceOptions struct {
	// ListOwnerScoped restricts List to the requester's records. Off by
	// default: listing a folder shows records of every owner.
	ListOwnerScoped bool
}

// FileService owns file records, their content and the thumbnail trigger.
type FileService struct {
	files   repository.FileRepository
	content storage.Store
	jobs    JobPublisher
	log     *zap.SugaredLogger
	opts    FileServiceOptions
}

func NewFileService(
	files repository.FileRepository,
	content storage.Store,
	jobs JobPublisher,
	log *zap.SugaredLogger,
	opts FileServiceOptions,
) *FileService {
	return &FileService{files: files, content: content, jobs: jobs, log: log, opts: opts}
}

// visible is the single access rule for content and public lookups. Absent
// and forbidden records are indistinguishable to the caller.
func visible(file *models.File, requesterID string) bool {
	return file.IsPublic || (requesterID != "" && file.UserID == requesterID)
}

// Create validates and stores a new record. For files and images the payload
// is written first, so a failed write leaves no record behind.
func (s *FileService) Create(ctx context.Context, userID string, in CreateFileInput) (*models.File, error) {
	if in.Name == "" {
		return nil, invalid("Missing name")
	}
	if !in.Type.Valid() {
		return nil, invalid("Missing or invalid type")
	}
	if in.Type.HasContent() && in.Data == "" {
		return nil, invalid("Missing data")
	}

	parentID := in.ParentID
	if parentID.IsRoot() {
		parentID = models.RootParentID
	} else {
		// Any folder is an acceptable parent, whoever owns it.
		parent, err := s.files.GetByID(ctx, string(parentID))
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid("Parent not found")
		}
		if err != nil {
			return nil, fmt.Errorf("load parent: %w", err)
		}
		if parent.Type != models.FileTypeFolder {
			return nil, invalid("Parent is not a folder")
		}
	}

	file := &models.File{
		UserID:   userID,
		Name:     in.Name,
		Type:     in.Type,
		IsPublic: in.IsPublic,
		ParentID: parentID,
	}

	// The client going away must not abort a write half way.
	ctx = context.WithoutCancel(ctx)

	if in.Type.HasContent() {
		data, err := base64.StdEncoding.DecodeString(in.Data)
		if err != nil {
			return nil, invalid("Invalid data")
		}
		path, err := s.content.Store(ctx, data, in.Name)
		if err != nil {
			return nil, fmt.Errorf("store content: %w", err)
		}
		file.LocalPath = path
	}

	created, err := s.files.Create(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("create file record: %w", err)
	}

	if created.Type == models.FileTypeImage {
		s.enqueueThumbnails(ctx, created)
	}
	return created, nil
}

// enqueueThumbnails is best effort: a failure leaves an image without
// thumbnails but keeps the upload.
func (s *FileService) enqueueThumbnails(ctx context.Context, file *models.File) {
	job, err := s.jobs.Publish(ctx, file.ID.Hex(), file.UserID)
	if err != nil {
		s.log.Warnw("thumbnail job not enqueued", "file_id", file.ID.Hex(), "error", err)
		return
	}
	s.log.Debugw("thumbnail job enqueued", "job_id", job.ID, "file_id", file.ID.Hex())
}

// Get returns a record owned by userID.
func (s *FileService) Get(ctx context.Context, userID, fileID string) (*models.File, error) {
	file, err := s.files.GetByIDAndOwner(ctx, fileID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load file: %w", err)
	}
	return file, nil
}

// GetPublicOrOwned returns a record that is public or owned by requesterID.
// requesterID is empty for anonymous requests.
func (s *FileService) GetPublicOrOwned(ctx context.Context, requesterID, fileID string) (*models.File, error) {
	file, err := s.files.GetByID(ctx, fileID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load file: %w", err)
	}
	if !visible(file, requesterID) {
		return nil, ErrNotFound
	}
	return file, nil
}

// List returns one page of the records under parentID. Pages are zero based.
func (s *FileService) List(ctx context.Context, userID string, parentID models.ParentID, page int) ([]models.File, error) {
	if page < 0 {
		page = 0
	}
	filter := repository.ListFilter{
		ParentID: parentID,
		Page:     page,
		PageSize: PageSize,
	}
	if s.opts.ListOwnerScoped {
		filter.UserID = userID
	}

	files, err := s.files.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// SetPublic changes the visibility of a record owned by userID.
func (s *FileService) SetPublic(ctx context.Context, userID, fileID string, value bool) (*models.File, error) {
	file, err := s.files.SetPublic(ctx, fileID, userID, value)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update file: %w", err)
	}
	return file, nil
}

// FileContent is an open payload; the caller closes Body.
type FileContent struct {
	File *models.File
	Path string
	Body io.ReadCloser
}

// Content opens the payload of a visible record, or one of its thumbnails
// when size is non-zero. Presence on disk is checked now: the record alone
// does not prove the payload still exists.
func (s *FileService) Content(ctx context.Context, requesterID, fileID string, size int) (*FileContent, error) {
	file, err := s.GetPublicOrOwned(ctx, requesterID, fileID)
	if err != nil {
		return nil, err
	}
	if file.Type == models.FileTypeFolder {
		return nil, invalid("A folder doesn't have content")
	}
	if file.LocalPath == "" {
		return nil, ErrNotFound
	}

	path := file.LocalPath
	if size != 0 {
		if !storage.ValidSize(size) {
			return nil, invalid("Invalid size")
		}
		path = storage.DerivativePath(file.LocalPath, size)
	}

	body, err := s.content.Open(ctx, path)
	if errors.Is(err, storage.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open content: %w", err)
	}
	return &FileContent{File: file, Path: path, Body: body}, nil
}
