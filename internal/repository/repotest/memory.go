// Package repotest provides in-memory repositories for tests of the layers
// above the database.
package repotest

import (
	"context"
	"sync"

	"github.com/arzan03/FilesManager/internal/models"
	"github.com/arzan03/FilesManager/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Users struct {
	mu    sync.Mutex
	users []models.User
}

var _ repository.UserRepository = (*Users)(nil)

func NewUsers() *Users {
	return &Users{}
}

func (r *Users) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, repository.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users = append(r.users, *user)
	out := *user
	return &out, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID.Hex() == id {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

type Files struct {
	mu    sync.Mutex
	files []models.File
}

var _ repository.FileRepository = (*Files)(nil)

func NewFiles() *Files {
	return &Files{}
}

func (r *Files) Create(_ context.Context, file *models.File) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if file.ID.IsZero() {
		file.ID = primitive.NewObjectID()
	}
	if file.ParentID.IsRoot() {
		file.ParentID = models.RootParentID
	}
	r.files = append(r.files, *file)
	out := *file
	return &out, nil
}

func (r *Files) find(match func(models.File) bool) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.files {
		if match(f) {
			out := f
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Files) GetByID(_ context.Context, id string) (*models.File, error) {
	return r.find(func(f models.File) bool { return f.ID.Hex() == id })
}

func (r *Files) GetByIDAndOwner(_ context.Context, id, userID string) (*models.File, error) {
	return r.find(func(f models.File) bool { return f.ID.Hex() == id && f.UserID == userID })
}

func (r *Files) List(_ context.Context, filter repository.ListFilter) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parent := filter.ParentID
	if parent.IsRoot() {
		parent = models.RootParentID
	}
	var matched []models.File
	for _, f := range r.files {
		if f.ParentID != parent {
			continue
		}
		if filter.UserID != "" && f.UserID != filter.UserID {
			continue
		}
		matched = append(matched, f)
	}

	skip, ok := filter.Skip()
	if !ok || skip >= int64(len(matched)) {
		return []models.File{}, nil
	}
	start := int(skip)
	end := min(start+filter.PageSize, len(matched))
	out := make([]models.File, end-start)
	copy(out, matched[start:end])
	return out, nil
}

func (r *Files) SetPublic(_ context.Context, id, userID string, value bool) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.files {
		if r.files[i].ID.Hex() == id && r.files[i].UserID == userID {
			r.files[i].IsPublic = value
			out := r.files[i]
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Files) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.files)), nil
}
