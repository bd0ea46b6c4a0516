package models

import (
	"encoding/json"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FileType string

const (
	FileTypeFolder FileType = "folder"
	FileTypeFile   FileType = "file"
	FileTypeImage  FileType = "image"
)

// Valid reports whether t is one of the supported record types.
func (t FileType) Valid() bool {
	switch t {
	case FileTypeFolder, FileTypeFile, FileTypeImage:
		return true
	}
	return false
}

// HasContent reports whether records of this type carry binary content.
func (t FileType) HasContent() bool {
	return t == FileTypeFile || t == FileTypeImage
}

// RootParentID marks a record that lives at the top of the hierarchy.
const RootParentID ParentID = "0"

// ParentID references the folder a record lives in. On the wire the root is
// the number 0 and every other parent is the folder's id string.
type ParentID string

func (p ParentID) IsRoot() bool {
	return p == "" || p == RootParentID
}

func (p ParentID) MarshalJSON() ([]byte, error) {
	if p.IsRoot() {
		return []byte("0"), nil
	}
	return json.Marshal(string(p))
}

func (p *ParentID) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*p = RootParentID
	case float64:
		*p = ParentID(strconv.FormatFloat(v, 'f', -1, 64))
	case string:
		*p = ParentID(v)
	default:
		*p = ParentID(string(data))
	}
	if p.IsRoot() {
		*p = RootParentID
	}
	return nil
}

type File struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"userId" json:"userId"`
	Name      string             `bson:"name" json:"name"`
	Type      FileType           `bson:"type" json:"type"`
	IsPublic  bool               `bson:"isPublic" json:"isPublic"`
	ParentID  ParentID           `bson:"parentId" json:"parentId"`
	LocalPath string             `bson:"localPath,omitempty" json:"-"`
}
