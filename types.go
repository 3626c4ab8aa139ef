package tarn

import "fmt"

// AssociateType identifies the kind of platform entity a file handle is
// attached to. Copying a file handle requires naming the entity that
// currently references it.
type AssociateType string

const (
	AssociateFileEntity     AssociateType = "FileEntity"
	AssociateTableEntity    AssociateType = "TableEntity"
	AssociateWikiAttachment AssociateType = "WikiAttachment"
	AssociateUserProfile    AssociateType = "UserProfileAttachment"
	AssociateMessage        AssociateType = "MessageAttachment"
	AssociateSubmission     AssociateType = "SubmissionAttachment"
)

func (t AssociateType) IsValid() bool {
	switch t {
	case AssociateFileEntity, AssociateTableEntity, AssociateWikiAttachment,
		AssociateUserProfile, AssociateMessage, AssociateSubmission:
		return true
	default:
		return false
	}
}

func ParseAssociateType(s string) (AssociateType, error) {
	t := AssociateType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid associate object type: %s", s)
	}
	return t, nil
}

// FileHandle is the server-side record for a stored file's content and
// metadata. It is distinct from the entity that references it.
type FileHandle struct {
	ID                string `json:"id"`
	FileName          string `json:"fileName"`
	ContentType       string `json:"contentType"`
	ContentMD5        string `json:"contentMd5"`
	ContentSize       int64  `json:"contentSize"`
	ConcreteType      string `json:"concreteType"`
	ETag              string `json:"etag"`
	BucketName        string `json:"bucketName,omitempty"`
	Key               string `json:"key,omitempty"`
	CreatedBy         string `json:"createdBy"`
	CreatedOn         string `json:"createdOn"`
	StorageLocationID int64  `json:"storageLocationId,omitempty"`
}

// FileHandleAssociation identifies a file handle through the entity that
// references it.
type FileHandleAssociation struct {
	FileHandleID        string `json:"fileHandleId"`
	AssociateObjectID   string `json:"associateObjectId"`
	AssociateObjectType string `json:"associateObjectType"`
}

// FileHandleCopyRequest is a single copy instruction within a batch.
// NewContentType and NewFileName override the original values when set;
// the wire format requires both keys to be present, null when absent.
type FileHandleCopyRequest struct {
	OriginalFile   FileHandleAssociation `json:"originalFile"`
	NewContentType *string               `json:"newContentType"`
	NewFileName    *string               `json:"newFileName"`
}

// FileHandleCopyResult is the per-item outcome of a copy request. Exactly
// one of NewFileHandle and FailureCode is populated: a failure code (for
// example "UNAUTHORIZED" or "NOT_FOUND") reports an item the server could
// not copy without failing the batch.
type FileHandleCopyResult struct {
	OriginalFileHandleID string      `json:"originalFileHandleId"`
	NewFileHandle        *FileHandle `json:"newFileHandle,omitempty"`
	FailureCode          string      `json:"failureCode,omitempty"`
}

// Failed reports whether this item carries a per-item failure code.
func (r *FileHandleCopyResult) Failed() bool {
	return r.NewFileHandle == nil
}

// CopyOptions carries the optional parallel lists for CopyFileHandles.
// Each list, when non-nil, must match the length of the required lists;
// nil entries leave the original value unchanged.
type CopyOptions struct {
	ContentTypes []*string
	FileNames    []*string
}
