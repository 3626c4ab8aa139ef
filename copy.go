package tarn

import (
	"context"
	"fmt"
)

// MaxFileHandlesPerCopyRequest is the server-enforced ceiling on the
// number of copy requests in a single batch.
const MaxFileHandlesPerCopyRequest = 100

// copyFileHandlesPath is the batch copy endpoint.
const copyFileHandlesPath = "/filehandles/copy"

// batchCopyRequest is the wire body for one page of copy requests.
type batchCopyRequest struct {
	CopyRequests []FileHandleCopyRequest `json:"copyRequests"`
}

// batchCopyResponse is the wire body of the server's reply. The server
// returns results in submission order; the coordinator relies on that
// contract and does not re-sort.
type batchCopyResponse struct {
	CopyResults []FileHandleCopyResult `json:"copyResults"`
}

// CopyFileHandles copies a list of file handles, associating each copy
// with a new object. The three required lists are parallel: index i of
// fileHandleIDs is copied onto the object named by objectTypes[i] and
// objectIDs[i]. Optional per-item content-type and file-name overrides
// come through opts.
//
// Inputs longer than MaxFileHandlesPerCopyRequest are split into
// consecutive pages submitted sequentially, one request in flight at a
// time. The returned slice has one entry per input, in input order,
// concatenated across pages.
//
// Per-item failures are not errors: the corresponding result carries a
// FailureCode and no NewFileHandle. A transport or server error on any
// page aborts the call; copies from earlier pages remain applied
// server-side and are not rolled back.
func (c *Client) CopyFileHandles(
	ctx context.Context,
	fileHandleIDs, objectTypes, objectIDs []string,
	opts *CopyOptions,
) ([]FileHandleCopyResult, error) {
	contentTypes, fileNames, err := validateCopyInput(fileHandleIDs, objectTypes, objectIDs, opts)
	if err != nil {
		return nil, err
	}

	n := len(fileHandleIDs)
	results := make([]FileHandleCopyResult, 0, n)

	for start := 0; start < n; start += MaxFileHandlesPerCopyRequest {
		end := start + MaxFileHandlesPerCopyRequest
		if end > n {
			end = n
		}

		body := buildBatchCopyRequest(
			fileHandleIDs[start:end],
			objectTypes[start:end],
			objectIDs[start:end],
			contentTypes[start:end],
			fileNames[start:end],
		)

		var resp batchCopyResponse
		if err := c.Post(ctx, copyFileHandlesPath, body, &resp); err != nil {
			return nil, fmt.Errorf("copy file handles [%d:%d]: %w", start, end, err)
		}
		results = append(results, resp.CopyResults...)
	}

	return results, nil
}

// validateCopyInput checks list-length consistency and returns the
// optional lists expanded to full length. It runs before any network
// call so that invalid input never causes partial side effects.
func validateCopyInput(
	fileHandleIDs, objectTypes, objectIDs []string,
	opts *CopyOptions,
) (contentTypes, fileNames []*string, err error) {
	n := len(fileHandleIDs)
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: fileHandleIDs must not be empty", ErrInvalidInput)
	}
	if len(objectTypes) != n || len(objectIDs) != n {
		return nil, nil, fmt.Errorf(
			"%w: fileHandleIDs, objectTypes and objectIDs must have equal length (%d, %d, %d)",
			ErrInvalidInput, n, len(objectTypes), len(objectIDs))
	}

	if opts != nil {
		contentTypes = opts.ContentTypes
		fileNames = opts.FileNames
	}
	if contentTypes == nil {
		contentTypes = make([]*string, n)
	} else if len(contentTypes) != n {
		return nil, nil, fmt.Errorf(
			"%w: contentTypes must have length %d, got %d", ErrInvalidInput, n, len(contentTypes))
	}
	if fileNames == nil {
		fileNames = make([]*string, n)
	} else if len(fileNames) != n {
		return nil, nil, fmt.Errorf(
			"%w: fileNames must have length %d, got %d", ErrInvalidInput, n, len(fileNames))
	}

	return contentTypes, fileNames, nil
}

// buildBatchCopyRequest zips the parallel slices into one page body,
// preserving relative order.
func buildBatchCopyRequest(
	fileHandleIDs, objectTypes, objectIDs []string,
	contentTypes, fileNames []*string,
) batchCopyRequest {
	reqs := make([]FileHandleCopyRequest, len(fileHandleIDs))
	for i := range fileHandleIDs {
		reqs[i] = FileHandleCopyRequest{
			OriginalFile: FileHandleAssociation{
				FileHandleID:        fileHandleIDs[i],
				AssociateObjectID:   objectIDs[i],
				AssociateObjectType: objectTypes[i],
			},
			NewContentType: contentTypes[i],
			NewFileName:    fileNames[i],
		}
	}
	return batchCopyRequest{CopyRequests: reqs}
}
