package documents

// CreateRequest is the payload for registering a document.
// The binary itself lives in remote storage; PublicID is its storage key.
type CreateRequest struct {
	Name             string   `json:"name"`
	OriginalFilename string   `json:"originalFilename"`
	Format           string   `json:"format"`
	Description      string   `json:"description"`
	Tags             []string `json:"tags"`
	Folder           string   `json:"folder"`
	PublicID         string   `json:"publicId"`
	Size             int64    `json:"size"`
}

// UpdateRequest is the payload for updating a document.
// Nil fields are left unchanged.
type UpdateRequest struct {
	Name             *string  `json:"name"`
	OriginalFilename *string  `json:"originalFilename"`
	Format           *string  `json:"format"`
	Description      *string  `json:"description"`
	Tags             []string `json:"tags"`
	Folder           *string  `json:"folder"`
}

// BulkDeleteRequest is the payload for DELETE /api/documents.
type BulkDeleteRequest struct {
	DocumentIDs []string `json:"documentIds"`
}

// BulkDeleteFailure records one document that could not be deleted.
type BulkDeleteFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BulkDeleteResult summarizes a best-effort bulk delete.
type BulkDeleteResult struct {
	BatchID string              `json:"batchId"`
	Deleted []string            `json:"deleted"`
	Failed  []BulkDeleteFailure `json:"failed"`
}

// MoveCopyItem is one operation in a PUT /api/documents/move-copy batch.
// Action is "move" or "copy", matched case-insensitively; each item carries
// its own destination.
type MoveCopyItem struct {
	DocumentID  string `json:"documentId"`
	Action      string `json:"action"`
	Destination string `json:"destination"`
}

// MoveCopyRequest is the payload for PUT /api/documents/move-copy.
type MoveCopyRequest struct {
	Operations []MoveCopyItem `json:"operations"`
}

// MoveCopyOutcome records one document successfully moved or copied.
// For copies, ID is the new document and SourceID the original.
type MoveCopyOutcome struct {
	ID          string `json:"id"`
	Action      string `json:"action"`
	Destination string `json:"destination"`
	SourceID    string `json:"sourceId,omitempty"`
}

// MoveCopyFailure records one document the batch could not process.
type MoveCopyFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// MoveCopyResult summarizes a best-effort move/copy batch.
type MoveCopyResult struct {
	BatchID string            `json:"batchId"`
	Results []MoveCopyOutcome `json:"results"`
	Failed  []MoveCopyFailure `json:"failed"`
}
