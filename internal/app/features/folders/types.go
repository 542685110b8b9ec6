package folders

import "github.com/clubvault/clubvault/internal/domain/models"

// CreateRequest is the body for POST /api/folders.
type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parent      string `json:"parent"`
}

// UpdateRequest is the body for PUT and PATCH /api/folders/{id}.
// Nil fields were absent from the payload and are left unchanged; the two
// verbs differ only in how a rename cascades to the documents collection.
type UpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsDefault   *bool   `json:"isDefault"`
}

// Summary is one folder plus its live document count.
type Summary struct {
	models.Folder
	DocumentCount int64 `json:"documentCount"`
}

// ListData is the payload for GET /api/folders.
type ListData struct {
	Folders        []Summary `json:"folders"`
	TotalDocuments int64     `json:"totalDocuments"`
}

// DeleteSummary reports the outcome of a cascading folder delete.
type DeleteSummary struct {
	Folder           DeletedFolder `json:"folder"`
	DocumentsDeleted int64         `json:"documentsDeleted"`
}

// DeletedFolder identifies the folder that was removed.
type DeletedFolder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BulkDeleteRequest is the body for DELETE /api/folders.
type BulkDeleteRequest struct {
	FolderIDs []string `json:"folderIds"`
}

// BulkDeleteFailure records one folder id that could not be deleted.
type BulkDeleteFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BulkDeleteResult aggregates a best-effort bulk delete. Partial success is
// the normal outcome; callers must inspect Failed, not the HTTP status.
type BulkDeleteResult struct {
	BatchID          string              `json:"batchId"`
	Successful       []string            `json:"successful"`
	Failed           []BulkDeleteFailure `json:"failed"`
	DocumentsDeleted int64               `json:"documentsDeleted"`
}
