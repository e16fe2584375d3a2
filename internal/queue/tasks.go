package queue

import (
	"encoding/json"

	"github.com/fleetdesk/fleetdesk/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskDocumentProcess runs the compression and upload pipeline for a
	// staged document.
	TaskDocumentProcess = constants.TaskDocumentProcess
)

// DocumentProcessPayload references a staged document blob. The worker
// reads the blob from temp storage by TempBlobID and owns its cleanup.
type DocumentProcessPayload struct {
	DocumentID uint   `json:"document_id"`
	ShipmentID uint   `json:"shipment_id"`
	TempBlobID string `json:"temp_blob_id"`
	Filename   string `json:"filename"`
	Actor      string `json:"actor"`
}

// NewDocumentProcessTask creates a document processing task.
func NewDocumentProcessTask(payload DocumentProcessPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDocumentProcess, body), nil
}
