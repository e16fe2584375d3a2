package worker

import (
	"context"
	"encoding/json"

	"github.com/fleetdesk/fleetdesk/internal/logger"
	"github.com/fleetdesk/fleetdesk/internal/provider"
	"github.com/fleetdesk/fleetdesk/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer processes background tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates a consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register registers task handlers.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskDocumentProcess, c.handleDocumentProcess)
}

func (c *Consumer) handleDocumentProcess(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_document_process_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.DocumentProcessPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_document_process_unmarshal_failed", "error", err)
		return err
	}
	if payload.DocumentID == 0 || payload.TempBlobID == "" {
		logger.Debugw("worker_document_process_skip_invalid_payload",
			"document_id", payload.DocumentID,
			"temp_blob_id", payload.TempBlobID,
		)
		return nil
	}
	if c.DocumentService == nil {
		logger.Warnw("worker_document_process_skip_service_nil", "document_id", payload.DocumentID)
		return nil
	}
	if err := c.DocumentService.ProcessStored(ctx, payload); err != nil {
		logger.Warnw("worker_document_process_failed",
			"document_id", payload.DocumentID,
			"shipment_id", payload.ShipmentID,
			"error", err,
		)
		return err
	}
	return nil
}
