package constants

// Shipment lifecycle statuses.
const (
	ShipmentStatusScheduled = "scheduled"
	ShipmentStatusInTransit = "in_transit"
	ShipmentStatusDelivered = "delivered"
)

// Stop kinds.
const (
	StopKindPickup   = "pickup"
	StopKindDelivery = "delivery"
)

// Lumper fee payer values.
const (
	LumperPaidByBroker  = "broker"
	LumperPaidByCompany = "company"
	LumperPaidByDriver  = "driver"
)

// Load document statuses.
const (
	DocumentStatusProcessing = "processing"
	DocumentStatusUploaded   = "uploaded"
	DocumentStatusFailed     = "failed"
)

// Load types reported by rate-confirmation extraction.
const (
	LoadTypeDryVan  = "dry_van"
	LoadTypeReefer  = "reefer"
	LoadTypeFlatbed = "flatbed"
)

// Queue names.
const (
	QueueDefault   = "default"
	QueueDocuments = "documents"
)

// Asynq task type names.
const (
	TaskDocumentProcess = "document:process"
)

// Activity log actions.
const (
	ActivityDocumentUploaded  = "document_uploaded"
	ActivityShipmentCreated   = "shipment_created"
	ActivityShipmentAssigned  = "shipment_assigned"
	ActivityShipmentDelivered = "shipment_delivered"
	ActivityStatementCreated  = "statement_created"
)
