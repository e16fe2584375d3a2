package service

import (
	"strings"
	"time"

	"github.com/fleetdesk/fleetdesk/internal/constants"
	"github.com/fleetdesk/fleetdesk/internal/models"
	"github.com/fleetdesk/fleetdesk/internal/repository"

	"github.com/shopspring/decimal"
)

// ShipmentService manages shipments, their stops and lumper records.
type ShipmentService struct {
	shipmentRepo repository.ShipmentRepository
	driverRepo   repository.DriverRepository
	brokerRepo   repository.BrokerRepository
}

// NewShipmentService creates a shipment service.
func NewShipmentService(
	shipmentRepo repository.ShipmentRepository,
	driverRepo repository.DriverRepository,
	brokerRepo repository.BrokerRepository,
) *ShipmentService {
	return &ShipmentService{
		shipmentRepo: shipmentRepo,
		driverRepo:   driverRepo,
		brokerRepo:   brokerRepo,
	}
}

// StopInput is one stop in a shipment payload.
type StopInput struct {
	Kind        string
	Name        string
	Address     string
	City        string
	State       string
	Zip         string
	ScheduledAt time.Time
}

// ShipmentInput is the payload for creating or updating a shipment.
type ShipmentInput struct {
	ReferenceCode string
	DriverID      uint
	BrokerID      uint
	Rate          decimal.Decimal
	LoadType      string
	TemperatureF  *int
	BrokerName    string
	BrokerContact string
	BrokerPhone   string
	BrokerEmail   string
	Stops         []StopInput
}

var allowedLoadTypes = map[string]struct{}{
	constants.LoadTypeDryVan:  {},
	constants.LoadTypeReefer:  {},
	constants.LoadTypeFlatbed: {},
}

var allowedStopKinds = map[string]struct{}{
	constants.StopKindPickup:   {},
	constants.StopKindDelivery: {},
}

// shipmentStatusNext is the only legal transition out of each status.
var shipmentStatusNext = map[string]string{
	constants.ShipmentStatusScheduled: constants.ShipmentStatusInTransit,
	constants.ShipmentStatusInTransit: constants.ShipmentStatusDelivered,
}

func (s *ShipmentService) validateInput(input *ShipmentInput) error {
	input.ReferenceCode = strings.TrimSpace(input.ReferenceCode)
	if input.ReferenceCode == "" {
		return ErrInvalidInput
	}
	if input.Rate.IsNegative() {
		return ErrInvalidInput
	}
	if _, ok := allowedLoadTypes[input.LoadType]; !ok {
		return ErrInvalidInput
	}
	if input.LoadType != constants.LoadTypeReefer {
		input.TemperatureF = nil
	}
	for _, stop := range input.Stops {
		if _, ok := allowedStopKinds[stop.Kind]; !ok {
			return ErrInvalidInput
		}
	}
	return nil
}

func buildStops(inputs []StopInput) []models.Stop {
	stops := make([]models.Stop, 0, len(inputs))
	for _, in := range inputs {
		stops = append(stops, models.Stop{
			Kind:        in.Kind,
			Name:        strings.TrimSpace(in.Name),
			Address:     strings.TrimSpace(in.Address),
			City:        strings.TrimSpace(in.City),
			State:       strings.TrimSpace(in.State),
			Zip:         strings.TrimSpace(in.Zip),
			ScheduledAt: in.ScheduledAt,
		})
	}
	return stops
}

// Create creates a shipment in scheduled status together with its stops.
func (s *ShipmentService) Create(input ShipmentInput) (*models.Shipment, error) {
	if err := s.validateInput(&input); err != nil {
		return nil, err
	}

	existing, err := s.shipmentRepo.GetByReferenceCode(input.ReferenceCode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrReferenceExists
	}

	shipment := &models.Shipment{
		ReferenceCode: input.ReferenceCode,
		Rate:          models.NewMoneyFromDecimal(input.Rate),
		Status:        constants.ShipmentStatusScheduled,
		LoadType:      input.LoadType,
		TemperatureF:  input.TemperatureF,
		BrokerName:    strings.TrimSpace(input.BrokerName),
		BrokerContact: strings.TrimSpace(input.BrokerContact),
		BrokerPhone:   strings.TrimSpace(input.BrokerPhone),
		BrokerEmail:   strings.TrimSpace(input.BrokerEmail),
	}
	if err := s.attachParties(shipment, input.DriverID, input.BrokerID); err != nil {
		return nil, err
	}

	if err := s.shipmentRepo.Create(shipment, buildStops(input.Stops)); err != nil {
		return nil, err
	}
	return shipment, nil
}

// attachParties validates and binds driver and broker references. A broker
// record also refreshes the snapshot fields used on pay statements.
func (s *ShipmentService) attachParties(shipment *models.Shipment, driverID, brokerID uint) error {
	if driverID > 0 {
		driver, err := s.driverRepo.GetByID(driverID)
		if err != nil {
			return err
		}
		if driver == nil {
			return ErrNotFound
		}
		id := driver.ID
		shipment.DriverID = &id
	} else {
		shipment.DriverID = nil
	}

	if brokerID > 0 {
		broker, err := s.brokerRepo.GetByID(brokerID)
		if err != nil {
			return err
		}
		if broker == nil {
			return ErrNotFound
		}
		id := broker.ID
		shipment.BrokerID = &id
		if shipment.BrokerName == "" {
			shipment.BrokerName = broker.Name
		}
		if shipment.BrokerContact == "" {
			shipment.BrokerContact = broker.Contact
		}
		if shipment.BrokerPhone == "" {
			shipment.BrokerPhone = broker.Phone
		}
		if shipment.BrokerEmail == "" {
			shipment.BrokerEmail = broker.Email
		}
	} else {
		shipment.BrokerID = nil
	}
	return nil
}

// Get fetches a shipment with relations.
func (s *ShipmentService) Get(id uint) (*models.Shipment, error) {
	shipment, err := s.shipmentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, ErrNotFound
	}
	return shipment, nil
}

// List pages through shipments.
func (s *ShipmentService) List(filter repository.ShipmentListFilter) ([]models.Shipment, int64, error) {
	return s.shipmentRepo.List(filter)
}

// Update applies changes to a shipment and replaces its stop set.
func (s *ShipmentService) Update(id uint, input ShipmentInput) (*models.Shipment, error) {
	shipment, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(&input); err != nil {
		return nil, err
	}

	if input.ReferenceCode != shipment.ReferenceCode {
		existing, err := s.shipmentRepo.GetByReferenceCode(input.ReferenceCode)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != shipment.ID {
			return nil, ErrReferenceExists
		}
	}

	shipment.ReferenceCode = input.ReferenceCode
	shipment.Rate = models.NewMoneyFromDecimal(input.Rate)
	shipment.LoadType = input.LoadType
	shipment.TemperatureF = input.TemperatureF
	shipment.BrokerName = strings.TrimSpace(input.BrokerName)
	shipment.BrokerContact = strings.TrimSpace(input.BrokerContact)
	shipment.BrokerPhone = strings.TrimSpace(input.BrokerPhone)
	shipment.BrokerEmail = strings.TrimSpace(input.BrokerEmail)
	if err := s.attachParties(shipment, input.DriverID, input.BrokerID); err != nil {
		return nil, err
	}

	if err := s.shipmentRepo.Update(shipment); err != nil {
		return nil, err
	}
	if err := s.shipmentRepo.ReplaceStops(shipment.ID, buildStops(input.Stops)); err != nil {
		return nil, err
	}
	return s.Get(shipment.ID)
}

// Advance moves a shipment to the next status. Only the scheduled,
// in_transit, delivered chain is legal; anything else fails.
func (s *ShipmentService) Advance(id uint, target string) (*models.Shipment, error) {
	shipment, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	next, ok := shipmentStatusNext[shipment.Status]
	if !ok || next != target {
		return nil, ErrInvalidTransition
	}
	if err := s.shipmentRepo.UpdateStatus(shipment.ID, target); err != nil {
		return nil, err
	}
	shipment.Status = target
	return shipment, nil
}

// AssignDriver reassigns a shipment to a driver, or unassigns it when
// driverID is zero. Inactive drivers cannot take new loads.
func (s *ShipmentService) AssignDriver(id uint, driverID uint) (*models.Shipment, error) {
	shipment, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if driverID == 0 {
		shipment.DriverID = nil
		shipment.Driver = nil
	} else {
		driver, err := s.driverRepo.GetByID(driverID)
		if err != nil {
			return nil, err
		}
		if driver == nil {
			return nil, ErrNotFound
		}
		if !driver.Active {
			return nil, ErrAccountDisabled
		}
		shipment.DriverID = &driver.ID
		shipment.Driver = driver
	}
	if err := s.shipmentRepo.Update(shipment); err != nil {
		return nil, err
	}
	return shipment, nil
}

// LumperInput is the payload for recording a lumper service.
type LumperInput struct {
	FeeApplied   bool
	PaidBy       string
	Amount       decimal.Decimal
	DriverAmount *decimal.Decimal
	Reason       string
}

var allowedLumperPayers = map[string]struct{}{
	constants.LumperPaidByBroker:  {},
	constants.LumperPaidByCompany: {},
	constants.LumperPaidByDriver:  {},
}

// SetLumper records the lumper service of a shipment. A second call
// replaces the previous record, including its reason.
func (s *ShipmentService) SetLumper(shipmentID uint, input LumperInput) (*models.LumperService, error) {
	shipment, err := s.Get(shipmentID)
	if err != nil {
		return nil, err
	}

	lumper := &models.LumperService{
		ShipmentID: shipment.ID,
		FeeApplied: input.FeeApplied,
		Reason:     strings.TrimSpace(input.Reason),
	}
	if input.FeeApplied {
		if _, ok := allowedLumperPayers[input.PaidBy]; !ok {
			return nil, ErrInvalidInput
		}
		if input.Amount.IsNegative() {
			return nil, ErrInvalidInput
		}
		lumper.PaidBy = input.PaidBy
		lumper.Amount = models.NewMoneyFromDecimal(input.Amount)

		// Driver-paid fees are reimbursed in full unless an explicit
		// partial amount is given.
		driverAmount := decimal.Zero
		if input.PaidBy == constants.LumperPaidByDriver {
			driverAmount = input.Amount
		}
		if input.DriverAmount != nil {
			if input.DriverAmount.IsNegative() || input.DriverAmount.GreaterThan(input.Amount) {
				return nil, ErrInvalidInput
			}
			driverAmount = *input.DriverAmount
		}
		lumper.DriverAmount = models.NewMoneyFromDecimal(driverAmount)
	} else {
		lumper.Amount = models.ZeroMoney()
		lumper.DriverAmount = models.ZeroMoney()
	}

	if err := s.shipmentRepo.UpsertLumper(lumper); err != nil {
		return nil, err
	}
	return lumper, nil
}

// Delete soft deletes a shipment.
func (s *ShipmentService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.shipmentRepo.Delete(id)
}
