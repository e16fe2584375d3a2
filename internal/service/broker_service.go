package service

import (
	"strings"

	"github.com/fleetdesk/fleetdesk/internal/models"
	"github.com/fleetdesk/fleetdesk/internal/repository"
)

// BrokerService manages broker records.
type BrokerService struct {
	brokerRepo repository.BrokerRepository
}

// NewBrokerService creates a broker service.
func NewBrokerService(brokerRepo repository.BrokerRepository) *BrokerService {
	return &BrokerService{brokerRepo: brokerRepo}
}

// BrokerInput is the payload for creating or updating a broker.
type BrokerInput struct {
	Name     string
	Contact  string
	Phone    string
	Email    string
	MCNumber string
}

// Create creates a broker.
func (s *BrokerService) Create(input BrokerInput) (*models.Broker, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	broker := &models.Broker{
		Name:     name,
		Contact:  strings.TrimSpace(input.Contact),
		Phone:    strings.TrimSpace(input.Phone),
		Email:    strings.TrimSpace(input.Email),
		MCNumber: strings.TrimSpace(input.MCNumber),
	}
	if err := s.brokerRepo.Create(broker); err != nil {
		return nil, err
	}
	return broker, nil
}

// Get fetches a broker.
func (s *BrokerService) Get(id uint) (*models.Broker, error) {
	broker, err := s.brokerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if broker == nil {
		return nil, ErrNotFound
	}
	return broker, nil
}

// List pages through brokers.
func (s *BrokerService) List(filter repository.BrokerListFilter) ([]models.Broker, int64, error) {
	return s.brokerRepo.List(filter)
}

// Update applies changes to a broker.
func (s *BrokerService) Update(id uint, input BrokerInput) (*models.Broker, error) {
	broker, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	broker.Name = name
	broker.Contact = strings.TrimSpace(input.Contact)
	broker.Phone = strings.TrimSpace(input.Phone)
	broker.Email = strings.TrimSpace(input.Email)
	broker.MCNumber = strings.TrimSpace(input.MCNumber)
	if err := s.brokerRepo.Update(broker); err != nil {
		return nil, err
	}
	return broker, nil
}

// FindOrCreateByMC matches a broker by MC number, creating one when the
// number is unknown. Used by rate confirmation extraction.
func (s *BrokerService) FindOrCreateByMC(input BrokerInput) (*models.Broker, error) {
	mc := strings.TrimSpace(input.MCNumber)
	if mc != "" {
		existing, err := s.brokerRepo.GetByMCNumber(mc)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}
	return s.Create(input)
}

// Delete removes a broker.
func (s *BrokerService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.brokerRepo.Delete(id)
}
