package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rvworks/servicedesk/internal/model"
	"github.com/rvworks/servicedesk/internal/repository"
)

// DirectoryService covers the customer, RV and parts catalog CRUD. All
// reads and writes are scoped to the caller's dealership.
type DirectoryService struct {
	customers repository.CustomerRepository
	rvs       repository.RVRepository
	parts     repository.PartRepository
}

func NewDirectoryService(
	customers repository.CustomerRepository,
	rvs repository.RVRepository,
	parts repository.PartRepository,
) *DirectoryService {
	return &DirectoryService{customers: customers, rvs: rvs, parts: parts}
}

type CustomerInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (s *DirectoryService) CreateCustomer(ctx context.Context, principal model.Principal, input CustomerInput) (*model.Customer, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	now := time.Now().UTC()
	c := &model.Customer{
		ID:           uuid.New(),
		DealershipID: principal.DealershipID,
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *DirectoryService) GetCustomer(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Customer, error) {
	c, err := s.customers.GetByID(ctx, principal.DealershipID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, id)
		}
		return nil, err
	}
	return c, nil
}

func (s *DirectoryService) ListCustomers(ctx context.Context, principal model.Principal, search string) ([]model.Customer, error) {
	return s.customers.List(ctx, principal.DealershipID, search)
}

func (s *DirectoryService) UpdateCustomer(ctx context.Context, principal model.Principal, id uuid.UUID, input CustomerInput) (*model.Customer, error) {
	c, err := s.GetCustomer(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if input.Name != "" {
		c.Name = input.Name
	}
	c.Email = input.Email
	c.Phone = input.Phone
	c.UpdatedAt = time.Now().UTC()
	if err := s.customers.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

type RVInput struct {
	CustomerID uuid.UUID `json:"customerId"`
	Year       int       `json:"year"`
	Make       string    `json:"make"`
	Model      string    `json:"model"`
	VIN        string    `json:"vin"`
	Nickname   *string   `json:"nickname"`
	Notes      *string   `json:"notes"`
}

func (s *DirectoryService) CreateRV(ctx context.Context, principal model.Principal, input RVInput) (*model.RV, error) {
	if input.CustomerID == uuid.Nil {
		return nil, fmt.Errorf("%w: customerId is required", ErrValidation)
	}
	if _, err := s.GetCustomer(ctx, principal, input.CustomerID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	rv := &model.RV{
		ID:           uuid.New(),
		DealershipID: principal.DealershipID,
		CustomerID:   input.CustomerID,
		Year:         input.Year,
		Make:         input.Make,
		Model:        input.Model,
		VIN:          input.VIN,
		Nickname:     input.Nickname,
		Notes:        input.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.rvs.Create(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *DirectoryService) GetRV(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.RV, error) {
	rv, err := s.rvs.GetByID(ctx, principal.DealershipID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: rv %s", ErrNotFound, id)
		}
		return nil, err
	}
	return rv, nil
}

func (s *DirectoryService) ListRVsByCustomer(ctx context.Context, principal model.Principal, customerID uuid.UUID) ([]model.RV, error) {
	return s.rvs.ListByCustomer(ctx, principal.DealershipID, customerID)
}

type PartInput struct {
	Name        string  `json:"name"`
	SKU         *string `json:"sku"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	InStockQty  int     `json:"inStockQty"`
}

func (s *DirectoryService) CreatePart(ctx context.Context, principal model.Principal, input PartInput) (*model.Part, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if input.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	now := time.Now().UTC()
	p := &model.Part{
		ID:           uuid.New(),
		DealershipID: principal.DealershipID,
		Name:         input.Name,
		SKU:          input.SKU,
		Description:  input.Description,
		Price:        input.Price,
		InStockQty:   input.InStockQty,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.parts.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *DirectoryService) GetPart(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Part, error) {
	p, err := s.parts.GetByID(ctx, principal.DealershipID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: part %s", ErrNotFound, id)
		}
		return nil, err
	}
	return p, nil
}

func (s *DirectoryService) ListParts(ctx context.Context, principal model.Principal, search string) ([]model.Part, error) {
	return s.parts.List(ctx, principal.DealershipID, search)
}

func (s *DirectoryService) UpdatePart(ctx context.Context, principal model.Principal, id uuid.UUID, input PartInput) (*model.Part, error) {
	p, err := s.GetPart(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if input.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if input.Name != "" {
		p.Name = input.Name
	}
	p.SKU = input.SKU
	p.Description = input.Description
	p.Price = input.Price
	p.InStockQty = input.InStockQty
	p.UpdatedAt = time.Now().UTC()
	if err := s.parts.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
