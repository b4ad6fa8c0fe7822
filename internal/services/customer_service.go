package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"orderdesk/internal/domain"
	"orderdesk/internal/repos"
	"orderdesk/internal/validate"
)

type CustomerService struct {
	Customers *repos.CustomerRepo
}

func NewCustomerService(customers *repos.CustomerRepo) *CustomerService {
	return &CustomerService{Customers: customers}
}

func (s *CustomerService) Get(ctx context.Context, ownerID, id string) (*domain.Customer, error) {
	c, err := s.Customers.Find(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("customer")
	}
	return c, nil
}

func (s *CustomerService) List(ctx context.Context, ownerID string) ([]domain.Customer, error) {
	return s.Customers.List(ctx, ownerID)
}

type CustomerInput struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (s *CustomerService) Create(ctx context.Context, ownerID string, in CustomerInput) (*domain.Customer, error) {
	email, ok := validate.Email(in.Email)
	if !ok {
		return nil, domain.Validation("invalid email")
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return nil, domain.Validation("name must be 1-100 characters")
	}
	phone, ok := validate.Phone(in.Phone)
	if !ok {
		return nil, domain.Validation("invalid phone number")
	}

	c := domain.Customer{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Email:   email,
		Name:    name,
		Phone:   phone,
	}
	if err := s.Customers.Insert(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes a customer, refused while any of their orders exist.
func (s *CustomerService) Delete(ctx context.Context, ownerID, id string) error {
	c, err := s.Customers.Find(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.NotFound("customer")
	}
	n, err := s.Customers.CountOrders(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.InvalidState("customer has orders and cannot be deleted")
	}
	if err := s.Customers.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("customer")
		}
		return err
	}
	return nil
}
