package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/meatline/internal/customer/domain"
	"github.com/smallbiznis/meatline/pkg/db/option"
	"github.com/smallbiznis/meatline/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  repository.Repository[domain.Customer]
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		repo:  repository.ProvideStore[domain.Customer](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || req.Password == "" {
		return domain.Customer{}, domain.ErrInvalidRequest
	}

	existing, err := s.repo.FindOne(ctx, &domain.Customer{Email: email})
	if err != nil {
		return domain.Customer{}, err
	}
	if existing != nil {
		return domain.Customer{}, domain.ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Customer{}, err
	}

	customer := domain.Customer{
		ID:                  s.genID.Generate(),
		Name:                name,
		Email:               email,
		Password:            string(hashed),
		PreferredProductIDs: datatypes.NewJSONSlice(domain.TruncatePreferred(req.PreferredProductIDs)),
	}
	if err := s.repo.Create(ctx, &customer); err != nil {
		return domain.Customer{}, err
	}

	s.log.Info("customer created", zap.Int64("customer_id", int64(customer.ID)))
	return customer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) ([]domain.Customer, error) {
	opts := []option.QueryOption{option.WithOrder("name")}
	if search := strings.TrimSpace(req.Search); search != "" {
		pattern := "%" + search + "%"
		// Numeric terms also match the customer ID.
		if id, err := strconv.ParseInt(search, 10, 64); err == nil {
			opts = append(opts, option.Where("id = ? OR name LIKE ?", id, pattern))
		} else {
			opts = append(opts, option.Where("name LIKE ?", pattern))
		}
	}
	if req.Limit > 0 {
		opts = append(opts, option.WithLimit(req.Limit))
	}

	items, err := s.repo.Find(ctx, &domain.Customer{}, opts...)
	if err != nil {
		return nil, err
	}

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		customers = append(customers, *item)
	}
	return customers, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Customer, error) {
	customer, err := s.repo.FindOne(ctx, &domain.Customer{ID: id})
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *customer, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	customer, err := s.repo.FindOne(ctx, &domain.Customer{ID: req.ID})
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Customer{}, domain.ErrInvalidRequest
		}
		customer.Name = name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return domain.Customer{}, domain.ErrInvalidRequest
		}
		if email != customer.Email {
			existing, err := s.repo.FindOne(ctx, &domain.Customer{Email: email})
			if err != nil {
				return domain.Customer{}, err
			}
			if existing != nil {
				return domain.Customer{}, domain.ErrEmailExists
			}
			customer.Email = email
		}
	}
	if req.Password != nil && *req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return domain.Customer{}, err
		}
		customer.Password = string(hashed)
	}
	if req.PreferredProductIDs != nil {
		customer.PreferredProductIDs = datatypes.NewJSONSlice(domain.TruncatePreferred(*req.PreferredProductIDs))
	}

	if err := s.repo.Save(ctx, customer); err != nil {
		return domain.Customer{}, err
	}
	return *customer, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	customer, err := s.repo.FindOne(ctx, &domain.Customer{ID: id})
	if err != nil {
		return err
	}
	if customer == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, &domain.Customer{ID: id})
}
