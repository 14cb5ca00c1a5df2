package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/meatline/internal/product/domain"
	"github.com/smallbiznis/meatline/pkg/db/option"
	"github.com/smallbiznis/meatline/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo repository.Repository[domain.Product]
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("product.service"),
		repo: repository.ProvideStore[domain.Product](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProductRequest) (domain.Product, error) {
	id := strings.TrimSpace(req.ID)
	name := strings.TrimSpace(req.Name)
	category := strings.TrimSpace(req.Category)
	if id == "" || name == "" || category == "" {
		return domain.Product{}, domain.ErrInvalidRequest
	}
	if req.Price.IsNegative() {
		return domain.Product{}, domain.ErrInvalidPrice
	}

	existing, err := s.repo.FindOne(ctx, &domain.Product{ID: id})
	if err != nil {
		return domain.Product{}, err
	}
	if existing != nil {
		return domain.Product{}, domain.ErrAlreadyExists
	}

	product := domain.Product{
		ID:       id,
		Name:     name,
		Price:    req.Price,
		Category: category,
	}
	if err := s.repo.Create(ctx, &product); err != nil {
		return domain.Product{}, err
	}

	s.log.Info("product created", zap.String("product_id", product.ID))
	return product, nil
}

func (s *Service) List(ctx context.Context, req domain.ListProductRequest) ([]domain.Product, error) {
	opts := []option.QueryOption{option.WithOrder("id")}
	if search := strings.TrimSpace(req.Search); search != "" {
		pattern := "%" + search + "%"
		opts = append(opts, option.Where("id LIKE ? OR name LIKE ?", pattern, pattern))
	}
	if req.Limit > 0 {
		opts = append(opts, option.WithLimit(req.Limit))
	}

	items, err := s.repo.Find(ctx, &domain.Product{}, opts...)
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		products = append(products, *item)
	}
	return products, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.repo.FindOne(ctx, &domain.Product{ID: strings.TrimSpace(id)})
	if err != nil {
		return domain.Product{}, err
	}
	if product == nil {
		return domain.Product{}, domain.ErrNotFound
	}
	return *product, nil
}

// Update edits catalog fields. A price change never touches line items
// already written; their unit price was captured at order time.
func (s *Service) Update(ctx context.Context, req domain.UpdateProductRequest) (domain.Product, error) {
	product, err := s.repo.FindOne(ctx, &domain.Product{ID: strings.TrimSpace(req.ID)})
	if err != nil {
		return domain.Product{}, err
	}
	if product == nil {
		return domain.Product{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, domain.ErrInvalidRequest
		}
		product.Name = name
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return domain.Product{}, domain.ErrInvalidPrice
		}
		product.Price = *req.Price
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return domain.Product{}, domain.ErrInvalidRequest
		}
		product.Category = category
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	product, err := s.repo.FindOne(ctx, &domain.Product{ID: strings.TrimSpace(id)})
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, &domain.Product{ID: product.ID})
}
