package application

import (
	"context"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
	repo "github.com/oksasatya/recipe-api/internal/domain/repository"
)

// AttributeService manages one attribute kind (tags or ingredients).
type AttributeService struct {
	Repo repo.AttributeRepository
	Tx   repo.Transactor
}

func NewAttributeService(attrs repo.AttributeRepository, tx repo.Transactor) *AttributeService {
	return &AttributeService{Repo: attrs, Tx: tx}
}

func (s *AttributeService) Kind() entity.AttributeKind { return s.Repo.Kind() }

func (s *AttributeService) List(ctx context.Context, ownerID int64, f entity.AttributeFilter) ([]*entity.Attribute, error) {
	return s.Repo.List(ctx, ownerID, f)
}

func (s *AttributeService) Get(ctx context.Context, ownerID, id int64) (*entity.Attribute, error) {
	return s.Repo.Get(ctx, ownerID, id)
}

func (s *AttributeService) Create(ctx context.Context, ownerID int64, name string) (*entity.Attribute, error) {
	clean, err := entity.CleanName("name", name)
	if err != nil {
		return nil, err
	}
	a := &entity.Attribute{OwnerID: ownerID, Name: clean}
	if err := s.Repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Update renames an attribute. A nil name leaves it unchanged.
func (s *AttributeService) Update(ctx context.Context, ownerID, id int64, name *string) (*entity.Attribute, error) {
	var clean string
	if name != nil {
		var err error
		if clean, err = entity.CleanName("name", *name); err != nil {
			return nil, err
		}
	}

	var out *entity.Attribute
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := s.Repo.Get(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if name != nil && clean != a.Name {
			a.Name = clean
			if err := s.Repo.Update(ctx, a); err != nil {
				return err
			}
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AttributeService) Delete(ctx context.Context, ownerID, id int64) error {
	return s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.Repo.Delete(ctx, ownerID, id)
	})
}
