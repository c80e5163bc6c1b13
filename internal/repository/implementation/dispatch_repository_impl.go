package implementation

import (
	"context"
	"errors"

	"multimodal-assistant-be/internal/entity"
	"multimodal-assistant-be/internal/mapper"
	"multimodal-assistant-be/internal/model"
	"multimodal-assistant-be/internal/repository/contract"
	"multimodal-assistant-be/internal/repository/specification"

	"gorm.io/gorm"
)

type DispatchRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DispatchMapper
}

func NewDispatchRepository(db *gorm.DB) contract.DispatchRepository {
	return &DispatchRepositoryImpl{
		db:     db,
		mapper: mapper.NewDispatchMapper(),
	}
}

func (r *DispatchRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DispatchRepositoryImpl) Create(ctx context.Context, dispatch *entity.Dispatch) error {
	m := r.mapper.ToModel(dispatch)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*dispatch = *r.mapper.ToEntity(m)
	return nil
}

func (r *DispatchRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Dispatch, error) {
	var m model.Dispatch
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DispatchRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Dispatch, error) {
	var models []*model.Dispatch
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DispatchRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Dispatch{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
