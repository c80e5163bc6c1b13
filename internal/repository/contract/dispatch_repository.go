package contract

import (
	"context"

	"multimodal-assistant-be/internal/entity"
	"multimodal-assistant-be/internal/repository/specification"
)

type DispatchRepository interface {
	Create(ctx context.Context, dispatch *entity.Dispatch) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Dispatch, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Dispatch, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
