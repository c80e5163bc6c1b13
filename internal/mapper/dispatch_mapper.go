package mapper

import (
	"encoding/json"

	"multimodal-assistant-be/internal/entity"
	"multimodal-assistant-be/internal/model"

	"gorm.io/datatypes"
)

type DispatchMapper struct{}

func NewDispatchMapper() *DispatchMapper {
	return &DispatchMapper{}
}

func (m *DispatchMapper) ToEntity(d *model.Dispatch) *entity.Dispatch {
	if d == nil {
		return nil
	}

	var details map[string]interface{}
	if len(d.Details) > 0 {
		_ = json.Unmarshal(d.Details, &details)
	}

	return &entity.Dispatch{
		Id:            d.Id,
		SessionId:     d.SessionId,
		OriginalName:  d.OriginalName,
		Extension:     d.Extension,
		RequestedMode: d.RequestedMode,
		ResolvedMode:  d.ResolvedMode,
		Outcome:       d.Outcome,
		Status:        d.Status,
		ErrorMessage:  d.ErrorMessage,
		DurationMs:    d.DurationMs,
		Details:       details,
		CreatedAt:     d.CreatedAt,
	}
}

func (m *DispatchMapper) ToModel(d *entity.Dispatch) *model.Dispatch {
	if d == nil {
		return nil
	}

	var details datatypes.JSON
	if len(d.Details) > 0 {
		if raw, err := json.Marshal(d.Details); err == nil {
			details = datatypes.JSON(raw)
		}
	}

	return &model.Dispatch{
		Id:            d.Id,
		SessionId:     d.SessionId,
		OriginalName:  d.OriginalName,
		Extension:     d.Extension,
		RequestedMode: d.RequestedMode,
		ResolvedMode:  d.ResolvedMode,
		Outcome:       d.Outcome,
		Status:        d.Status,
		ErrorMessage:  d.ErrorMessage,
		DurationMs:    d.DurationMs,
		Details:       details,
		CreatedAt:     d.CreatedAt,
	}
}

func (m *DispatchMapper) ToEntities(models []*model.Dispatch) []*entity.Dispatch {
	entities := make([]*entity.Dispatch, len(models))
	for i, d := range models {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
