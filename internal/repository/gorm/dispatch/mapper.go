package dispatchgorm

import (
	"github.com/oggyb/wa-dispatch/internal/domain/dispatch"
)

// toDomain maps a DispatchModel row to a domain Outcome.
func toDomain(m *DispatchModel) *dispatch.Outcome {
	return &dispatch.Outcome{
		ID:          m.ID,
		Destination: m.PhoneNumber,
		Text: dispatch.Step{
			Content: m.TextContent,
			Status:  dispatch.Status(m.TextStatus),
			Result:  m.TextResult,
		},
		Image: dispatch.ImageStep{
			URL:     m.ImageURL,
			Caption: m.ImageCaption,
			Status:  dispatch.Status(m.ImageStatus),
			Result:  m.ImageResult,
		},
		CreatedAt: m.CreatedAt,
	}
}

func toDomainMany(models []DispatchModel) []*dispatch.Outcome {
	out := make([]*dispatch.Outcome, len(models))
	for i := range models {
		out[i] = toDomain(&models[i])
	}
	return out
}

// fromDomain maps a domain Outcome to its row.
func fromDomain(o *dispatch.Outcome) *DispatchModel {
	return &DispatchModel{
		ID:           o.ID,
		PhoneNumber:  o.Destination,
		TextContent:  o.Text.Content,
		TextStatus:   string(o.Text.Status),
		TextResult:   o.Text.Result,
		ImageURL:     o.Image.URL,
		ImageCaption: o.Image.Caption,
		ImageStatus:  string(o.Image.Status),
		ImageResult:  o.Image.Result,
		CreatedAt:    o.CreatedAt,
	}
}
