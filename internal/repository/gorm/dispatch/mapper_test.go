package dispatchgorm

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oggyb/wa-dispatch/internal/domain/dispatch"
)

func TestMapper_PreservesAllFields(t *testing.T) {
	in := &dispatch.Outcome{
		ID:          uuid.New(),
		Destination: "15551234567",
		Text:        dispatch.Step{Content: "hello", Status: dispatch.StatusFailed, Result: `{"error":"x"}`},
		Image: dispatch.ImageStep{
			URL:     "/public/uploads/a.png",
			Caption: "Image from website",
			Status:  dispatch.StatusSent,
			Result:  `{"id":"1"}`,
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	out := toDomain(fromDomain(in))

	if *out != *in {
		t.Fatalf("round trip changed the outcome:\n got %+v\nwant %+v", out, in)
	}
}

func TestDispatchModel_BeforeCreateAssignsID(t *testing.T) {
	m := &DispatchModel{}
	if err := m.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate: %v", err)
	}
	if m.ID == uuid.Nil {
		t.Fatalf("expected an ID to be assigned")
	}
	if (DispatchModel{}).TableName() != "dispatch_records" {
		t.Fatalf("unexpected table name")
	}
}
