package tasks

import (
	"errors"
	"testing"

	"github.com/hibiken/asynq"
)

func TestExportTaskRoundTrip(t *testing.T) {
	task, err := NewExportTask(4, 2, "cid")
	if err != nil {
		t.Fatal(err)
	}
	if task.Type() != TypeResumeExport {
		t.Fatalf("type = %q", task.Type())
	}
	p, err := ParseExportPayload(task)
	if err != nil {
		t.Fatal(err)
	}
	if p != (ExportPayload{ResumeID: 4, UserID: 2, CorrelationID: "cid"}) {
		t.Fatalf("payload = %+v", p)
	}
}

func TestParseExportPayloadSkipsRetry(t *testing.T) {
	for _, raw := range []string{"not json", `{"user_id":1}`} {
		_, err := ParseExportPayload(asynq.NewTask(TypeResumeExport, []byte(raw)))
		if !errors.Is(err, asynq.SkipRetry) {
			t.Errorf("%q: err = %v, want SkipRetry", raw, err)
		}
	}
}
