package events

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bshishov/timelinewiki/internal/core/domain"
	"github.com/bshishov/timelinewiki/internal/logger"
)

func TestLogPublisherWritesChange(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(logger.New(&buf, "test", zerolog.InfoLevel))

	change := domain.ChangeEnvelope{ChangeID: "chg-1", ChangeType: "event.deleted", ResourceType: "event", ResourceID: "e1", Actor: "api"}
	if err := pub.Publish(context.Background(), "timelinewiki.event.deleted", change); err != nil {
		t.Fatalf("publish: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"topic":"timelinewiki.event.deleted"`, `"change_id":"chg-1"`, `"resource":"event/e1"`, `"message":"change published"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log line missing %s: %s", want, out)
		}
	}
}
