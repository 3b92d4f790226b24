package commands

import (
	"context"
	"errors"
	"testing"
	"time"
)

type rebuildMessage struct {
	Format string
}

func (rebuildMessage) Type() string { return "picogen.test.rebuild" }

func (m rebuildMessage) Validate() error {
	if m.Format == "" {
		return errors.New("format is required")
	}
	return nil
}

type publishMessage struct{}

func (publishMessage) Type() string { return "picogen.test.publish" }

func (publishMessage) Validate() error { return nil }

func TestDispatchRetriesHalfWrittenTemplate(t *testing.T) {
	t.Parallel()

	var formats []string
	handler := NewHandler(func(_ context.Context, msg rebuildMessage) error {
		formats = append(formats, msg.Format)
		if len(formats) == 1 {
			return errors.New("templates/html/post.html: unexpected EOF")
		}
		return nil
	}, WithTimeout[rebuildMessage](time.Second))

	if err := Dispatch[rebuildMessage](context.Background(), handler, rebuildMessage{Format: "gemini"}, 1); err != nil {
		t.Fatalf("expected the retry to succeed, got %v", err)
	}
	if len(formats) != 2 || formats[1] != "gemini" {
		t.Fatalf("expected two gemini attempts, got %v", formats)
	}
}

func TestDispatchGivesUpAfterRetries(t *testing.T) {
	t.Parallel()

	attempts := 0
	handler := NewHandler(func(context.Context, publishMessage) error {
		attempts++
		return errors.New("target/html is read-only")
	}, WithTimeout[publishMessage](time.Second))

	if err := Dispatch[publishMessage](context.Background(), handler, publishMessage{}, 2); err == nil {
		t.Fatal("expected the last failure to surface")
	}
	if attempts != 3 {
		t.Fatalf("expected one attempt plus two retries, got %d", attempts)
	}
}
