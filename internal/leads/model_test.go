package leads

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   error
	}{
		{"complete", Record{Name: "Иван", Phone: "+79990001122", Telegram: "@ivan"}, nil},
		{"missing name", Record{Phone: "+7999", Telegram: "@ivan"}, ErrMissingName},
		{"blank name", Record{Name: "   ", Phone: "+7999", Telegram: "@ivan"}, ErrMissingName},
		{"missing phone", Record{Name: "Иван", Telegram: "@ivan"}, ErrMissingPhone},
		{"missing telegram", Record{Name: "Иван", Phone: "+7999"}, ErrMissingTelegram},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.record.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestPayloadHasExactlyFiveFields(t *testing.T) {
	sentAt := time.Date(2025, 12, 1, 9, 30, 15, 123456789, time.FixedZone("MSK", 3*3600))
	rec := Record{Name: "Иван", Phone: "+79990001122", Telegram: "@ivan", Source: "Hero - Получить расчет"}

	data, err := json.Marshal(rec.Payload(sentAt))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var body map[string]string
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body) != 5 {
		t.Fatalf("expected 5 fields, got %d: %v", len(body), body)
	}
	if body["timestamp"] != "2025-12-01T06:30:15.123Z" {
		t.Fatalf("unexpected timestamp %q", body["timestamp"])
	}
	if body["source"] != "Hero - Получить расчет" {
		t.Fatalf("unexpected source %q", body["source"])
	}
}

func TestPayloadDefaultsSource(t *testing.T) {
	p := Record{Name: "a", Phone: "b", Telegram: "c"}.Payload(time.Now())
	if p.Source != DefaultSource {
		t.Fatalf("expected default source, got %q", p.Source)
	}
}
