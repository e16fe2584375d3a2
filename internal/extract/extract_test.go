package extract

import (
	"context"
	"errors"
	"testing"
)

type fakeGenerator struct {
	responses map[string][]string // model -> per-attempt responses
	errs      map[string]error
	calls     []string
}

func (f *fakeGenerator) generate(ctx context.Context, model, prompt string, pdf []byte) (string, error) {
	f.calls = append(f.calls, model)
	if err, ok := f.errs[model]; ok {
		return "", err
	}
	queue := f.responses[model]
	if len(queue) == 0 {
		return "", errors.New("model unavailable")
	}
	resp := queue[0]
	f.responses[model] = queue[1:]
	return resp, nil
}

func newTestExtractor(gen generator, models ...string) *Extractor {
	e := New(Config{APIKey: "test-key", Models: models})
	e.gen = gen
	return e
}

const goodResponse = `Here is the extracted data:
{
  "reference_code": "RC-48213",
  "load_type": "reefer",
  "temperature_f": -10,
  "rate": "2450.00",
  "pickups": [{"name": "Cold Chain DC", "city": "Fresno", "state": "CA", "zip": "93722", "scheduled_at": "2026-03-02T08:00:00Z"}],
  "deliveries": [{"name": "Metro Foods", "city": "Denver", "state": "CO", "zip": "80216", "scheduled_at": "2026-03-04T14:00:00Z"}],
  "broker": {"name": "Apex Logistics", "mc_number": "MC-884213"},
  "confidence": 92
}
Let me know if you need anything else.`

func TestExtractParsesWrappedJSON(t *testing.T) {
	gen := &fakeGenerator{responses: map[string][]string{"model-a": {goodResponse}}}
	e := newTestExtractor(gen, "model-a")

	load, err := e.Extract(context.Background(), []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if load.ReferenceCode != "RC-48213" {
		t.Fatalf("reference code = %q", load.ReferenceCode)
	}
	if load.LoadType != "reefer" {
		t.Fatalf("load type = %q", load.LoadType)
	}
	if load.TemperatureF == nil || *load.TemperatureF != -10 {
		t.Fatalf("temperature = %v", load.TemperatureF)
	}
	if len(load.Pickups) != 1 || len(load.Deliveries) != 1 {
		t.Fatalf("stops = %d pickups, %d deliveries", len(load.Pickups), len(load.Deliveries))
	}
	if load.Broker.MCNumber != "MC-884213" {
		t.Fatalf("broker mc = %q", load.Broker.MCNumber)
	}
	if load.Confidence != 92 {
		t.Fatalf("confidence = %d", load.Confidence)
	}
}

func TestExtractFallsBackAcrossModels(t *testing.T) {
	gen := &fakeGenerator{
		responses: map[string][]string{"model-b": {goodResponse}},
		errs:      map[string]error{"model-a": errors.New("503 overloaded")},
	}
	e := newTestExtractor(gen, "model-a", "model-b")

	load, err := e.Extract(context.Background(), []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if load.ReferenceCode != "RC-48213" {
		t.Fatalf("reference code = %q", load.ReferenceCode)
	}
	// Two attempts against the failing model before falling through.
	want := []string{"model-a", "model-a", "model-b"}
	if len(gen.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", gen.calls, want)
	}
	for i, m := range want {
		if gen.calls[i] != m {
			t.Fatalf("calls = %v, want %v", gen.calls, want)
		}
	}
}

func TestExtractRetriesSameModelOnce(t *testing.T) {
	gen := &fakeGenerator{
		responses: map[string][]string{"model-a": {"no json here", goodResponse}},
	}
	e := newTestExtractor(gen, "model-a")

	if _, err := e.Extract(context.Background(), []byte("%PDF-1.4")); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(gen.calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(gen.calls))
	}
}

func TestExtractAllModelsExhausted(t *testing.T) {
	gen := &fakeGenerator{
		errs: map[string]error{"model-a": errors.New("down"), "model-b": errors.New("down")},
	}
	e := newTestExtractor(gen, "model-a", "model-b")

	_, err := e.Extract(context.Background(), []byte("%PDF-1.4"))
	if !errors.Is(err, ErrAllModelsFailed) {
		t.Fatalf("err = %v, want ErrAllModelsFailed", err)
	}
	if len(gen.calls) != 4 {
		t.Fatalf("calls = %d, want 4 (two per model)", len(gen.calls))
	}
}

func TestExtractRequiresAPIKey(t *testing.T) {
	e := New(Config{})
	if _, err := e.Extract(context.Background(), []byte("%PDF-1.4")); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestExtractClampsConfidence(t *testing.T) {
	gen := &fakeGenerator{responses: map[string][]string{"model-a": {`{"reference_code": "X", "confidence": 140}`}}}
	e := newTestExtractor(gen, "model-a")

	load, err := e.Extract(context.Background(), []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if load.Confidence != 100 {
		t.Fatalf("confidence = %d, want 100", load.Confidence)
	}
}

func TestFirstJSONObject(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`, false},
		{"markdown fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`, false},
		{"prose around", `Sure: {"a": {"b": 2}} done`, `{"a": {"b": 2}}`, false},
		{"brace in string", `{"a": "}{"}`, `{"a": "}{"}`, false},
		{"no object", "nothing structured", "", true},
		{"unterminated", `{"a": 1`, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := firstJSONObject(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrNoJSON) {
					t.Fatalf("err = %v, want ErrNoJSON", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("firstJSONObject: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
