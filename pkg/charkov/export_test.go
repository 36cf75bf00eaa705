package charkov

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestExportImportJSON(t *testing.T) {
	original := compileWords(t, "babel", "table", "naïve")

	var buf bytes.Buffer
	if err := original.ExportJSON(&buf); err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}

	imported, err := ImportJSON(&buf)
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}
	if !imported.Equal(original) {
		t.Error("imported chain differs from the original")
	}
	if !bytes.Equal(Encode(imported), Encode(original)) {
		t.Error("imported chain encodes differently")
	}
}

func TestExportLayout(t *testing.T) {
	exported := compileWords(t, "ab").Export()

	if len(exported.Words) != 1 || exported.Words[0] != "ab" {
		t.Errorf("expected words [ab], got %v", exported.Words)
	}
	if len(exported.Contexts) != 3 {
		t.Fatalf("expected 3 contexts, got %d", len(exported.Contexts))
	}
	// Characters sort before boundaries.
	order := [][2]string{{"a", "b"}, {"<S>", "a"}, {"<S>", "<S>"}}
	for i, want := range order {
		if got := exported.Contexts[i].Context; got != want {
			t.Errorf("context %d: expected %v, got %v", i, want, got)
		}
	}
	start := exported.Contexts[2]
	if len(start.Next) != 1 || start.Next[0] != (ExportedNext{Symbol: "a", Weight: 1}) {
		t.Errorf("unexpected start transitions %v", start.Next)
	}
}

func TestImportJSONErrors(t *testing.T) {
	valid := compileWords(t, "ab").Export()

	mutate := func(fn func(*ExportedChain)) string {
		e := ExportedChain{Words: append([]string(nil), valid.Words...)}
		for _, ec := range valid.Contexts {
			ec.Next = append([]ExportedNext(nil), ec.Next...)
			e.Contexts = append(e.Contexts, ec)
		}
		fn(&e)
		data, err := json.Marshal(e)
		if err != nil {
			t.Fatalf("json.Marshal() error = %v", err)
		}
		return string(data)
	}

	testCases := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:  "Not JSON",
			input: "{not json",
		},
		{
			name:    "Multi character symbol",
			input:   mutate(func(e *ExportedChain) { e.Contexts[0].Next[0].Symbol = "ab" }),
			wantErr: ErrMalformed,
		},
		{
			name:    "Start as next symbol",
			input:   mutate(func(e *ExportedChain) { e.Contexts[0].Next[0].Symbol = "<S>" }),
			wantErr: ErrMalformed,
		},
		{
			name:    "End inside context",
			input:   mutate(func(e *ExportedChain) { e.Contexts[1].Context[0] = "<E>" }),
			wantErr: ErrMalformed,
		},
		{
			name:    "Zero weights",
			input:   mutate(func(e *ExportedChain) { e.Contexts[0].Next[0].Weight = 0 }),
			wantErr: ErrMalformed,
		},
		{
			name:    "Empty word",
			input:   mutate(func(e *ExportedChain) { e.Words = append(e.Words, "") }),
			wantErr: ErrMalformed,
		},
		{
			name:    "Missing context",
			input:   mutate(func(e *ExportedChain) { e.Contexts = e.Contexts[:1] }),
			wantErr: ErrInvalidChain,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ch, err := ImportJSON(strings.NewReader(tc.input))
			if err == nil || ch != nil {
				t.Fatalf("expected an error and no chain, got %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
