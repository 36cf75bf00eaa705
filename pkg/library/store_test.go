package library

import (
	"errors"
	"testing"
)

func TestSetupSchemaIdempotent(t *testing.T) {
	db, _ := setupTestLibrary(t)
	if err := SetupSchema(db); err != nil {
		t.Errorf("second SetupSchema() failed: %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	ctx, l := setupTestLibraryWithChains(t)

	ch, err := l.Load(ctx, "tables")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !ch.Equal(compileWords(t, "babel", "table")) {
		t.Error("loaded chain differs from the saved one")
	}

	_, err = l.Load(ctx, "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for a missing fictionary, got %v", err)
	}
}

func TestSaveReplaces(t *testing.T) {
	ctx, l := setupTestLibraryWithChains(t)

	replacement := compileWords(t, "cable", "fable", "gable", "sable")
	if err := l.Save(ctx, "tables", replacement); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	ch, err := l.Load(ctx, "tables")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !ch.Equal(replacement) {
		t.Error("expected the replacement chain to be loaded")
	}
	infos, _ := l.Infos(ctx)
	if len(infos) != 2 {
		t.Errorf("expected 2 fictionaries after replacing one, got %d", len(infos))
	}
}

func TestSaveInvalidName(t *testing.T) {
	ctx, l := setupTestLibraryWithChains(t)
	for _, name := range []string{"", "../etc", ".hidden", "with space", "a/b"} {
		if err := l.Save(ctx, name, compileWords(t, "abc")); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Save(%q): expected ErrInvalidName, got %v", name, err)
		}
	}
}

func TestInfos(t *testing.T) {
	ctx, l := setupTestLibraryWithChains(t)

	infos, err := l.Infos(ctx)
	if err != nil {
		t.Fatalf("Infos() failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 fictionaries, got %d", len(infos))
	}
	if infos[0].Name != "marbles" || infos[1].Name != "tables" {
		t.Errorf("expected infos sorted by name, got %q, %q", infos[0].Name, infos[1].Name)
	}
	if infos[0].Words != 3 || infos[1].Words != 2 {
		t.Errorf("unexpected word counts %d, %d", infos[0].Words, infos[1].Words)
	}
	if infos[1].Contexts != 10 {
		t.Errorf("expected 10 contexts for 'tables', got %d", infos[1].Contexts)
	}
	if infos[0].Size <= 0 || infos[0].CreatedAt.IsZero() {
		t.Errorf("expected size and creation time to be set, got %+v", infos[0])
	}

	info, err := l.Info(ctx, "tables")
	if err != nil {
		t.Fatalf("Info() failed: %v", err)
	}
	if info != infos[1] {
		t.Errorf("Info() = %+v, want %+v", info, infos[1])
	}
	if _, err = l.Info(ctx, "nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	names, err := l.Names(ctx)
	if err != nil {
		t.Fatalf("Names() failed: %v", err)
	}
	if len(names) != 2 || names[0] != "marbles" || names[1] != "tables" {
		t.Errorf("unexpected names %v", names)
	}
}

func TestRemove(t *testing.T) {
	ctx, l := setupTestLibraryWithChains(t)

	if err := l.Remove(ctx, "tables"); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if _, err := l.Load(ctx, "tables"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected removed fictionary to be gone, got %v", err)
	}
	if _, err := l.Load(ctx, "marbles"); err != nil {
		t.Errorf("expected other fictionary to remain, got %v", err)
	}
	if err := l.Remove(ctx, "tables"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second removal, got %v", err)
	}
}

func TestLoadDamagedRow(t *testing.T) {
	ctx, l := setupTestLibraryWithChains(t)

	if _, err := l.db.ExecContext(ctx, "UPDATE fictionaries SET data = ? WHERE name = ?", []byte("FCTN\x01garbage"), "tables"); err != nil {
		t.Fatalf("setup: corrupting row failed: %v", err)
	}
	ch, err := l.Load(ctx, "tables")
	if err == nil || ch != nil {
		t.Fatal("expected an error and no chain for a damaged row")
	}
	if errors.Is(err, ErrNotFound) {
		t.Errorf("damaged row reported as missing: %v", err)
	}
}

func TestValidateName(t *testing.T) {
	testCases := []struct {
		name    string
		wantErr bool
	}{
		{name: "english"},
		{name: "en_GB-1.0"},
		{name: "français"},
		{name: "", wantErr: true},
		{name: ".hidden", wantErr: true},
		{name: "a/b", wantErr: true},
		{name: `a\b`, wantErr: true},
		{name: "white space", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateName(tc.name)
			if tc.wantErr != (err != nil) {
				t.Errorf("ValidateName(%q) = %v, wantErr %v", tc.name, err, tc.wantErr)
			}
		})
	}
}
