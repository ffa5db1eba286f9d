package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"workledger/pkg/domain"
)

func TestDefaultCatalogShape(t *testing.T) {
	cat := Default()
	if len(cat.Phases) != 13 {
		t.Fatalf("expected 13 phases, got %d", len(cat.Phases))
	}
	if len(cat.FallbackSteps) != 12 {
		t.Fatalf("expected 12 fallback steps, got %d", len(cat.FallbackSteps))
	}
	if cat.Phases[0].Name != "Preparação do terreno" || cat.Phases[12].Name != "Acabamentos finais" {
		t.Fatalf("unexpected phase order")
	}
	total := 0
	for _, p := range cat.Phases {
		total += len(p.Activities)
	}
	if total != 64 {
		t.Fatalf("expected 64 activities, got %d", total)
	}
	cat.Phases[0].Name = "mutated"
	if Default().Phases[0].Name != "Preparação do terreno" {
		t.Fatalf("Default must return an independent copy")
	}
}

func TestPhaseIndex(t *testing.T) {
	cat := Default()
	cases := []struct {
		name string
		want int
	}{
		{"Preparação do terreno", 0},
		{"Fundações", 1},
		{"Acabamentos finais", 12},
		{"Demolição", 999},
		{CustomPhase, 999},
		{GeneralPhase, 1000},
	}
	for _, tc := range cases {
		if got := cat.PhaseIndex(tc.name); got != tc.want {
			t.Fatalf("PhaseIndex(%q) = %d, want %d", tc.name, got, tc.want)
		}
	}
	if _, ok := cat.Phase("Estrutura"); !ok {
		t.Fatalf("expected Estrutura phase")
	}
}

func TestExpenseCategoryFor(t *testing.T) {
	cases := map[string]domain.ExpenseCategory{
		"Mão de Obra":      domain.ExpenseLabor,
		"Taxas e Projetos": domain.ExpensePermits,
		"Equipamentos":     domain.ExpenseOther,
		"Materiais":        domain.ExpenseMaterial,
		"":                 domain.ExpenseMaterial,
	}
	for in, want := range cases {
		if got := ExpenseCategoryFor(in); got != want {
			t.Fatalf("ExpenseCategoryFor(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestMaterialCategoryOf(t *testing.T) {
	cat := Default()
	if got, ok := cat.MaterialCategoryOf("Brita 1"); !ok || got != "Estrutura" {
		t.Fatalf("expected Estrutura, got %q", got)
	}
	if _, ok := cat.MaterialCategoryOf("Unobtainium"); ok {
		t.Fatalf("expected miss")
	}
}

func TestLoadYAMLOverridesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `phases:
  - name: Demolição
    activities: [Retirada, Descarte]
fallbackSteps: [Único]
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cat, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cat.Phases) != 1 || cat.Phases[0].Activities[1] != "Descarte" {
		t.Fatalf("phases not overridden: %+v", cat.Phases)
	}
	if len(cat.FallbackSteps) != 1 {
		t.Fatalf("fallback not overridden")
	}
	if len(cat.Materials) != len(Default().Materials) {
		t.Fatalf("materials should keep defaults")
	}
	if _, err := LoadYAML(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
	if _, err := ParseYAML([]byte("phases: [{activities: [x]}]")); err == nil {
		t.Fatalf("expected unnamed phase error")
	}
	if _, err := ParseYAML([]byte("phases: [unclosed")); err == nil {
		t.Fatalf("expected decode error")
	}
}
