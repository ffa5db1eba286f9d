// Package catalog holds the reference data used to generate schedules and to
// classify materials and expenses.
package catalog

import (
	"workledger/pkg/domain"
)

// Phase is a named construction phase with its ordered activities.
type Phase struct {
	Name       string   `yaml:"name" json:"name"`
	Activities []string `yaml:"activities" json:"activities"`
}

// Subcategory groups catalog items under a category.
type Subcategory struct {
	Name  string   `yaml:"name" json:"name"`
	Items []string `yaml:"items" json:"items"`
}

// Category is the top level of a taxonomy.
type Category struct {
	Name          string        `yaml:"name" json:"name"`
	Subcategories []Subcategory `yaml:"subcategories" json:"subcategories"`
}

// Catalog is the immutable reference data consulted by the schedule
// generator, the phase sorter and the expense classifier.
type Catalog struct {
	Phases        []Phase    `yaml:"phases" json:"phases"`
	FallbackSteps []string   `yaml:"fallbackSteps" json:"fallbackSteps"`
	Materials     []Category `yaml:"materials" json:"materials"`
	Expenses      []Category `yaml:"expenses" json:"expenses"`
}

// Group names that sort after every catalog phase.
const (
	CustomPhase  = "Personalizadas"
	GeneralPhase = "Geral"
)

// Sort keys for phases outside the catalog.
const (
	unmatchedIndex = 999
	generalIndex   = 1000
)

// PhaseIndex returns the sort key of a phase name: its catalog position, 999
// for unknown phases and "Personalizadas", 1000 for "Geral".
func (c *Catalog) PhaseIndex(name string) int {
	if name == GeneralPhase {
		return generalIndex
	}
	for i, p := range c.Phases {
		if p.Name == name {
			return i
		}
	}
	return unmatchedIndex
}

// Phase looks up a phase by name.
func (c *Catalog) Phase(name string) (Phase, bool) {
	for _, p := range c.Phases {
		if p.Name == name {
			return p, true
		}
	}
	return Phase{}, false
}

// MaterialCategoryOf returns the category that lists item, if any.
func (c *Catalog) MaterialCategoryOf(item string) (string, bool) {
	for _, cat := range c.Materials {
		for _, sub := range cat.Subcategories {
			for _, it := range sub.Items {
				if it == item {
					return cat.Name, true
				}
			}
		}
	}
	return "", false
}

// ExpenseCategoryFor maps an expense catalog category to the ledger category.
func ExpenseCategoryFor(catalogCategory string) domain.ExpenseCategory {
	switch catalogCategory {
	case "Mão de Obra":
		return domain.ExpenseLabor
	case "Taxas e Projetos":
		return domain.ExpensePermits
	case "Equipamentos":
		return domain.ExpenseOther
	default:
		return domain.ExpenseMaterial
	}
}

// Default returns the built-in catalog. Each call returns a fresh copy.
func Default() *Catalog {
	return &Catalog{
		Phases: []Phase{
			{Name: "Preparação do terreno", Activities: []string{"Levantamento topográfico", "Limpeza do terreno", "Terraplenagem", "Locação da obra", "Montagem do canteiro"}},
			{Name: "Fundações", Activities: []string{"Escavação", "Sapatas / baldrames / radier", "Armadura e formas", "Concretagem", "Impermeabilização"}},
			{Name: "Estrutura", Activities: []string{"Pilares", "Vigas", "Lajes", "Escadas estruturais"}},
			{Name: "Alvenaria de vedação", Activities: []string{"Paredes externas", "Paredes internas", "Vergas e contravergas", "Chumbamento"}},
			{Name: "Cobertura", Activities: []string{"Estrutura", "Telhamento", "Rufos e cumeeiras", "Calhas"}},
			{Name: "Instalações Hidráulicas", Activities: []string{"Água fria", "Água quente", "Esgoto", "Pluvial", "Caixa d’água"}},
			{Name: "Instalações Elétricas", Activities: []string{"Entrada", "Quadro", "Circuitos", "Iluminação", "Tomadas", "Pontos especiais", "Dados/TV/internet"}},
			{Name: "Revestimentos", Activities: []string{"Paredes internas", "Áreas molhadas", "Contrapiso", "Piso interno", "Piso externo", "Forros"}},
			{Name: "Pintura", Activities: []string{"Preparo", "Pintura interna", "Pintura externa", "Esquadrias / metais"}},
			{Name: "Louças", Activities: []string{"Vasos sanitários", "Cubas", "Tanques", "Acessórios"}},
			{Name: "Metais", Activities: []string{"Torneiras", "Misturadores", "Ducha higiênica", "Chuveiro", "Válvulas", "Ralos"}},
			{Name: "Esquadrias", Activities: []string{"Portas internas", "Portas externas", "Janelas", "Vidros", "Ferragens"}},
			{Name: "Acabamentos finais", Activities: []string{"Rodapés / guarnições", "Soleiras / peitoris", "Acessórios", "Box / espelhos", "Limpeza final"}},
		},
		FallbackSteps: []string{
			"Aprovação de Projetos",
			"Limpeza do Terreno",
			"Fundação",
			"Alvenaria/Estrutura",
			"Telhado",
			"Instalação Hidráulica",
			"Instalação Elétrica",
			"Reboco/Contrapiso",
			"Gesso e Forro",
			"Pisos e Revestimentos",
			"Pintura",
			"Louças e Acabamentos",
		},
		Materials: []Category{
			{Name: "Estrutura", Subcategories: []Subcategory{
				{Name: "Concreto", Items: []string{"Cimento CP-II", "Areia média", "Brita 1", "Brita 2", "Aditivo plastificante"}},
				{Name: "Armadura", Items: []string{"Aço CA50 8mm", "Aço CA50 10mm", "Aço CA50 12.5mm", "Vergalhão 5mm", "Arame recozido", "Espaçador plástico"}},
			}},
			{Name: "Alvenaria", Subcategories: []Subcategory{
				{Name: "Blocos", Items: []string{"Bloco cerâmico 9x19x19", "Bloco cerâmico 11.5x19x19", "Bloco de concreto 14x19x39", "Tijolo maciço"}},
				{Name: "Argamassa", Items: []string{"Argamassa Assentamento", "Cal Hidratada", "Areia fina"}},
			}},
			{Name: "Hidráulica", Subcategories: []Subcategory{
				{Name: "Água Fria", Items: []string{"Tubo PVC 25mm", "Tubo PVC 32mm", "Joelho 25mm", "Registro de pressão", "Adesivo PVC"}},
				{Name: "Esgoto", Items: []string{"Tubo esgoto 100mm", "Tubo esgoto 50mm", "Caixa sifonada", "Cola esgoto"}},
			}},
			{Name: "Elétrica", Subcategories: []Subcategory{
				{Name: "Cabeamento", Items: []string{"Cabo 1.5mm", "Cabo 2.5mm", "Cabo 4mm", "Conduíte 20mm", "Conduíte 25mm"}},
				{Name: "Aparelhagem", Items: []string{"Tomada 10A", "Tomada 20A", "Interruptor simples", "Disjuntores", "Caixas 4x2 e 4x4"}},
			}},
			{Name: "Acabamento", Subcategories: []Subcategory{
				{Name: "Pisos", Items: []string{"Porcelanato", "Cerâmica", "Rejunte"}},
				{Name: "Pintura", Items: []string{"Tinta Acrílica", "Massa Corrida", "Selador"}},
			}},
		},
		Expenses: []Category{
			{Name: "Materiais", Subcategories: []Subcategory{
				{Name: "Básicos", Items: []string{"Cimento", "Areia", "Brita", "Blocos"}},
				{Name: "Acabamento", Items: []string{"Pisos", "Tintas", "Louças", "Metais"}},
			}},
			{Name: "Mão de Obra", Subcategories: []Subcategory{
				{Name: "Equipe", Items: []string{"Pedreiro", "Ajudante", "Mestre de obras"}},
				{Name: "Especialistas", Items: []string{"Eletricista", "Encanador", "Pintor", "Gesseiro"}},
			}},
			{Name: "Taxas e Projetos", Subcategories: []Subcategory{
				{Name: "Projetos", Items: []string{"Projeto arquitetônico", "Projeto estrutural", "ART/RRT"}},
				{Name: "Taxas", Items: []string{"Alvará", "Habite-se", "Ligação de água e luz"}},
			}},
			{Name: "Equipamentos", Subcategories: []Subcategory{
				{Name: "Locação", Items: []string{"Betoneira", "Andaime", "Caçamba"}},
				{Name: "Ferramentas", Items: []string{"Ferramentas manuais", "Ferramentas elétricas"}},
			}},
		},
	}
}
