package classifier_test

import (
	"context"
	"testing"

	"github.com/rozpoctar/boq-classifier/internal/classifier"
	"github.com/rozpoctar/boq-classifier/internal/domain"
)

func newOrchestrator() *classifier.Orchestrator {
	return classifier.NewOrchestrator(newScorer(), nil, nil)
}

func mainItem(id, popis string, unit string) *domain.Item {
	item := &domain.Item{
		ID:        id,
		Popis:     popis,
		PopisFull: popis,
		RowRole:   domain.RowRoleMain,
	}
	if unit != "" {
		item.MJ = &unit
	}
	return item
}

func TestApply_ClassifiesMainItems(t *testing.T) {
	o := newOrchestrator()

	items := []*domain.Item{
		mainItem("i1", "Vrtané piloty průměr 900mm, beton C25/30", "m"),
		mainItem("i2", "Hloubení jam nezapažených", "m3"),
		mainItem("i3", "Dodávka kancelářského nábytku", "kus"),
		{ID: "i4", Popis: "Díl 1", RowRole: domain.RowRoleSection},
	}

	result := o.Apply(context.Background(), items, classifier.ApplyOptions{MinConfidence: 50})

	if result.Total != 3 {
		t.Errorf("total = %d, want 3 (sections are not eligible)", result.Total)
	}
	if result.Classified != 2 {
		t.Errorf("classified = %d, want 2", result.Classified)
	}
	if result.Unclassified != 1 {
		t.Errorf("unclassified = %d, want 1", result.Unclassified)
	}
	if items[0].Skupina == nil || *items[0].Skupina != domain.GroupPiloty {
		t.Errorf("i1 skupina = %v, want %s", items[0].Skupina, domain.GroupPiloty)
	}
	if items[1].Skupina == nil || *items[1].Skupina != domain.GroupZemniPrace {
		t.Errorf("i2 skupina = %v, want %s", items[1].Skupina, domain.GroupZemniPrace)
	}
	if items[2].Skupina != nil {
		t.Errorf("i3 skupina = %s, want none", *items[2].Skupina)
	}
	if items[3].Skupina != nil {
		t.Error("section row received a skupina")
	}
	if result.ByGroup[domain.GroupPiloty] != 1 || result.ByGroup[domain.GroupZemniPrace] != 1 {
		t.Errorf("by group = %v", result.ByGroup)
	}
}

func TestApply_SkipsAlreadySetUnlessOverwrite(t *testing.T) {
	o := newOrchestrator()

	preset := domain.GroupIzolace
	item := mainItem("i1", "Vrtané piloty průměr 900mm", "m")
	item.Skupina = &preset

	result := o.Apply(context.Background(), []*domain.Item{item}, classifier.ApplyOptions{MinConfidence: 50})
	if result.AlreadySet != 1 || result.Classified != 0 {
		t.Fatalf("already_set = %d classified = %d, want 1/0", result.AlreadySet, result.Classified)
	}
	if *item.Skupina != domain.GroupIzolace {
		t.Errorf("skupina changed without overwrite: %s", *item.Skupina)
	}

	result = o.Apply(context.Background(), []*domain.Item{item},
		classifier.ApplyOptions{Overwrite: true, MinConfidence: 50})
	if result.Classified != 1 {
		t.Fatalf("classified with overwrite = %d, want 1", result.Classified)
	}
	if *item.Skupina != domain.GroupPiloty {
		t.Errorf("skupina after overwrite = %s, want %s", *item.Skupina, domain.GroupPiloty)
	}
	if item.SkupinaSuggested == nil || *item.SkupinaSuggested != domain.GroupPiloty {
		t.Errorf("skupina_suggested = %v, want %s", item.SkupinaSuggested, domain.GroupPiloty)
	}
}

func TestApply_MinConfidenceGate(t *testing.T) {
	o := newOrchestrator()

	// A single keyword match without unit boost scores 1.0, confidence 50.
	item := mainItem("i1", "bednění stěn", "")

	result := o.Apply(context.Background(), []*domain.Item{item}, classifier.ApplyOptions{MinConfidence: 80})
	if result.Classified != 0 || result.Unclassified != 1 {
		t.Fatalf("classified = %d unclassified = %d, want 0/1", result.Classified, result.Unclassified)
	}
	if item.Skupina != nil {
		t.Errorf("skupina = %s, want none below the confidence gate", *item.Skupina)
	}

	result = o.Apply(context.Background(), []*domain.Item{item}, classifier.ApplyOptions{MinConfidence: 50})
	if result.Classified != 1 {
		t.Fatalf("classified = %d, want 1 at the gate", result.Classified)
	}
}

func TestSuggest_ReadOnlyAndFiltered(t *testing.T) {
	o := newOrchestrator()

	assigned := domain.GroupPiloty
	withGroup := mainItem("i1", "Vrtané piloty průměr 900mm", "m")
	withGroup.Skupina = &assigned

	items := []*domain.Item{
		withGroup,
		mainItem("i2", "Hloubení jam nezapažených", "m3"),
		mainItem("i3", "Dodávka kancelářského nábytku", "kus"),
	}

	suggestions := o.Suggest(context.Background(), items, 0)

	if len(suggestions) != 1 {
		t.Fatalf("suggestions = %d, want 1", len(suggestions))
	}
	if suggestions[0].ItemID != "i2" {
		t.Errorf("suggestion item = %s, want i2", suggestions[0].ItemID)
	}
	for _, c := range suggestions[0].Candidates {
		if c.Confidence < classifier.DefaultSuggestThreshold {
			t.Errorf("candidate %s below default threshold: %d", c.Group, c.Confidence)
		}
	}
	for _, item := range items {
		if item.ID != "i1" && item.Skupina != nil {
			t.Errorf("suggest mutated item %s", item.ID)
		}
	}
}

func TestSuggest_CustomThreshold(t *testing.T) {
	o := newOrchestrator()

	// The only candidate has confidence 50.
	items := []*domain.Item{mainItem("i1", "bednění stěn", "")}

	if got := o.Suggest(context.Background(), items, 60); len(got) != 0 {
		t.Errorf("suggestions at threshold 60 = %d, want 0", len(got))
	}
	if got := o.Suggest(context.Background(), items, 40); len(got) != 1 {
		t.Errorf("suggestions at threshold 40 = %d, want 1", len(got))
	}
}

func TestStats_Distribution(t *testing.T) {
	o := newOrchestrator()

	piloty := domain.GroupPiloty
	zemni := domain.GroupZemniPrace

	withGroup := func(id string, g *domain.WorkGroup) *domain.Item {
		item := mainItem(id, "x", "")
		item.Skupina = g
		return item
	}

	items := []*domain.Item{
		withGroup("i1", &piloty),
		withGroup("i2", &piloty),
		withGroup("i3", &zemni),
		withGroup("i4", nil),
		{ID: "i5", RowRole: domain.RowRoleSection},
	}

	stats := o.Stats(items)

	if stats.Total != 4 {
		t.Errorf("total = %d, want 4", stats.Total)
	}
	if stats.Classified != 3 {
		t.Errorf("classified = %d, want 3", stats.Classified)
	}
	if stats.Rate != 75 {
		t.Errorf("rate = %v, want 75", stats.Rate)
	}
	if len(stats.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(stats.Groups))
	}
	// AllWorkGroups declaration order puts zemni_prace before piloty.
	if stats.Groups[0].Group != zemni || stats.Groups[0].Count != 1 {
		t.Errorf("groups[0] = %+v", stats.Groups[0])
	}
	if stats.Groups[1].Group != piloty || stats.Groups[1].Count != 2 {
		t.Errorf("groups[1] = %+v", stats.Groups[1])
	}
	if stats.Groups[1].Percent != 50 {
		t.Errorf("piloty percent = %v, want 50", stats.Groups[1].Percent)
	}
}

func TestStats_Empty(t *testing.T) {
	o := newOrchestrator()

	stats := o.Stats(nil)
	if stats.Total != 0 || stats.Classified != 0 || stats.Rate != 0 {
		t.Errorf("stats = %+v, want zero-valued", stats)
	}
	if len(stats.Groups) != 0 {
		t.Errorf("groups = %d, want 0", len(stats.Groups))
	}
}
