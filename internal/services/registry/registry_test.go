package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"StockCast/internal/domain/models"
)

func mustNew(t *testing.T) *Registry {
	t.Helper()
	r, err := New("")
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return r
}

func TestGetCaseInsensitive(t *testing.T) {
	r := mustNew(t)
	info, ok := r.Get("aapl")
	if !ok {
		t.Fatal("aapl not found")
	}
	if info.Symbol != "AAPL" || info.Name == "" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if _, ok := r.Get("NOPE"); ok {
		t.Fatal("unknown symbol resolved")
	}
}

func TestSearchExactSymbolFirst(t *testing.T) {
	r := mustNew(t)
	results := r.Search("V", 5)
	if len(results) == 0 {
		t.Fatal("no results")
	}
	if results[0].Symbol != "V" {
		t.Fatalf("exact match not ranked first: %+v", results)
	}
}

func TestSearchNameSubstring(t *testing.T) {
	r := mustNew(t)
	results := r.Search("apple", 5)
	if len(results) == 0 || results[0].Symbol != "AAPL" {
		t.Fatalf("name search failed: %+v", results)
	}
}

func TestSearchFuzzyName(t *testing.T) {
	r := mustNew(t)
	// misspelled, no exact substring anywhere
	results := r.Search("microsft", 5)
	found := false
	for _, s := range results {
		if s.Symbol == "MSFT" {
			found = true
		}
	}
	if !found {
		t.Fatalf("fuzzy search missed MSFT: %+v", results)
	}
}

func TestSearchLimitAndEmptyQuery(t *testing.T) {
	r := mustNew(t)
	if got := r.Search("", 10); got != nil {
		t.Fatalf("empty query returned %+v", got)
	}
	results := r.Search("A", 3)
	if len(results) > 3 {
		t.Fatalf("limit ignored: %d results", len(results))
	}
}

func TestLoadSymbolsFile(t *testing.T) {
	custom := []models.SymbolInfo{
		{Symbol: "RELIANCE.NS", Name: "Reliance Industries", Exchange: "NSE"},
		{Symbol: "TCS.NS", Name: "Tata Consultancy Services", Exchange: "NSE"},
	}
	data, _ := json.Marshal(custom)
	path := filepath.Join(t.TempDir(), "symbols.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	r, err := New(path)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if len(r.All()) != 2 {
		t.Fatalf("universe size = %d, want 2", len(r.All()))
	}
	if _, ok := r.Get("reliance.ns"); !ok {
		t.Fatal("custom symbol not resolvable")
	}
	if _, ok := r.Get("AAPL"); ok {
		t.Fatal("builtin list not replaced")
	}
}
