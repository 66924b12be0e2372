package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"StockCast/internal/domain/models"
)

// Registry holds the searchable symbol universe. The built-in list covers
// common US large caps; a JSON file can replace it at startup.
type Registry struct {
	symbols []models.SymbolInfo
	byKey   map[string]models.SymbolInfo
}

var builtin = []models.SymbolInfo{
	{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NASDAQ"},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Exchange: "NASDAQ"},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Exchange: "NASDAQ"},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", Exchange: "NASDAQ"},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", Exchange: "NASDAQ"},
	{Symbol: "META", Name: "Meta Platforms Inc.", Exchange: "NASDAQ"},
	{Symbol: "TSLA", Name: "Tesla Inc.", Exchange: "NASDAQ"},
	{Symbol: "BRK.B", Name: "Berkshire Hathaway Inc.", Exchange: "NYSE"},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Exchange: "NYSE"},
	{Symbol: "V", Name: "Visa Inc.", Exchange: "NYSE"},
	{Symbol: "JNJ", Name: "Johnson & Johnson", Exchange: "NYSE"},
	{Symbol: "WMT", Name: "Walmart Inc.", Exchange: "NYSE"},
	{Symbol: "XOM", Name: "Exxon Mobil Corporation", Exchange: "NYSE"},
	{Symbol: "UNH", Name: "UnitedHealth Group Inc.", Exchange: "NYSE"},
	{Symbol: "MA", Name: "Mastercard Incorporated", Exchange: "NYSE"},
	{Symbol: "PG", Name: "Procter & Gamble Company", Exchange: "NYSE"},
	{Symbol: "HD", Name: "Home Depot Inc.", Exchange: "NYSE"},
	{Symbol: "ORCL", Name: "Oracle Corporation", Exchange: "NYSE"},
	{Symbol: "KO", Name: "Coca-Cola Company", Exchange: "NYSE"},
	{Symbol: "NFLX", Name: "Netflix Inc.", Exchange: "NASDAQ"},
	{Symbol: "AMD", Name: "Advanced Micro Devices Inc.", Exchange: "NASDAQ"},
	{Symbol: "INTC", Name: "Intel Corporation", Exchange: "NASDAQ"},
	{Symbol: "DIS", Name: "Walt Disney Company", Exchange: "NYSE"},
	{Symbol: "BA", Name: "Boeing Company", Exchange: "NYSE"},
	{Symbol: "GS", Name: "Goldman Sachs Group Inc.", Exchange: "NYSE"},
}

// New builds a registry from the built-in list, or from symbolsFile when set.
func New(symbolsFile string) (*Registry, error) {
	symbols := builtin
	if symbolsFile != "" {
		data, err := os.ReadFile(symbolsFile)
		if err != nil {
			return nil, fmt.Errorf("read symbols file: %w", err)
		}
		var loaded []models.SymbolInfo
		if err := json.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("parse symbols file: %w", err)
		}
		if len(loaded) > 0 {
			symbols = loaded
		}
	}

	r := &Registry{
		symbols: symbols,
		byKey:   make(map[string]models.SymbolInfo, len(symbols)),
	}
	for _, s := range symbols {
		r.byKey[strings.ToUpper(s.Symbol)] = s
	}
	return r, nil
}

// Get resolves an exact symbol, case-insensitively.
func (r *Registry) Get(symbol string) (models.SymbolInfo, bool) {
	s, ok := r.byKey[strings.ToUpper(symbol)]
	return s, ok
}

// All returns the full universe, sorted by symbol.
func (r *Registry) All() []models.SymbolInfo {
	out := append([]models.SymbolInfo(nil), r.symbols...)
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

type scored struct {
	info  models.SymbolInfo
	score float64
}

// Search ranks symbols against the query: exact symbol match first, then
// symbol prefixes, then name substrings, then bigram similarity on the name.
func (r *Registry) Search(query string, limit int) []models.SymbolInfo {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return nil
	}

	var matches []scored
	for _, s := range r.symbols {
		sym := strings.ToUpper(s.Symbol)
		name := strings.ToUpper(s.Name)
		var score float64
		switch {
		case sym == q:
			score = 4
		case strings.HasPrefix(sym, q):
			score = 3
		case strings.Contains(name, q):
			score = 2
		default:
			if sim := bigramSimilarity(q, name); sim >= 0.3 {
				score = sim
			}
		}
		if score > 0 {
			matches = append(matches, scored{info: s, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]models.SymbolInfo, len(matches))
	for i, m := range matches {
		out[i] = m.info
	}
	return out
}

// bigramSimilarity is the Sørensen–Dice coefficient over character bigrams.
func bigramSimilarity(a, b string) float64 {
	ba := bigrams(a)
	bb := bigrams(b)
	if len(ba) == 0 || len(bb) == 0 {
		return 0
	}
	var common int
	for g, n := range ba {
		if m, ok := bb[g]; ok {
			if m < n {
				common += m
			} else {
				common += n
			}
		}
	}
	var totalA, totalB int
	for _, n := range ba {
		totalA += n
	}
	for _, n := range bb {
		totalB += n
	}
	return 2 * float64(common) / float64(totalA+totalB)
}

func bigrams(s string) map[string]int {
	out := make(map[string]int)
	for i := 0; i+2 <= len(s); i++ {
		out[s[i:i+2]]++
	}
	return out
}
