// Package pricing converts token usage into monetary cost.
package pricing

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultModel is the table key used for models without their own entry.
const DefaultModel = "default"

//go:embed prices.yaml
var defaultPrices []byte

// ModelPrice is expressed in USD per one million tokens.
type ModelPrice struct {
	InputPerMillion  float64 `yaml:"input_per_million"`
	OutputPerMillion float64 `yaml:"output_per_million"`
}

// Table is the static pricing table plus the USD to BRL exchange rate.
type Table struct {
	USDToBRL float64               `yaml:"usd_to_brl"`
	Models   map[string]ModelPrice `yaml:"models"`
}

// Cost is the price of one call in both currencies.
type Cost struct {
	USD float64
	BRL float64
}

var defaultTable = mustParse(defaultPrices)

// Default returns the embedded pricing table.
func Default() Table {
	return defaultTable
}

// LoadFile reads a pricing table from a YAML file.
func LoadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read pricing table: %w", err)
	}
	return parse(data)
}

// Price returns the per-million prices for model, falling back to the default entry.
func (t Table) Price(model string) ModelPrice {
	if p, ok := t.Models[model]; ok {
		return p
	}
	return t.Models[DefaultModel]
}

// Calculate computes inputTokens × pricePerInputToken + outputTokens × pricePerOutputToken.
func (t Table) Calculate(model string, inputTokens, outputTokens int64) Cost {
	p := t.Price(model)
	usd := float64(inputTokens)*p.InputPerMillion/1e6 + float64(outputTokens)*p.OutputPerMillion/1e6
	return Cost{USD: usd, BRL: usd * t.USDToBRL}
}

// Calculate prices a call against the embedded table.
func Calculate(model string, inputTokens, outputTokens int64) Cost {
	return defaultTable.Calculate(model, inputTokens, outputTokens)
}

func parse(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("parse pricing table: %w", err)
	}
	if _, ok := t.Models[DefaultModel]; !ok {
		return Table{}, fmt.Errorf("parse pricing table: %q entry is required", DefaultModel)
	}
	if t.USDToBRL <= 0 {
		return Table{}, fmt.Errorf("parse pricing table: usd_to_brl must be positive")
	}
	return t, nil
}

func mustParse(data []byte) Table {
	t, err := parse(data)
	if err != nil {
		panic(err)
	}
	return t
}
