// Package suggest proposes a theme color and icon for a named item, such as
// a project folder or workspace, using a small LLM prompt.
package suggest

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tts885/musubisuite/internal/parser"
	"github.com/tts885/musubisuite/internal/port"
)

const (
	suggestMaxTokens   = 500
	suggestTemperature = 0.7

	// Fallbacks when the model answers garbage.
	DefaultColor = "#3b82f6"
	DefaultIcon  = "Folder"
)

// icons is the lucide icon subset the frontend renders.
var icons = []string{
	"Folder", "FileText", "Briefcase", "Building", "Calculator",
	"Calendar", "ChartBar", "ClipboardList", "Database", "Globe",
	"Landmark", "Mail", "Package", "Receipt", "Settings",
	"ShoppingCart", "Truck", "Users", "Wallet", "Wrench",
}

// palette is the set of theme colors the frontend offers.
var palette = []string{
	"#ef4444", "#f97316", "#f59e0b", "#eab308", "#84cc16", "#22c55e",
	"#10b981", "#14b8a6", "#06b6d4", "#0ea5e9", "#3b82f6", "#6366f1",
	"#8b5cf6", "#a855f7", "#d946ef", "#ec4899", "#f43f5e", "#64748b",
}

// Suggestion is one color and icon pairing.
type Suggestion struct {
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// Service generates suggestions through the gateway.
type Service struct {
	gen port.TextGenerator
}

func NewService(gen port.TextGenerator) *Service {
	return &Service{gen: gen}
}

func buildPrompt(name, description string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Pick a fitting theme color and icon for an item named %q.\n", name)
	if description != "" {
		fmt.Fprintf(&sb, "Item description: %s\n", description)
	}
	fmt.Fprintf(&sb, "\nChoose the color from: %s\n", strings.Join(palette, ", "))
	fmt.Fprintf(&sb, "Choose the icon from: %s\n", strings.Join(icons, ", "))
	sb.WriteString(`
Respond with JSON only: {"color": "<hex>", "icon": "<icon name>"}`)
	return sb.String()
}

// Suggest returns a color and icon for the item. Unusable model output falls
// back to the defaults rather than failing; a suggestion is never critical.
func (s *Service) Suggest(ctx context.Context, ref port.ProviderRef, name, description string) (*Suggestion, error) {
	temp := suggestTemperature
	raw, err := s.gen.Generate(ctx, ref, port.GenerateRequest{
		Prompt:      buildPrompt(name, description),
		MaxTokens:   suggestMaxTokens,
		Temperature: &temp,
	})
	if err != nil {
		return nil, err
	}
	return parseSuggestion(raw), nil
}

// SuggestStream exposes the raw token stream for clients that render the
// suggestion as it generates.
func (s *Service) SuggestStream(ctx context.Context, ref port.ProviderRef, name, description string) (port.ChunkStream, error) {
	temp := suggestTemperature
	return s.gen.GenerateStream(ctx, ref, port.GenerateRequest{
		Prompt:      buildPrompt(name, description),
		MaxTokens:   suggestMaxTokens,
		Temperature: &temp,
	})
}

func parseSuggestion(raw string) *Suggestion {
	var wire Suggestion
	if err := parser.UnmarshalLenient(parser.ExtractJSONPayload(raw), &wire); err != nil {
		log.Printf("suggest.parseSuggestion: unparseable response, using defaults: %v", err)
		return &Suggestion{Color: DefaultColor, Icon: DefaultIcon}
	}
	out := &Suggestion{Color: DefaultColor, Icon: DefaultIcon}
	if validColor(wire.Color) {
		out.Color = wire.Color
	}
	if validIcon(wire.Icon) {
		out.Icon = wire.Icon
	}
	return out
}

func validColor(c string) bool {
	for _, p := range palette {
		if strings.EqualFold(c, p) {
			return true
		}
	}
	return false
}

func validIcon(i string) bool {
	for _, known := range icons {
		if strings.EqualFold(i, known) {
			return true
		}
	}
	return false
}
