package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/renderer"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used by the experts.
const DefaultModel = "gemini-2.5-pro"

// NewFacilitator returns the expert that talks to the user and relays
// questions to experts.
func NewFacilitator(model string, experts ...*Expert) *Expert {
	e := &Expert{
		Name:      "facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `You are a helpful assistant to an individual investor.
You are polite, concise and answer in markdown.
You never make up figures about the user's portfolio: ask the experts available as tools.
When a question is outside the experts' knowledge, say so.`}}},
		},
	}
	if len(experts) > 0 {
		e.Config.Tools = []*genai.Tool{{FunctionDeclarations: NewDeclaration(experts)}}
		e.Library = NewLibrary(experts)
	}
	return e
}

// NewTrader returns an expert in financial markets, with access to Google
// Search.
func NewTrader(model string) *Expert {
	return &Expert{
		Name:        "trader",
		Description: "An expert in financial markets. Ask about securities, tickers, market prices or companies' dividend policies.",
		ModelName:   model,
		Config: &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `You are a trader with an extensive knowledge of financial markets.
Use Google Search to get up to date information and quote your sources.`}}},
			Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		},
	}
}

// NewAccountant returns an expert of the user's portfolio as described by r.
func NewAccountant(model string, r *folio.Report, on date.Date) *Expert {
	functions := AccountantFunctions(r, on)
	return &Expert{
		Name:        "accountant",
		Description: "The accountant of the user's portfolio. Ask about positions, their value, gains, fees and dividends.",
		ModelName:   model,
		Config: &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `You are the accountant of an individual investor.
Answer with the figures returned by your tools only. Amounts are in the portfolio's reporting currency.
A missing value means it is unknown, never zero.`}}},
			Tools: []*genai.Tool{{FunctionDeclarations: NewDeclaration(functions)}},
		},
		Library: NewLibrary(functions),
	}
}

// AccountantFunctions returns the tools of the accountant, rendering r.
func AccountantFunctions(r *folio.Report, on date.Date) []*Func {
	noArgs := &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}}
	markdown := &genai.Schema{Type: genai.TypeString, Description: "A markdown document."}
	return []*Func{
		{
			Decl: &genai.FunctionDeclaration{
				Name:        "report",
				Description: "Returns the portfolio report: every open position with its shares, average buy price, invested amount, fees, current price, value and unrealized gain, plus the totals.",
				Parameters:  noArgs,
				Response:    markdown,
			},
			Func: func(_ context.Context, id string, _ map[string]any) *genai.FunctionResponse {
				return success(id, "report", renderer.RenderReport(r, renderer.Options{Date: on}))
			},
		},
		{
			Decl: &genai.FunctionDeclaration{
				Name:        "dividends",
				Description: "Returns the estimated dividend income of each position, event by event, with the shares held at the time.",
				Parameters:  noArgs,
				Response:    markdown,
			},
			Func: func(_ context.Context, id string, _ map[string]any) *genai.FunctionResponse {
				return success(id, "dividends", renderer.RenderDividends(r))
			},
		},
		{
			Decl: &genai.FunctionDeclaration{
				Name:        "position",
				Description: "Returns the details of a single position as JSON.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"product": {Type: genai.TypeString, Description: "The product name, the ISIN or the ticker of the position."},
					},
					Required: []string{"product"},
				},
				Response: &genai.Schema{Type: genai.TypeString, Description: "The position as JSON."},
			},
			Func: func(_ context.Context, id string, args map[string]any) *genai.FunctionResponse {
				name, _ := args["product"].(string)
				for _, p := range r.Positions {
					if name != "" && (p.Product == name || p.ISIN == name || p.Ticker == name) {
						data, err := json.Marshal(p)
						if err != nil {
							return failure(id, "position", err)
						}
						return success(id, "position", string(data))
					}
				}
				return failure(id, "position", fmt.Errorf("no position %q", name))
			},
		},
	}
}
