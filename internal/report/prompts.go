package report

import (
	"fmt"
	"strings"

	"github.com/dvloznov/fingenius/internal/domain"
)

// insightPrompt builds the insight request for a summary. Output is deterministic
// for a given summary so prompts can be compared in tests.
func insightPrompt(s *domain.Summary) string {
	var categories strings.Builder
	if len(s.Categories) == 0 {
		categories.WriteString("- none recorded\n")
	}
	for _, c := range s.Categories {
		fmt.Fprintf(&categories, "- %s: %.2f (%d%%)\n", c.Name, c.Amount, c.Percentage)
	}

	return "You are a friendly, practical personal finance coach writing to the user directly.\n\n" +
		"Give exactly 3 short insights based only on the figures below.\n\n" +
		fmt.Sprintf("Report for: %s\n", s.PeriodLabel) +
		fmt.Sprintf("- Total income: $%.2f\n", s.TotalIncome) +
		fmt.Sprintf("- Total expenses: $%.2f\n", s.TotalExpense) +
		fmt.Sprintf("- Available balance: $%.2f\n", s.AvailableBalance) +
		fmt.Sprintf("- Savings rate: %.2f%%\n\n", s.SavingsRate) +
		"Expense categories:\n" +
		categories.String() + "\n" +
		"Guidelines:\n" +
		"- One natural sentence per insight, conversational and specific.\n" +
		"- Quote amounts with thousands separators where helpful.\n" +
		"- Be encouraging when income exceeded expenses.\n\n" +
		"Return ONLY a JSON array of exactly 3 strings, for example:\n" +
		`["Insight 1", "Insight 2", "Insight 3"]` + "\n" +
		"Do NOT wrap the response in code fences or add any other text.\n"
}
