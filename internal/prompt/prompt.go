// Package prompt holds the pure templating functions that turn structured
// financial data into natural-language prompts for the generative-text
// service.
package prompt

import (
	"fmt"
	"strings"

	"github.com/MarcuxOng/finsight/internal/analytics"
	"github.com/MarcuxOng/finsight/internal/taxonomy"
)

// categoryHints are illustrative keyword-to-category mappings included in
// the categorization prompt as non-binding guidance.
var categoryHints = []string{
	"coffee, restaurant, takeaway -> Food & Dining",
	"uber, taxi, fuel, parking -> Transport",
	"netflix, spotify, prime -> Subscriptions",
	"supermarket, tesco, aldi -> Groceries",
	"electricity, water, broadband -> Bills & Utilities",
	"pharmacy, dentist, gp -> Healthcare",
	"flight, hotel, airbnb -> Travel",
	"salary, payroll, dividend -> Income",
}

// BuildCategorizationPrompt builds the prompt asking the model to classify
// a single transaction into exactly one taxonomy label.
func BuildCategorizationPrompt(description string, amount float64) string {
	var b strings.Builder

	b.WriteString("Categorize the following transaction into ONE of these categories:\n")
	b.WriteString(strings.Join(taxonomy.Categories, ", "))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Transaction: %s\n", description)
	fmt.Fprintf(&b, "Amount: %s\n\n", FormatMoney(amount))

	b.WriteString("Hints (guidance only, not exhaustive):\n")
	for _, h := range categoryHints {
		b.WriteString("- " + h + "\n")
	}
	b.WriteString("\n")

	b.WriteString("Respond with ONLY the category name, nothing else.\n")
	b.WriteString("If none fits, respond with \"Other\".\n")

	return b.String()
}

// BuildInsightsPrompt builds the prompt asking the model for a structured
// narrative: a summary, exactly three insights and exactly three
// recommendations, as bare JSON with no surrounding commentary.
func BuildInsightsPrompt(dataContext string) string {
	var b strings.Builder

	b.WriteString("You are a financial advisor analyzing a user's spending patterns. Based on the following data, provide:\n\n")
	b.WriteString("1. A brief summary of their financial situation (2-3 sentences)\n")
	b.WriteString("2. Three key insights about their spending habits\n")
	b.WriteString("3. Three actionable recommendations for improving their finances\n\n")

	b.WriteString(dataContext)
	b.WriteString("\n")

	b.WriteString("Format your response as JSON with this structure:\n")
	b.WriteString("{\n")
	b.WriteString("  \"summary\": \"...\",\n")
	b.WriteString("  \"insights\": [\"...\", \"...\", \"...\"],\n")
	b.WriteString("  \"recommendations\": [\"...\", \"...\", \"...\"]\n")
	b.WriteString("}\n\n")

	b.WriteString("Return ONLY valid raw JSON.\n")
	b.WriteString("Do NOT wrap the response in code fences or Markdown.\n")
	b.WriteString("Be specific, conversational, and encouraging. Use actual numbers from the data.\n")

	return b.String()
}

// FormatDataContext renders the computed analytics into the context block
// embedded in the insights prompt. Money is formatted as $X,XXX.XX and
// percentages with one decimal.
func FormatDataContext(summary analytics.Summary, trends analytics.MonthlyTrend, anomalyCount int) string {
	var b strings.Builder

	b.WriteString("Financial Summary:\n")
	fmt.Fprintf(&b, "- Total Income: %s\n", FormatMoney(summary.TotalIncome))
	fmt.Fprintf(&b, "- Total Expenses: %s\n", FormatMoney(summary.TotalExpense))
	fmt.Fprintf(&b, "- Net: %s\n\n", FormatMoney(summary.Net))

	b.WriteString("Top Spending Categories:\n")
	top := summary.Categories
	if len(top) > 5 {
		top = top[:5]
	}
	if len(top) == 0 {
		b.WriteString("- (no expense data)\n")
	}
	for _, cat := range top {
		fmt.Fprintf(&b, "- %s: %s (%.1f%%)\n", cat.Category, FormatMoney(cat.Total), cat.Percentage)
	}
	b.WriteString("\n")

	b.WriteString("Recent Trends:\n")
	if trends.Trends != nil {
		fmt.Fprintf(&b, "- Expense Change: %.1f%% (%s)\n", trends.Trends.ExpenseChangePercent, trends.Trends.ExpenseDirection)
		fmt.Fprintf(&b, "- Income Change: %.1f%% (%s)\n", trends.Trends.IncomeChangePercent, trends.Trends.IncomeDirection)
	} else {
		b.WriteString("- Expense Change: 0.0% (stable)\n")
		b.WriteString("- Income Change: 0.0% (stable)\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Anomalies Detected: %d\n", anomalyCount)

	return b.String()
}

// FormatMoney renders a currency-agnostic magnitude as $X,XXX.XX with
// thousands separators. Negative values keep the sign before the symbol.
func FormatMoney(v float64) string {
	s := fmt.Sprintf("%.2f", v)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	return sign + "$" + strings.Join(groups, ",") + "." + fracPart
}
