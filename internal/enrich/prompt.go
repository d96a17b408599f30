package enrich

import (
	"fmt"
	"strings"

	"github.com/tts885/musubisuite/internal/port"
)

// buildCompanyPrompt requests a fixed-shape JSON profile. Unknown fields must
// come back null rather than guessed.
func buildCompanyPrompt(companyName, searchContext string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Provide corporate information about the Japanese company %q.\n\n", companyName)

	if searchContext != "" {
		sb.WriteString("Use the following web search results as your primary source:\n\n")
		sb.WriteString(searchContext)
		sb.WriteString("\n\n")
	}

	sb.WriteString(`Respond with JSON only, in exactly this shape:
{
  "company_name": "<common name>",
  "legal_name": "<registered legal name>",
  "representative": "<CEO or representative director>",
  "established_date": "<YYYY-MM-DD or YYYY-MM or YYYY>",
  "capital": <capital in yen, number>,
  "employee_count": <number of employees>,
  "industry": "<primary industry>",
  "website": "<official site URL>",
  "description": "<2-3 sentence business description>",
  "postal_code": "<123-4567>",
  "prefecture": "<prefecture>",
  "city": "<city or ward>",
  "address": "<street address below city level>",
  "phone": "<phone number>",
  "fax": "<fax number>"
}

Rules:
- Use null for any field you do not know. Never fabricate values.
- Respond with the JSON object only, no explanation.`)
	return sb.String()
}

// formatSearchContext renders search hits as a numbered source list.
func formatSearchContext(results []port.SearchResult) string {
	if len(results) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "[%d] %s\n%s\n%s\n\n", i+1, r.Title, r.URL, r.Snippet)
	}
	return strings.TrimSpace(sb.String())
}
