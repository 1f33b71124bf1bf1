package agent

import (
	"fmt"
	"strings"
	"time"
)

// freshnessWindow approximates "the last six months" for the decision
// prompt's cutoff date.
const freshnessWindow = 180 * 24 * time.Hour

const dateLayout = "January 2, 2006"

// buildDecisionPrompt asks the model for a bare true/false: does the
// query need information newer than the rolling cutoff.
func buildDecisionPrompt(query string, now time.Time) string {
	cutoff := now.Add(-freshnessWindow).Format(dateLayout)

	return fmt.Sprintf(`You are a classifier. Reply with only "true" or "false", nothing else.

Does answering the query below require information dated after %s?

Reply "true" if the query involves:
- events that happened after %s
- live or real-time data such as prices, weather, election results, or service status
- facts that change frequently such as laws, software releases, or office holders

Reply "false" for timeless facts, mathematics, historical facts from before that date, and hypotheticals.

Query: %s`, cutoff, cutoff, query)
}

// buildSynthesisPrompt asks for the final 3-5 sentence answer, citing the
// numbered web results inline when any were gathered.
func buildSynthesisPrompt(query, citations string, now time.Time) string {
	today := now.Format(dateLayout)

	var b strings.Builder
	fmt.Fprintf(&b, "Today's date is %s.\n\n", today)
	b.WriteString("Answer the query below in 3 to 5 sentences. Be factual and comprehensive.\n")
	if citations != "" {
		b.WriteString("Use the numbered web results provided and cite them inline with their [n] markers wherever you rely on them.\n")
	}
	fmt.Fprintf(&b, "\nQuery: %s\n", query)
	if citations != "" {
		fmt.Fprintf(&b, "\nWeb results:\n%s\n", citations)
	}
	return b.String()
}

// parseDecision interprets the classifier output: true only for a literal
// "true" or any text containing "yes" after trimming and lowercasing.
// The substring rule means negated phrasings that still contain "yes"
// parse as true; callers rely on the rule as stated.
func parseDecision(raw string) bool {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	return normalized == "true" || strings.Contains(normalized, "yes")
}
