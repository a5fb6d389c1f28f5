// Package prompt assembles the generation prompt from the question, the
// resolved context snippets, and the classified intents. The builder is a
// pure function: identical inputs always yield byte-identical prompts, which
// keeps the response cache sound.
package prompt

import (
	"fmt"
	"strings"

	"github.com/tripdesk/concierge/internal/intent"
	"github.com/tripdesk/concierge/internal/resolve"
)

// Build renders the full prompt for one question.
func Build(question string, snippets []resolve.Snippet, ir intent.Result) string {
	var b strings.Builder

	b.WriteString("You are a travel agent database assistant. Answer questions using ONLY the records below.\n\n")

	b.WriteString("=== YOUR RULES ===\n")
	b.WriteString(instructionsFor(ir))
	b.WriteString("\n\n")

	b.WriteString("=== GENERAL RULES ===\n")
	b.WriteString("- Use ONLY data from the records below. Never invent data.\n")
	b.WriteString("- If data spans multiple records, JOIN them by AgentID.\n")
	b.WriteString("- If asked for a list, return ALL matching agents, not just one.\n")
	b.WriteString("- If no data found after checking all records, say: \"No matching records found for your query.\"\n")
	b.WriteString("- Format dates as: DD-MMM-YYYY (e.g., 15-Jan-2024)\n")
	b.WriteString("- Be concise but complete.\n\n")

	fmt.Fprintf(&b, "=== DATABASE RECORDS (%d found) ===\n", len(snippets))
	for i, s := range snippets {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Record %d]\n%s", i+1, s.Text)
	}
	b.WriteString("\n\n")

	b.WriteString("=== USER QUESTION ===\n")
	b.WriteString(question)
	b.WriteString("\n\n=== YOUR ANSWER ===")

	return b.String()
}

// instructionsFor selects the imperative instruction lines for every matched
// intent, in match order.
func instructionsFor(ir intent.Result) string {
	var lines []string

	for _, m := range ir.Intents {
		switch m.Label {
		case intent.LastLogin:
			lines = append(lines,
				"- For 'last login' questions: Find the MOST RECENT date in Login History for the agent.",
				"- Sort login dates descending and return the first one.")
		case intent.LoginCount:
			lines = append(lines,
				"- For login count: Count ALL login entries for the agent and return the number.")
		case intent.AllAgentsCompany:
			lines = append(lines,
				"- For company queries: List EVERY agent with that company name.",
				"- Format as numbered list with: Name, AgentID, Email.")
		case intent.InactiveAgents:
			lines = append(lines,
				"- For inactive agents: Find agents whose Last Login is oldest or missing.",
				"- Calculate how many days since their last login if possible.")
		case intent.MostActive:
			lines = append(lines,
				"- For most active: Find the agent with highest Total Logins count.",
				"- Rank agents from most to least active.")
		case intent.NationalitySearch:
			lines = append(lines,
				"- For nationality queries: List ALL agents matching that nationality.",
				"- Include Name, AgentID, Company for each.")
		case intent.CountQuery:
			lines = append(lines,
				"- For count queries: Count matching records and give a clear number.",
				"- Example: 'There are 5 agents from XYZ Company.'")
		case intent.DateRange:
			lines = append(lines,
				"- For date range queries: Filter login dates that fall within the specified range.",
				"- Return agents who match the date criteria.")
		case intent.ListAll:
			lines = append(lines,
				"- List ALL agents in the records provided.",
				"- Format as a numbered list.")
		case intent.OutOfScope:
			lines = append(lines,
				"- This question is outside the travel agent database scope.",
				"- Politely say you can only answer questions about agent profiles and login history.")
		}
	}

	if len(lines) == 0 {
		return "- Answer the question directly using the records provided."
	}
	return strings.Join(lines, "\n")
}
