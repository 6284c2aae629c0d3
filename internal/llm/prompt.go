package llm

import (
	"fmt"
	"strings"

	"github.com/Veraticus/finnet/internal/model"
)

// BuildPrompt renders the advisory prompt for one transaction.
func BuildPrompt(req model.AdvisoryRequest, categories []model.AdvisoryCategory) string {
	var sb strings.Builder

	sb.WriteString("Classify this transaction description.\n")
	fmt.Fprintf(&sb, "Description: %q\n", strings.TrimSpace(req.Description))
	fmt.Fprintf(&sb, "Amount: %s\n\n", req.Amount.StringFixed(2))
	sb.WriteString("Select closest category:\n")
	for i, cat := range categories {
		fmt.Fprintf(&sb, "%d. %s (%s)\n", i+1, cat.Name, cat.Code)
	}

	example := "1215"
	if len(categories) > 0 {
		example = categories[0].Code
	}
	fmt.Fprintf(&sb, "\nReturn ONLY the code (e.g., %s).", example)

	return sb.String()
}
