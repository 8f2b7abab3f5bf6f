package ai

import "fmt"

const selectorSystemPrompt = "You locate elements in web pages for a UI test framework. " +
	"Answer with exactly one CSS selector or XPath expression and nothing else. " +
	"If no element matches, answer with an empty string."

func buildSelectorPrompt(description, snapshot string) string {
	return fmt.Sprintf(`The test framework could not find this element with its stored selectors:

%s
Current page structure:
%s

Return a single selector that uniquely matches the element on the current page.
Prefer stable attributes (id, data-testid, name, aria-label) over positions.`,
		description,
		snapshot,
	)
}
