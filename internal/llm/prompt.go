package llm

import "strings"

// BuildSystemPrompt composes the system message for filename generation.
// Kept strict so replies survive schema validation without retries.
func BuildSystemPrompt() string {
	parts := []string{
		"You are a document filing assistant. Given the content of a document, produce one descriptive filename for it.",
		"Return ONLY JSON of the form {\"filename\": \"...\"} that matches the provided JSON Schema.",
		"The filename must be 2 to 8 words joined by underscores, using only English letters, digits, and underscores.",
		"Do not include a file extension, dates you are unsure of, or any path separators.",
		"Prefer the document's own title, subject, sender, or form number over generic words.",
		"Never output null and never add commentary around the JSON.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the content and the original-name hint. When an
// image is attached we still include the text: OCR output and vision input
// reinforce each other for this task.
func BuildUserPrompt(req Request, imageAttached bool) string {
	var b strings.Builder
	if name := strings.TrimSpace(req.OriginalName); name != "" {
		b.WriteString("Original filename: ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	b.WriteString("\nDocument content:\n")
	b.WriteString(req.Text)
	if imageAttached {
		b.WriteString("\n\nNote: a page image of the document is attached; use it if the text is garbled or empty.")
	}
	return b.String()
}
