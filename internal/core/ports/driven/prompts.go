package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible
	// default or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptSystem is the system prompt sent before every exchange.
	// It has no template fields.
	PromptSystem = "system"

	// PromptAnswer frames retrieved context for a question. It is a
	// text/template with .Context, .Format and .Language fields.
	PromptAnswer = "answer"

	// PromptSummariseURL frames a fetched web page for summarisation.
	// Same fields as PromptAnswer.
	PromptSummariseURL = "summarise_url"
)
