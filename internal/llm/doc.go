// Package llm provides categorization oracles backed by language models.
// It supports OpenAI, Anthropic, Gemini and Ollama, each sending the
// tokens of one transaction group and returning a bare category name.
package llm
