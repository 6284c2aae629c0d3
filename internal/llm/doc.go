// Package llm implements the advisory classifier: the best-effort third tier
// of the classification waterfall. It talks to a text-generation provider
// (a local Ollama server, OpenAI or Anthropic), asks for one purpose code
// from a fixed enumeration, and reports every failure as a typed
// model.AdvisoryResult instead of an error. Calls are rate limited, cached
// and never retried.
package llm
