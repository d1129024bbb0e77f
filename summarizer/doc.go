// Package summarizer provides compaction.Summarizer implementations.
//
// Information Hiding:
// - Turns are rendered to a plain transcript through the provider adapter
// - Prompt wording and response parsing (<summary> tags, code fences) stay internal
// - LLM calls go through llm.Client; Truncating needs no network at all
package summarizer
