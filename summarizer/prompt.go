package summarizer

import "strings"

// SystemPrompt frames the summarization call.
const SystemPrompt = `You compress the working history of an AI coding agent. The summary you write replaces the original messages, so anything you leave out is lost to the agent.`

// DefaultPrompt is the user prompt template. {{existing}} and {{activity}}
// are replaced with the previous summary and the transcript to fold in.
const DefaultPrompt = `Below is part of the agent's conversation that is about to be removed from its context window. Write a continuation summary that lets the agent resume work without re-reading it.

Include, where relevant:

1. Task
The user's request, success criteria, and any constraints they stated

2. Work Done
Files created, modified, or read (with paths)
Commands and tools run, and what they returned
Key outputs or artifacts produced

3. Discoveries
Errors hit and how they were resolved
Approaches that did not work, and why
Decisions made

4. Open Items
What remains, blockers, and promises made to the user

Previous summary (fold it in, do not repeat it verbatim):
{{existing}}

Conversation to summarize:
{{activity}}

Be concise but complete. Prefer facts that prevent duplicate work. Wrap your summary in <summary></summary> tags.`

// noExistingSummary fills {{existing}} when there is no previous summary.
const noExistingSummary = "(none)"

// BuildPrompt fills a prompt template.
func BuildPrompt(template, existing, activity string) string {
	if template == "" {
		template = DefaultPrompt
	}
	if strings.TrimSpace(existing) == "" {
		existing = noExistingSummary
	}
	r := strings.NewReplacer("{{existing}}", existing, "{{activity}}", activity)
	return r.Replace(template)
}
