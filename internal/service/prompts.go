package service

import "fmt"

const simplifyPromptFmt = `You are a legal assistant who explains contracts to non-lawyers.
Rewrite the following clause in plain English. Keep every obligation and
deadline intact, avoid legal jargon, and answer with the explanation only.

Clause:
%s`

const riskyTermsPromptFmt = `You are a contract risk reviewer. Identify terms in the clause below
that could disadvantage the signing party.

Respond with ONLY a JSON array. Each element must have exactly these keys:
  "term": the risky term as it appears in the clause
  "severity": one of "high", "moderate", "low"
  "explanation": one sentence on why the term is risky

Return [] if nothing is risky.

Clause:
%s`

const legalReferencesPromptFmt = `You are a legal research assistant. List statutes, regulations, or
government articles relevant to the clause below.

Respond with ONLY a JSON array. Each element must have exactly these keys:
  "title": the official name of the statute or article
  "url": an absolute URL to an authoritative source
  "relevance": one sentence on how it applies to this clause

Return [] if nothing applies.

Clause:
%s`

const semanticFollowupPromptFmt = `You are a legal assistant answering a follow-up question about a
previously analyzed contract clause. Use ONLY the context fragments below;
if they do not contain the answer, say so plainly.

Context:
%s

Question: %s

Answer in plain English, citing the fragment numbers you relied on.`

const advancedFollowupPromptFmt = `You are a legal assistant answering a follow-up question about a
contract clause. Ground your answer in the clause text below, explain any
legal terms you use, and keep the answer under five sentences.

Clause:
%s

Question: %s`

const legacyFollowupPromptFmt = `Clause: %s

Question: %s

Answer the question about the clause above.`

func simplifyPrompt(clause string) string {
	return fmt.Sprintf(simplifyPromptFmt, clause)
}

func riskyTermsPrompt(clause string) string {
	return fmt.Sprintf(riskyTermsPromptFmt, clause)
}

func legalReferencesPrompt(clause string) string {
	return fmt.Sprintf(legalReferencesPromptFmt, clause)
}

func semanticFollowupPrompt(contextSummary, question string) string {
	return fmt.Sprintf(semanticFollowupPromptFmt, contextSummary, question)
}

func advancedFollowupPrompt(clause, question string) string {
	return fmt.Sprintf(advancedFollowupPromptFmt, clause, question)
}

func legacyFollowupPrompt(clause, question string) string {
	return fmt.Sprintf(legacyFollowupPromptFmt, clause, question)
}
