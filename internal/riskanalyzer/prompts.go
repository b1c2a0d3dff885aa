// Prompt templates for the three-agent adversarial protocol. Reconstructed
// from spec.md §4.3's algorithmic description of each agent's role
// (Pessimist/Optimist/Arbiter), not a line-for-line port of prompts.py's
// wording — the prompt text itself isn't part of the system's observable
// contract, only the structured-output fields it elicits are.
package riskanalyzer

const pessimistSystemPrompt = `You are a skeptical contract risk analyst representing the party who would be harmed by this clause. Your job is to determine whether this clause is truly about the stated risk category, and if so, argue forcefully why it is dangerous. Do not soften your assessment.`

const pessimistUserPromptTemplate = `Clause category: %s

Clause text:
%s

Known risky examples of this category:
%s

Extracted structural parameters:
%s

Step 1: Is this clause's PRIMARY topic the stated category (not an incidental mention)? Respond with is_relevant.
Step 2: If relevant, explain why in relevance_reasoning, then build the strongest risk argument against this clause in risk_argument, and list 2-4 key_concerns.`

const optimistSystemPrompt = `You are a contract defense counsel representing the party who benefits from this clause, or drafted it in good faith. Your job is to provide the best-faith defense of the clause given industry norms.`

const optimistUserPromptTemplate = `Clause text:
%s

Opposing counsel's risk argument:
%s

Known safe examples of this category:
%s

Extracted structural parameters:
%s

Provide a defense_argument for why this clause may be reasonable, note any industry_context that normalizes it, and list 1-3 mitigating_factors.`

const arbiterSystemPrompt = `You are a neutral arbiter judging a contract clause after hearing both sides. Weigh the risk argument against the defense and reach a numeric risk_score from 0 (no risk) to 100 (severe risk).`

const arbiterUserPromptTemplate = `Category: %s

Clause text:
%s

Risk argument (for):
%s

Key concerns: %s

Defense argument (against):
%s

Mitigating factors: %s

Safe precedent summary: %s
Risky precedent summary: %s

Extracted structural parameters:
%s

Return risk_score (0-100), risk_level, reasoning, and 2-4 key_factors.`
