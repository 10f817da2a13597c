// Package decision is the multi-criteria decision engine: Pareto
// filtering, min-max normalization, per-offer weight redistribution,
// weighted scoring, confidence estimation and template-based
// explanation synthesis.
//
// Everything here is pure and deterministic: no I/O, no clock, no
// randomness. The same offers and criteria always produce the same
// ranked output, which is what makes recommendations testable and lets
// an external LLM rephrase summaries without ever altering the facts.
package decision
