// Package ports declares the interfaces between the Forager engine and
// its collaborators: pipeline stages, data-source providers, the
// optional LLM summarizer and session stores. Adapters implement these
// interfaces; the engine depends only on this package.
package ports
