// Package semantic implements the AI-assisted matching mode: instead of a
// pattern, the caller supplies a keyword and the matcher ranks the words of
// the input text by embedding similarity to it.
//
// # Components
//
//   - Embedder: interface over embedding providers
//   - OpenAIProvider: any OpenAI-compatible /embeddings endpoint
//   - LocalProvider: deterministic hash-derived vectors, no network
//   - Cache: LRU cache of embeddings keyed by content hash
//   - Matcher: tokenizes text, embeds candidates in one batch, ranks by
//     cosine similarity with a floor of SimilarityThreshold
//
// # Provider selection
//
// NewFromEnv picks a provider from the environment:
//
//	DEEPGREP_EMBEDDING_PROVIDER  explicit choice (openai, local)
//	OPENAI_API_KEY               enables the openai provider
//	DEEPGREP_EMBEDDING_BASE_URL  overrides the API endpoint
//	DEEPGREP_EMBEDDING_MODEL     overrides the model name
//
// With no configuration the local provider is used, which keeps the
// semantic tools usable offline and makes test runs reproducible.
package semantic
