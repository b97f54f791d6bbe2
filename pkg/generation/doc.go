// Package generation validates text returned by the generation service into tutorials.
// It never retries or repairs output; callers own the retry policy.
package generation
