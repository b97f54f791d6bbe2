// Package prompt turns source records into the prompts sent to the generation service.
package prompt
