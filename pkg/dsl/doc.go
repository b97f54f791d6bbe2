/*
Package dsl provides a fluent builder for authoring tutorials in Go.

It is used for hand-written tutorials, fixtures and tests, and produces the same
validated domain.Tutorial the generation pipeline does.

Example usage:

	t, err := dsl.New("cursor-agent-mode", "Cursor Agent Mode").
		Tool("cursor").
		Difficulty(domain.Beginner).
		Intro("Meet Agent Mode").CTA("Let's go").Done().
		Concept("What it does").
			Body("The agent <strong>edits files</strong> for you.").
			Diagram("Prompt to change", "You", "Agent", "Files").Highlight(1).
			Done().
		Quiz("Who edits the files?").
			Option("You", false).
			Option("The agent", true).
			Done().
		Celebration("Done!").Stats().Done().
		Build()
*/
package dsl
