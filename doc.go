/*
Package viben turns video-derived source records into interactive tutorial card
sequences and plays them back.

A Pipeline fetches a record, builds a prompt from it, asks a language model for a
tutorial, validates the answer against the card model and stores the result.
Stored tutorials are opened as playback sessions: a step-by-step state machine
with quiz gating, learner choices and per-card presentation modalities.

# Usage

	records := airtable.New(os.Getenv("AIRTABLE_PAT"))
	model, err := llm.New("anthropic", llm.Config{APIKey: os.Getenv("ANTHROPIC_API_KEY")})
	if err != nil {
		log.Fatal(err)
	}

	p, err := viben.New(
		viben.WithRecords(records),
		viben.WithGenerator(model),
		viben.WithStore(file.New("tutorials")),
	)
	if err != nil {
		log.Fatal(err)
	}

	res, err := p.Generate(ctx, "recABC123", viben.GenerateOptions{})
	if err != nil {
		log.Fatal(err)
	}

	sess, err := p.Play(ctx, res.Tutorial.ID)
	if err != nil {
		log.Fatal(err)
	}
	for sess.Advance() {
		fmt.Println(sess.Card().Title)
	}

# Errors

Failures are reported with the kinds defined in pkg/domain: ErrParse for model
output that is not JSON, ErrShape for JSON that breaks the card model, ErrNotFound
for unknown ids and ErrStorage for persistence faults. Nothing is retried; callers
decide.
*/
package viben
