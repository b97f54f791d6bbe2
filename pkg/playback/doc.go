// Package playback implements the learner-facing state machine over a tutorial's cards.
//
// A Session is positioned at exactly one card. Forward navigation with Advance is
// gated on quiz cards until an answer is recorded; GoBack and JumpTo are never gated.
// Choices schedule a deferred advance that the host resolves after Pending.Delay:
//
//	p, _ := sess.MakeChoice("pathStore", "backend")
//	time.AfterFunc(p.Delay, func() { events <- p }) // host serializes events
//	...
//	sess.Resolve(p) // no-op if the learner moved in the meantime
//
// Sessions are not safe for concurrent use. Hosts must serialize input events,
// which is what a single active view does naturally.
package playback
