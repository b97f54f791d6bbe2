/*
Package domain contains the core models of the Viben tutorial pipeline.

It defines the tutorial card sequence, the source records tutorials are generated
from, and the error taxonomy shared by every adapter. This package is kept free of
I/O and persistence concerns.

# Key Entities

  - Card: One step of a tutorial, discriminated by CardType (intro, concept, action, quiz, choice, milestone, celebration).
  - Modalities: Optional read/watch/try/ask presentations attachable to a card.
  - Tutorial: An ordered, non-empty card sequence plus metadata and source attribution.
  - TutorialSummary: The listing projection of a stored Tutorial.
  - SourceRecord: The video-derived record a tutorial is generated from.
*/
package domain
