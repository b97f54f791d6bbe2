/*
Package ports defines the driven ports (interfaces) of the Viben pipeline.

These interfaces decouple the generation and playback core from the storage
medium, the record source and the text-generation service.

# Key Interfaces

  - TutorialStore: Persists tutorials (file, memory, Redis, SQL).
  - RecordSource: Fetches source records (Airtable).
  - Generator: Turns a system and user prompt into response text (LLM).
  - Chatter: Continues an "ask" modality conversation.
  - DistributedLocker: Keeps one generation per record in flight across replicas.
*/
package ports
