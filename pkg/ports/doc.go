/*
Package ports defines the driven ports (interfaces) of the Waypoint engine.

These interfaces decouple the dialogue core from external implementations, allowing
the engine to work with various storage backends, extractors and activity stores.

# Key Interfaces

  - Extractor: turns an utterance into a proposed slot diff (rules, LLM, or a chain).
  - Enricher: adds suggestions between gathering and synthesis.
  - ConversationStore: persists the Conversation between turns.
  - ActivityStore: receives the confirmed plan (activity and tasks).
  - DistributedLocker: serializes turns of one conversation across replicas.
*/
package ports
