/*
Package domain contains the core models of the Waypoint planning dialogue engine.

It defines the state a planning conversation carries between turns: typed tri-state
slots, the asked-question set, the forward-only phase machine and the plan draft
produced at the end of gathering. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Slot: a named piece of planning information, either unset, filled, or explicitly
    answered with no preference.
  - SlotDiff: the proposed updates an extractor derives from one utterance.
  - QuestionSet: the append-only set of question identifiers already presented.
  - Conversation: the explicit state passed into and returned from every turn.
  - PlanDraft: the activity and tasks synthesized once gathering is complete.
*/
package domain
