/*
Package waypoint is a slot-filling planning dialogue engine.

A conversation collects the facts a plan needs (where, when, with whom, budget...) by
asking one question at a time from a per-domain budget, accepts "no preference" as a
real answer, builds a draft plan and, once the user confirms, writes it as an activity
with ordered tasks.

# Concept

Every turn is explicit state passing: the engine receives the previous Conversation and
an utterance and returns the next Conversation, a reply and the progress. The Client
adds a session layer on top so hosts can address conversations by ID and let Waypoint
store them (memory, file, Redis, optionally encrypted).

# Usage

	client, err := waypoint.New(waypoint.WithMode(domain.ModeQuick))
	if err != nil {
		log.Fatal(err)
	}

	resp, err := client.Turn(ctx, "conv-1", "I'm flying to Dallas next weekend from Austin")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(resp.Message) // asks the next missing question

Stateless hosts call Process and keep resp.Conversation themselves.
*/
package waypoint
