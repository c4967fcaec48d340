package llm_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/waypoint/pkg/adapters/llm"
	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeModel answers every chat completion with a tool call carrying args.
func fakeModel(t *testing.T, args string, status int) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var requests []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		_ = json.Unmarshal(body, &req)
		requests = append(requests, req)

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream down","type":"server_error"}}`))
			return
		}
		resp := map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test",
			"choices": []any{map[string]any{
				"index":         0,
				"finish_reason": "tool_calls",
				"message": map[string]any{
					"role": "assistant",
					"tool_calls": []any{map[string]any{
						"id":       "call_1",
						"type":     "function",
						"function": map[string]any{"name": "record_slots", "arguments": args},
					}},
				},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newExtractor(srv *httptest.Server) *llm.Extractor {
	return llm.New(llm.Config{APIKey: "test", BaseURL: srv.URL + "/v1"}, catalog.Default())
}

func TestExtractor_ConvertsToolCall(t *testing.T) {
	srv, requests := fakeModel(t, `{
		"domain": "travel",
		"slots": [
			{"key": "location.destination", "value": "Denver"},
			{"key": "companions", "values": ["wife"]},
			{"key": "budget.range", "no_preference": true},
			{"key": "event.guests", "value": "12"},
			{"key": "not.a.slot", "value": "x"}
		]
	}`, http.StatusOK)

	res, err := newExtractor(srv).Extract(context.Background(), domain.ExtractRequest{
		Utterance: "I want to fly to Denver next weekend with my wife, budget is flexible",
	})
	require.NoError(t, err)
	assert.Equal(t, "travel", res.DomainGuess)

	slots := domain.Merge(nil, res.Diff)
	assert.Equal(t, "Denver", slots.Get(domain.SlotDestination).Value)
	assert.Equal(t, []string{"wife"}, slots.Get(domain.SlotCompanions).Values)
	assert.Equal(t, domain.SlotNoPreference, slots.Get(domain.SlotBudget).Status)
	assert.False(t, slots.Answered(domain.SlotGuestCount), "keys outside the domain are dropped")

	require.Len(t, *requests, 1)
	tool := (*requests)[0]["tool_choice"].(map[string]any)
	assert.Equal(t, "record_slots", tool["function"].(map[string]any)["name"])
}

func TestExtractor_CorrectionOnlyForAnsweredSlots(t *testing.T) {
	srv, _ := fakeModel(t, `{"domain":"travel","intent":"correction","slots":[
		{"key":"location.destination","value":"Houston","correction":true},
		{"key":"timing.date","value":"May 3","correction":true}]}`, http.StatusOK)

	current := domain.Slots{domain.SlotDestination: domain.Filled("Dallas", domain.SourceExtracted)}
	res, err := newExtractor(srv).Extract(context.Background(), domain.ExtractRequest{
		Utterance: "actually make it Houston on May 3",
		Domain:    "travel",
		Slots:     current,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.IntentCorrection, res.Intent)

	slots := domain.Merge(current, res.Diff)
	assert.Equal(t, "Houston", slots.Get(domain.SlotDestination).Value)
	assert.Equal(t, domain.SourceCorrection, slots.Get(domain.SlotDestination).Source)
	assert.Equal(t, "May 3", slots.Get(domain.SlotDate).Value)
	assert.Equal(t, "Dallas", current.Get(domain.SlotDestination).Value, "input slots are not mutated")
}

func TestExtractor_BadArguments(t *testing.T) {
	srv, _ := fakeModel(t, `{not json`, http.StatusOK)
	_, err := newExtractor(srv).Extract(context.Background(), domain.ExtractRequest{Utterance: "hi", Domain: "travel"})
	assert.ErrorIs(t, err, llm.ErrBadResponse)
}

func TestExtractor_FailbackToRules(t *testing.T) {
	srv, _ := fakeModel(t, "", http.StatusInternalServerError)
	cat := catalog.Default()
	chain := extract.NewFailback(newExtractor(srv), extract.NewRules(cat))

	res, err := chain.Extract(context.Background(), domain.ExtractRequest{Utterance: "trip to Rome in May"})
	require.NoError(t, err)
	assert.Equal(t, "travel", res.DomainGuess)
	assert.Equal(t, "Rome", domain.Merge(nil, res.Diff).Get(domain.SlotDestination).Value)
}
