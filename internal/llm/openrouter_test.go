package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(b)
}

func TestOpenRouterCompleteStructured(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(completionBody(`{"action":"CALL","amount":0,"reasoning":"ok","confidence":0.8}`)))
	}))
	defer srv.Close()

	gw := NewOpenRouter(srv.URL, "sk-test", 5*time.Second, pipelineLogger())
	raw, err := gw.CompleteStructured(context.Background(), "openai/gpt-4.1-mini", "sys", "prompt", decisionSchema)
	require.NoError(t, err)

	var r response
	require.NoError(t, json.Unmarshal(raw, &r))
	assert.Equal(t, "CALL", r.Action)

	assert.Equal(t, "openai/gpt-4.1-mini", gotReq.Model)
	require.NotNil(t, gotReq.ResponseFormat)
	assert.Equal(t, "json_schema", gotReq.ResponseFormat.Type)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
}

func TestOpenRouterStructuredUnsupported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"response_format is not supported for this model"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	gw := NewOpenRouter(srv.URL, "sk-test", 5*time.Second, pipelineLogger())
	_, err := gw.CompleteStructured(context.Background(), "m", "sys", "prompt", decisionSchema)
	assert.ErrorIs(t, err, ErrStructuredUnsupported)
}

func TestOpenRouterCompleteText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Nil(t, req.ResponseFormat)
		w.Write([]byte(completionBody("ACTION: FOLD\nCONFIDENCE: 0.9")))
	}))
	defer srv.Close()

	gw := NewOpenRouter(srv.URL, "sk-test", 5*time.Second, pipelineLogger())
	content, err := gw.CompleteText(context.Background(), "m", "sys", "prompt")
	require.NoError(t, err)
	assert.Contains(t, content, "ACTION: FOLD")
}

func TestOpenRouterServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	gw := NewOpenRouter(srv.URL, "sk-test", 5*time.Second, pipelineLogger())
	_, err := gw.CompleteStructured(context.Background(), "m", "sys", "prompt", decisionSchema)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStructuredUnsupported)
}

func TestOpenRouterNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	gw := NewOpenRouter(srv.URL, "sk-test", 5*time.Second, pipelineLogger())
	_, err := gw.CompleteText(context.Background(), "m", "sys", "prompt")
	assert.Error(t, err)
}
