package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	t.Parallel()

	k, err := ParseKind(" Stock_Alert ")
	require.NoError(t, err)
	assert.Equal(t, KindStockAlert, k)

	_, err = ParseKind("invoice")
	require.ErrorIs(t, err, ErrUnknownKind)

	assert.Len(t, Kinds(), 12)
	for _, k := range Kinds() {
		assert.True(t, k.Valid(), k)
		assert.NotNil(t, zeroPayload(k), k)
		assert.Equal(t, k, zeroPayload(k).Kind())
	}
}

func TestParsePriority(t *testing.T) {
	t.Parallel()

	p, err := ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, PriorityNormal, p)

	p, err = ParsePriority("HIGH")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	_, err = ParsePriority("urgent")
	require.ErrorIs(t, err, ErrInvalidPriority)
}

func TestRequest_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, NewRequest(Welcome{Name: "Ana"}, "ana@example.com").Validate())

	err := Request{Kind: "fax", Priority: "urgent"}.Validate()
	require.ErrorIs(t, err, ErrNoRecipients)
	require.ErrorIs(t, err, ErrUnknownKind)
	require.ErrorIs(t, err, ErrInvalidPriority)

	err = Request{Kind: KindWelcome, Payload: StockAlert{}, Recipients: []string{"a@example.com"}}.Validate()
	require.ErrorIs(t, err, ErrPayloadMismatch)

	err = NewRequest(Welcome{}, " ", "").Validate()
	require.ErrorIs(t, err, ErrNoRecipients)
}

func TestRequest_Normalize(t *testing.T) {
	t.Parallel()

	req := Request{Kind: KindWelcome, Recipients: []string{" a@example.com ", ""}}.Normalize()
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, PriorityNormal, req.Priority)
	assert.Equal(t, []string{"a@example.com"}, req.Recipients)
}

func TestRequest_JSON(t *testing.T) {
	t.Parallel()

	in := NewRequest(ProductionAlert{
		OrderRef:   "PS-1",
		AlertType:  ProductionDelay,
		Message:    "Waiting for paper",
		ReportedAt: time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC),
	}, "floor@example.com").WithPriority(PriorityLow)
	in.ID = "req-1"

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "req-1",
		"recipients": ["floor@example.com"],
		"kind": "production_alert",
		"priority": "low",
		"payload": {
			"order_ref": "PS-1",
			"alert_type": "delay",
			"message": "Waiting for paper",
			"reported_at": "2025-03-07T09:00:00Z"
		}
	}`, string(raw))

	var out Request
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestRequest_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var req Request
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"WELCOME","recipients":["a@example.com"]}`), &req))
	assert.Equal(t, KindWelcome, req.Kind)
	assert.Equal(t, Welcome{}, req.Payload)

	err := json.Unmarshal([]byte(`{"kind":"fax","recipients":["a@example.com"]}`), &req)
	require.ErrorIs(t, err, ErrUnknownKind)

	err = json.Unmarshal([]byte(`{"kind":"stock_alert","payload":{"items":"nope"}}`), &req)
	require.Error(t, err)
}
