package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChatModel struct {
	response *schema.Message
	err      error
	inputs   [][]*schema.Message
}

func (m *mockChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.inputs = append(m.inputs, input)
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *mockChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func newMockClient(mock *mockChatModel, created *[]string) *EinoClient {
	return NewEinoClientWithFactory(DefaultConfigFor(ProviderOpenAI), func(_ context.Context, name string) (model.BaseChatModel, error) {
		*created = append(*created, name)
		return mock, nil
	})
}

func TestEinoClient_GenerateJSON(t *testing.T) {
	mock := &mockChatModel{response: &schema.Message{Role: schema.Assistant, Content: "```json\n[]\n```"}}
	var created []string
	client := newMockClient(mock, &created)

	out, err := client.GenerateJSON(context.Background(), "plan", TierAdvanced)
	require.NoError(t, err)
	assert.Equal(t, "[]", out)

	require.Len(t, mock.inputs, 1)
	require.Len(t, mock.inputs[0], 2)
	assert.Equal(t, schema.System, mock.inputs[0][0].Role)
	assert.Equal(t, "plan", mock.inputs[0][1].Content)
	assert.Equal(t, []string{"gpt-4o"}, created)
}

func TestEinoClient_ReusesModelPerName(t *testing.T) {
	mock := &mockChatModel{response: &schema.Message{Role: schema.Assistant, Content: "ok"}}
	var created []string
	client := newMockClient(mock, &created)

	for i := 0; i < 3; i++ {
		_, err := client.GenerateContent(context.Background(), "hi", TierLite)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"gpt-4o-mini"}, created)
}

func TestEinoClient_Errors(t *testing.T) {
	var created []string
	failing := newMockClient(&mockChatModel{err: errors.New("boom")}, &created)
	_, err := failing.GenerateContent(context.Background(), "hi", TierLite)
	assert.ErrorContains(t, err, "boom")

	empty := newMockClient(&mockChatModel{response: &schema.Message{Role: schema.Assistant}}, &created)
	_, err = empty.GenerateJSON(context.Background(), "hi", TierLite)
	assert.ErrorContains(t, err, "empty response")
}

func TestNewEinoClient_RequiresKeyForOpenAI(t *testing.T) {
	_, err := NewEinoClient(context.Background(), DefaultConfigFor(ProviderOpenAI), "")
	assert.Error(t, err)

	_, err = NewEinoClient(context.Background(), DefaultConfigFor(ProviderGemini), "key")
	assert.Error(t, err)
}

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Provider: "anthropic"}, "key")
	assert.Error(t, err)

	_, err = NewClient(context.Background(), DefaultConfig(), "")
	assert.ErrorContains(t, err, "API key is required")
}
