package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AshkanYarmoradi/go-foundation/eventsourcing"
)

// =============================================================================
// Local Bus Tests
// =============================================================================

func TestLocalBusGenerator(t *testing.T) {
	file, plan, err := NewLocalBusGenerator(testModule).Generate(QueryBus, versionedHandlers())
	require.NoError(t, err)
	require.NotNil(t, plan)

	assert.Equal(t, "queries/generated/local_query_bus.go", file.Path)
	src := file.Content

	assert.True(t, strings.HasPrefix(src, "// Code generated by foundation (local_bus). DO NOT EDIT."))
	assert.Contains(t, src, "package generated")
	assert.Contains(t, src, `foundation "github.com/AshkanYarmoradi/go-foundation"`)
	assert.Contains(t, src, `"example.com/shop/handlers"`)
	assert.Contains(t, src, "type LocalQueryBus struct")
	assert.Contains(t, src, "var _ foundation.LocalQueryBus = (*LocalQueryBus)(nil)")
	assert.Contains(t, src, "func NewLocalQueryBus(infrastructure foundation.Infrastructure) *LocalQueryBus")
	assert.Contains(t, src, "func (b *LocalQueryBus) Process(ctx context.Context, query foundation.Query) (any, error)")
	assert.Contains(t, src, "foundation.NewHandlerNotFoundError(foundation.BusQuery, query.QueryType())")
	assert.Contains(t, src, `case "example.com/shop/queries.GetOrder":`)
	assert.Contains(t, src, `case "example.com/shop/queries.ListOrders":`)
	assert.Contains(t, src, "return handlers.NewGetOrderV3(b.infrastructure)")
	assert.Contains(t, src, "return handlers.NewListOrdersHandler(b.infrastructure)")
	assert.Contains(t, src, "case 2:")
	assert.NotContains(t, src, "Factory")

	// Skip is checked before the contract switch.
	assert.Less(t, strings.Index(src, "strategy.Skip()"), strings.Index(src, "switch instance.QueryType()"))
	// Latest is checked before specific versions.
	assert.Less(t, strings.Index(src, "strategy.UseLatestVersion()"), strings.Index(src, "switch strategy.SpecificVersion()"))
}

func TestLocalBusGenerator_Deterministic(t *testing.T) {
	first, _, err := NewLocalBusGenerator(testModule).Generate(QueryBus, versionedHandlers())
	require.NoError(t, err)
	second, _, err := NewLocalBusGenerator(testModule).Generate(QueryBus, versionedHandlers())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLocalBusGenerator_Factory(t *testing.T) {
	h := handler(CommandBus, "example.com/shop/orders.PlaceOrder", "example.com/shop/handlers.PlaceOrderHandler", 0)
	h.MakeByFactory = true
	plain := handler(CommandBus, "example.com/shop/orders.CancelOrder", "example.com/shop/handlers.CancelOrderHandler", 0)

	file, plan, err := NewLocalBusGenerator(testModule).Generate(CommandBus, []HandlerSettings{h, plain})
	require.NoError(t, err)
	assert.True(t, plan.Abstract())

	src := file.Content
	assert.Contains(t, src, "type LocalCommandBusFactory interface")
	assert.Contains(t, src, "MakePlaceOrderHandler() foundation.CommandHandler")
	assert.Contains(t, src, "func NewLocalCommandBus(infrastructure foundation.Infrastructure, factory LocalCommandBusFactory) *LocalCommandBus")
	assert.Contains(t, src, "return b.factory.MakePlaceOrderHandler()")
	assert.Contains(t, src, "return handlers.NewCancelOrderHandler(b.infrastructure)")
	assert.Contains(t, src, "func (b *LocalCommandBus) Process(ctx context.Context, command foundation.Command) error")
}

func TestLocalBusGenerator_QualifiedFactoryCollision(t *testing.T) {
	var handlers []HandlerSettings
	for i, h := range []string{"example.com/shop/x.Handler", "example.com/shop/a-b.Handler", "example.com/shop/a/b.Handler"} {
		s := handler(CommandBus, "example.com/shop/orders.Order"+string(rune('A'+i)), h, 0)
		s.MakeByFactory = true
		handlers = append(handlers, s)
	}

	file, _, err := NewLocalBusGenerator(testModule).Generate(CommandBus, handlers)
	require.NoError(t, err)

	src := file.Content
	assert.Equal(t, 1, strings.Count(src, "\tMakeHandler() foundation.CommandHandler"))
	assert.Equal(t, 1, strings.Count(src, "\tMake_example_com_shop_a_b_Handler() foundation.CommandHandler"))
	assert.Equal(t, 1, strings.Count(src, "\tMake_example_com_shop_a_b_Handler2() foundation.CommandHandler"))
	assert.Contains(t, src, "return b.factory.Make_example_com_shop_a_b_Handler2()")
}

func TestLocalBusGenerator_Comments(t *testing.T) {
	query, _, err := NewLocalBusGenerator(testModule).Generate(QueryBus, versionedHandlers())
	require.NoError(t, err)
	assert.Contains(t, query.Content, "// LocalQueryBus routes queries to their handlers.")
	assert.NotContains(t, query.Content, "querys")

	h := handler(EventBus, "example.com/shop/events.OrderPlaced", "example.com/shop/handlers.OrderPlacedHandler", 0)
	event, _, err := NewLocalBusGenerator(testModule).Generate(EventBus, []HandlerSettings{h})
	require.NoError(t, err)
	assert.Contains(t, event.Content, "// LocalEventBus routes events to their handlers.")
}

func TestLocalBusGenerator_ReservedAlias(t *testing.T) {
	h := handler(EventBus, "example.com/shop/events.OrderPlaced", "example.com/shop/event.OrderPlacedHandler", 0)

	file, _, err := NewLocalBusGenerator(testModule).Generate(EventBus, []HandlerSettings{h})
	require.NoError(t, err)
	assert.Contains(t, file.Content, `eventpkg "example.com/shop/event"`)
	assert.Contains(t, file.Content, "return eventpkg.NewOrderPlacedHandler(b.infrastructure)")
}

func TestLocalBusGenerator_Duplicate(t *testing.T) {
	handlers := []HandlerSettings{
		handler(QueryBus, "example.com/shop/queries.GetOrder", "example.com/shop/handlers.A", 1),
		handler(QueryBus, "example.com/shop/queries.GetOrder", "example.com/shop/handlers.B", 1),
	}
	_, _, err := NewLocalBusGenerator(testModule).Generate(QueryBus, handlers)
	assert.Error(t, err)
}

// =============================================================================
// Message Translator Tests
// =============================================================================

func TestMessageTranslatorGenerator_Struct(t *testing.T) {
	setting := ContractSetting{Contract: ci("example.com/shop/orders.PlaceOrder")}

	t.Run("tagged", func(t *testing.T) {
		messaging := &MessagingSetting{Contract: setting.Contract, Type: "order.place"}
		file, err := NewMessageTranslatorGenerator(testModule).Generate(setting, messaging, setting.Contract, nil)
		require.NoError(t, err)

		src := file.Content
		assert.Equal(t, "orders/generated/place_order_message_translator.go", file.Path)
		assert.Contains(t, src, "type PlaceOrderMessageTranslator struct{}")
		assert.Contains(t, src, "foundation.MessageTranslator[orders.PlaceOrder]")
		assert.Contains(t, src, `foundation.HasStringAttribute(message, foundation.AttributeType, "order.place")`)
		assert.Contains(t, src, `codec.MustLookup("json")`)
		assert.Contains(t, src, "return *out, nil")
		assert.Contains(t, src, "foundation.EncodeBody(t.codec(), &input)")
		assert.Contains(t, src, `foundation.CreateStringAttribute("example.com/shop/orders.PlaceOrder")`)
		assert.NotContains(t, src, "func (PlaceOrderMessageTranslator) make")
	})

	t.Run("untagged falls back to body type", func(t *testing.T) {
		file, err := NewMessageTranslatorGenerator(testModule).Generate(setting, nil, setting.Contract, nil)
		require.NoError(t, err)

		src := file.Content
		assert.Contains(t, src, `foundation.HasStringAttribute(message, foundation.AttributeBodyType, "example.com/shop/orders.PlaceOrder")`)
		assert.NotContains(t, src, "foundation.AttributeType:")
	})

	t.Run("codec", func(t *testing.T) {
		msgpack := setting
		msgpack.Codec = "msgpack"
		file, err := NewMessageTranslatorGenerator(testModule).Generate(msgpack, nil, setting.Contract, nil)
		require.NoError(t, err)
		assert.Contains(t, file.Content, `codec.MustLookup("msgpack")`)
	})
}

func TestMessageTranslatorGenerator_Interface(t *testing.T) {
	setting := ContractSetting{
		Contract: ci("example.com/shop/orders.Order"),
		Properties: []Property{
			{Name: "ID"},
			{Name: "Total", Getter: "Amount"},
			{Name: "Summary", HasBody: true},
		},
	}
	impl := ci("example.com/shop/orders/data.OrderData")

	file, err := NewMessageTranslatorGenerator(testModule).Generate(setting, nil, impl, setting.Properties)
	require.NoError(t, err)

	src := file.Content
	assert.Contains(t, src, "func (OrderMessageTranslator) makeOrderData(instance orders.Order) *data.OrderData")
	assert.Contains(t, src, "if v, ok := instance.(*data.OrderData); ok")
	assert.Contains(t, src, "instance.GetID()")
	assert.Contains(t, src, "instance.Amount()")
	assert.NotContains(t, src, "Summary")
	assert.Contains(t, src, "return out, nil")
	assert.Contains(t, src, "foundation.ErrNilContract")
	assert.Contains(t, src, "foundation.EncodeBody(t.codec(), t.makeOrderData(input))")
	assert.Contains(t, src, `foundation.CreateStringAttribute("example.com/shop/orders/data.OrderData")`)
}

// =============================================================================
// Mockable Bus Tests
// =============================================================================

func TestMockableBusGenerator(t *testing.T) {
	handlers := []HandlerSettings{
		handler(QueryBus, "example.com/shop/queries.GetOrder", "example.com/shop/handlers.GetOrderHandler", 0),
		handler(QueryBus, "example.com/shop/queries/admin.GetOrder", "example.com/shop/handlers.AdminGetOrderHandler", 0),
	}

	file, err := NewMockableBusGenerator(testModule).Generate(QueryBus, handlers)
	require.NoError(t, err)

	src := file.Content
	assert.Equal(t, "queries/generated/mocks/mockable_local_query_bus.go", file.Path)
	assert.Contains(t, src, "package mocks")
	assert.Contains(t, src, "*mocking.MockableQueryBus")
	assert.Contains(t, src, "func NewMockableLocalQueryBus(bus foundation.LocalQueryBus) *MockableLocalQueryBus")
	assert.Contains(t, src, "func (b *MockableLocalQueryBus) WhenProcessingGetOrder() *mocking.Stub")
	assert.Contains(t, src, "func (b *MockableLocalQueryBus) ShouldProcessGetOrder() *mocking.Expectation")
	assert.Contains(t, src, "WhenProcessing_example_com_shop_queries_admin_GetOrder()")
	assert.Contains(t, src, `b.WhenProcessing("example.com/shop/queries/admin.GetOrder")`)
	assert.Contains(t, src, "stub and verify queries")
}

func TestMockableBusGenerator_QualifiedCollision(t *testing.T) {
	handlers := []HandlerSettings{
		handler(CommandBus, "example.com/shop/x.Order", "example.com/shop/handlers.X", 0),
		handler(CommandBus, "example.com/shop/a-b.Order", "example.com/shop/handlers.AB", 0),
		handler(CommandBus, "example.com/shop/a/b.Order", "example.com/shop/handlers.SlashB", 0),
	}

	file, err := NewMockableBusGenerator(testModule).Generate(CommandBus, handlers)
	require.NoError(t, err)

	src := file.Content
	assert.Equal(t, 1, strings.Count(src, "func (b *MockableLocalCommandBus) WhenProcessingOrder()"))
	assert.Equal(t, 1, strings.Count(src, "func (b *MockableLocalCommandBus) WhenProcessing_example_com_shop_a_b_Order()"))
	assert.Equal(t, 1, strings.Count(src, "func (b *MockableLocalCommandBus) WhenProcessing_example_com_shop_a_b_Order2()"))
	assert.Contains(t, src, `b.WhenProcessing("example.com/shop/a/b.Order")`)
	assert.Contains(t, src, "stub and verify commands")
}

// =============================================================================
// Event Fields Tests
// =============================================================================

func TestEventFieldsGenerator(t *testing.T) {
	settings := EventSettings{
		Event: ci("example.com/shop/orders.OrderPlaced"),
		Fields: map[string]eventsourcing.Setting{
			"total":     {},
			"email":     {Encrypted: true, Faked: "email"},
			"createdAt": {Metadata: true},
		},
	}

	file, err := NewEventFieldsGenerator(testModule).Generate(settings)
	require.NoError(t, err)

	src := file.Content
	assert.Equal(t, "orders/generated/order_placed_fields.go", file.Path)
	assert.Contains(t, src, "var OrderPlacedFields = map[string]eventsourcing.Setting{")
	assert.Contains(t, src, `{Encrypted: true, Faked: "email"}`)
	assert.Contains(t, src, "{Metadata: true}")

	// Keys are sorted.
	assert.Less(t, strings.Index(src, `"createdAt"`), strings.Index(src, `"email"`))
	assert.Less(t, strings.Index(src, `"email"`), strings.Index(src, `"total"`))
}

// =============================================================================
// Infrastructure Provider Tests
// =============================================================================

func TestInfrastructureProviderGenerator(t *testing.T) {
	factoryBuilt := handler(CommandBus, "example.com/shop/orders.PlaceOrder", "example.com/shop/handlers.PlaceOrderHandler", 0)
	factoryBuilt.MakeByFactory = true

	s := &Settings{
		Contracts: []ContractSetting{
			{Contract: ci("example.com/shop/orders.PlaceOrder")},
			{Contract: ci("example.com/shop/queries.GetOrder")},
		},
		Handlers: []HandlerSettings{
			handler(QueryBus, "example.com/shop/queries.GetOrder", "example.com/shop/handlers.GetOrderHandler", 0),
			factoryBuilt,
		},
		Events: []EventSettings{{
			Event:  ci("example.com/shop/orders.OrderPlaced"),
			Fields: map[string]eventsourcing.Setting{"email": {Encrypted: true}},
		}},
	}

	file, err := NewInfrastructureProviderGenerator(testModule).Generate(s)
	require.NoError(t, err)

	src := file.Content
	assert.Equal(t, "generated/auto_generated_infrastructure_provider.go", file.Path)
	assert.Contains(t, src, "type AutoGeneratedInfrastructureProvider struct")
	assert.Contains(t, src, "generated.PlaceOrderMessageTranslator{}")
	assert.Contains(t, src, "generated2.GetOrderMessageTranslator{}")
	assert.Contains(t, src, "func (p *AutoGeneratedInfrastructureProvider) QueryBus() *generated2.LocalQueryBus")
	assert.NotContains(t, src, "CommandBus()")
	assert.Contains(t, src, `case "example.com/shop/orders.OrderPlaced":`)
	assert.Contains(t, src, "return generated.OrderPlacedFields, true")
	assert.Contains(t, src, "eventsourcing.ProcessRawJSON(p.infrastructure, fields, raw)")
}

func TestInfrastructureProviderGenerator_NoEvents(t *testing.T) {
	s := &Settings{Contracts: []ContractSetting{{Contract: ci("example.com/shop/orders.PlaceOrder")}}}

	file, err := NewInfrastructureProviderGenerator(testModule).Generate(s)
	require.NoError(t, err)
	assert.NotContains(t, file.Content, "eventsourcing")
	assert.NotContains(t, file.Content, "EventFields")
}
