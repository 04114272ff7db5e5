package generator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AshkanYarmoradi/go-foundation"
)

func versionedHandlers() []HandlerSettings {
	return []HandlerSettings{
		handler(QueryBus, "example.com/shop/queries.GetOrder", "example.com/shop/handlers.GetOrderV2", 2),
		handler(QueryBus, "example.com/shop/queries.ListOrders", "example.com/shop/handlers.ListOrdersHandler", 0),
		handler(QueryBus, "example.com/shop/queries.GetOrder", "example.com/shop/handlers.GetOrderV3", 3),
		handler(QueryBus, "example.com/shop/queries.GetOrder", "example.com/shop/handlers.GetOrderV1", 1),
	}
}

func TestBuildDispatchPlan_Grouping(t *testing.T) {
	plan, err := BuildDispatchPlan(QueryBus, versionedHandlers())
	require.NoError(t, err)

	require.Len(t, plan.Cases, 2)
	assert.Equal(t, "example.com/shop/queries.GetOrder", plan.Cases[0].Contract.FullName())
	assert.Equal(t, "example.com/shop/queries.ListOrders", plan.Cases[1].Contract.FullName())

	getOrder := plan.Cases[0]
	require.True(t, getOrder.Versioned())
	require.Len(t, getOrder.Versions, 3)
	assert.Equal(t, 1, getOrder.Versions[0].Settings.Version)
	assert.Equal(t, 2, getOrder.Versions[1].Settings.Version)
	assert.Equal(t, 3, getOrder.Versions[2].Settings.Version)
	assert.Equal(t, "GetOrderV3", getOrder.Latest.Settings.Handler.Name)

	listOrders := plan.Cases[1]
	assert.False(t, listOrders.Versioned())
	require.NotNil(t, listOrders.Single)
	assert.Equal(t, "ListOrdersHandler", listOrders.Single.Settings.Handler.Name)

	assert.False(t, plan.Abstract())
	assert.False(t, plan.Empty())
}

func TestBuildDispatchPlan_Deterministic(t *testing.T) {
	first, err := BuildDispatchPlan(QueryBus, versionedHandlers())
	require.NoError(t, err)
	second, err := BuildDispatchPlan(QueryBus, versionedHandlers())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildDispatchPlan_Empty(t *testing.T) {
	plan, err := BuildDispatchPlan(EventBus, nil)
	require.NoError(t, err)
	assert.True(t, plan.Empty())
	assert.False(t, plan.Abstract())
}

func TestBuildDispatchPlan_DuplicateVersion(t *testing.T) {
	handlers := append(versionedHandlers(),
		handler(QueryBus, "example.com/shop/queries.GetOrder", "example.com/shop/handlers.GetOrderV2Bis", 2))

	_, err := BuildDispatchPlan(QueryBus, handlers)
	require.Error(t, err)
	assert.True(t, errors.Is(err, foundation.ErrDuplicateHandlerVersion))

	var dup *foundation.DuplicateHandlerVersionError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "example.com/shop/queries.GetOrder", dup.Contract)
	assert.Equal(t, 2, dup.Version)
	assert.Len(t, dup.Handlers, 2)
}

// =============================================================================
// Resolution Tests
// =============================================================================

func TestDispatchPlan_Resolve(t *testing.T) {
	plan, err := BuildDispatchPlan(QueryBus, versionedHandlers())
	require.NoError(t, err)

	tests := []struct {
		name     string
		contract string
		strategy foundation.HandlerVersioningStrategy
		want     string
		found    bool
	}{
		{"latest version", "example.com/shop/queries.GetOrder", foundation.UseLatestVersion(), "GetOrderV3", true},
		{"specific version", "example.com/shop/queries.GetOrder", foundation.UseSpecificVersion(2), "GetOrderV2", true},
		{"missing version", "example.com/shop/queries.GetOrder", foundation.UseSpecificVersion(99), "", false},
		{"skip wins over versions", "example.com/shop/queries.GetOrder", foundation.SkipResolution(), "", false},
		{"skip wins over single", "example.com/shop/queries.ListOrders", foundation.SkipResolution(), "", false},
		{"single ignores version", "example.com/shop/queries.ListOrders", foundation.UseSpecificVersion(7), "ListOrdersHandler", true},
		{"unknown contract", "example.com/shop/queries.Unknown", foundation.UseLatestVersion(), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, ok := plan.Resolve(tt.contract, tt.strategy)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, ref.Settings.Handler.Name)
		})
	}
}

// =============================================================================
// Factory Tests
// =============================================================================

func TestBuildDispatchPlan_Factories(t *testing.T) {
	shared := HandlerSettings{
		Bus: CommandBus, Contract: ci("example.com/shop/orders.PlaceOrder"),
		Handler: ci("example.com/shop/handlers.OrderHandler"), MakeByFactory: true,
	}
	sameClass := shared
	sameClass.Contract = ci("example.com/shop/orders.CancelOrder")
	collision := HandlerSettings{
		Bus: CommandBus, Contract: ci("example.com/shop/billing.Refund"),
		Handler: ci("example.com/shop/billing-v2/handlers.OrderHandler"), MakeByFactory: true,
	}
	plain := handler(CommandBus, "example.com/shop/billing.Charge", "example.com/shop/handlers.ChargeHandler", 0)

	plan, err := BuildDispatchPlan(CommandBus, []HandlerSettings{shared, sameClass, plain, collision})
	require.NoError(t, err)

	assert.True(t, plan.Abstract())
	require.Len(t, plan.Factories, 2)
	assert.Equal(t, "MakeOrderHandler", plan.Factories[0].Name)
	assert.Equal(t, ci("example.com/shop/handlers.OrderHandler"), plan.Factories[0].Handler)
	assert.Equal(t, "Make_example_com_shop_billing_v2_handlers_OrderHandler", plan.Factories[1].Name)

	require.Len(t, plan.Cases, 4)
	assert.Equal(t, "MakeOrderHandler", plan.Cases[0].Single.Factory)
	assert.Equal(t, "MakeOrderHandler", plan.Cases[1].Single.Factory)
	assert.Equal(t, "", plan.Cases[2].Single.Factory)
	assert.Equal(t, "Make_example_com_shop_billing_v2_handlers_OrderHandler", plan.Cases[3].Single.Factory)
}

func TestBuildDispatchPlan_QualifiedFactoryCollision(t *testing.T) {
	factory := func(contract, h string) HandlerSettings {
		s := handler(CommandBus, contract, h, 0)
		s.MakeByFactory = true
		return s
	}
	handlers := []HandlerSettings{
		factory("example.com/shop/orders.PlaceOrder", "example.com/shop/x.Handler"),
		factory("example.com/shop/orders.CancelOrder", "example.com/shop/a-b.Handler"),
		factory("example.com/shop/orders.ShipOrder", "example.com/shop/a/b.Handler"),
		factory("example.com/shop/orders.ReturnOrder", "example.com/shop/a_b.Handler"),
	}

	plan, err := BuildDispatchPlan(CommandBus, handlers)
	require.NoError(t, err)

	var names []string
	for _, f := range plan.Factories {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"MakeHandler",
		"Make_example_com_shop_a_b_Handler",
		"Make_example_com_shop_a_b_Handler2",
		"Make_example_com_shop_a_b_Handler3",
	}, names)

	for i, c := range plan.Cases {
		assert.Equal(t, names[i], c.Single.Factory)
	}
}

func TestBuildDispatchPlan_VersionedFactories(t *testing.T) {
	v1 := handler(QueryBus, "example.com/shop/queries.GetOrder", "example.com/shop/handlers.GetOrderV1", 1)
	v2 := handler(QueryBus, "example.com/shop/queries.GetOrder", "example.com/shop/handlers.GetOrderV2", 2)
	v1.MakeByFactory = true
	v2.MakeByFactory = true

	plan, err := BuildDispatchPlan(QueryBus, []HandlerSettings{v2, v1})
	require.NoError(t, err)

	require.Len(t, plan.Factories, 2)
	assert.Equal(t, "MakeGetOrderV2", plan.Factories[0].Name)
	assert.Equal(t, "MakeGetOrderV1", plan.Factories[1].Name)
	assert.Equal(t, "MakeGetOrderV1", plan.Cases[0].Versions[0].Factory)
	assert.Equal(t, "MakeGetOrderV2", plan.Cases[0].Latest.Factory)
}
