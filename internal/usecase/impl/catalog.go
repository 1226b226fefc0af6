package impl

import (
	"context"
	"fmt"
	"time"

	"waypoint/internal/domain/entity"
	"waypoint/internal/usecase"
)

// MessageKey identifies a notification template in the catalog.
type MessageKey string

const (
	MsgOrderConfirmed     MessageKey = "order_confirmed"
	MsgOrderDelivered     MessageKey = "order_delivered"
	MsgOrderReminder      MessageKey = "order_reminder"
	MsgPromotion          MessageKey = "promotion"
	MsgRestaurantNewOrder MessageKey = "restaurant_new_order"
	MsgRestaurantReady    MessageKey = "restaurant_order_ready"
)

type messageTemplate struct {
	Type  entity.NotificationType
	Title string
	Body  string // fmt template receiving one argument.
}

// catalog maps message keys to title/body templates. Customer and
// restaurant convenience functions below are pure parameter mapping over
// Schedule; there is no scheduler subclassing per audience.
var catalog = map[MessageKey]messageTemplate{
	MsgOrderConfirmed: {
		Type:  entity.NotificationOrder,
		Title: "Order confirmed",
		Body:  "Your order %s has been confirmed and is being prepared.",
	},
	MsgOrderDelivered: {
		Type:  entity.NotificationOrder,
		Title: "Order delivered",
		Body:  "Order %s has been delivered. Enjoy your meal!",
	},
	MsgOrderReminder: {
		Type:  entity.NotificationReminder,
		Title: "Order on its way",
		Body:  "Your order %s should arrive soon.",
	},
	MsgPromotion: {
		Type:  entity.NotificationPromotion,
		Title: "Deal of the day",
		Body:  "Use code %s on your next order.",
	},
	MsgRestaurantNewOrder: {
		Type:  entity.NotificationOrder,
		Title: "New order received",
		Body:  "Order %s is waiting for confirmation.",
	},
	MsgRestaurantReady: {
		Type:  entity.NotificationOrder,
		Title: "Order ready for pickup",
		Body:  "Order %s is ready for the courier.",
	},
}

// catalogInput builds the schedule input for a catalog key.
func catalogInput(key MessageKey, arg string, data entity.NotificationData) *usecase.ScheduleInput {
	tpl := catalog[key]
	data.Type = tpl.Type

	return &usecase.ScheduleInput{
		Type:  tpl.Type,
		Title: tpl.Title,
		Body:  fmt.Sprintf(tpl.Body, arg),
		Data:  data,
	}
}

// Customer-facing convenience functions.

// NotifyOrderConfirmed schedules the order-confirmed alert.
func NotifyOrderConfirmed(ctx context.Context, uc usecase.NotificationUsecase, orderID string, delay time.Duration) (string, error) {
	return uc.Schedule(ctx, catalogInput(MsgOrderConfirmed, orderID, entity.NotificationData{OrderID: orderID}), delay)
}

// NotifyOrderDelivered schedules the order-delivered alert.
func NotifyOrderDelivered(ctx context.Context, uc usecase.NotificationUsecase, orderID string, delay time.Duration) (string, error) {
	return uc.Schedule(ctx, catalogInput(MsgOrderDelivered, orderID, entity.NotificationData{OrderID: orderID}), delay)
}

// NotifyOrderReminder schedules a delivery reminder for an order.
func NotifyOrderReminder(ctx context.Context, uc usecase.NotificationUsecase, orderID string, delay time.Duration) (string, error) {
	return uc.Schedule(ctx, catalogInput(MsgOrderReminder, orderID, entity.NotificationData{OrderID: orderID}), delay)
}

// NotifyPromotion schedules a promotion alert for a promo code.
func NotifyPromotion(ctx context.Context, uc usecase.NotificationUsecase, promoCode string, delay time.Duration) (string, error) {
	return uc.Schedule(ctx, catalogInput(MsgPromotion, promoCode, entity.NotificationData{PromoCode: promoCode}), delay)
}

// Restaurant-facing convenience functions.

// NotifyRestaurantNewOrder schedules the new-order alert for restaurant staff.
func NotifyRestaurantNewOrder(ctx context.Context, uc usecase.NotificationUsecase, orderID string, delay time.Duration) (string, error) {
	return uc.Schedule(ctx, catalogInput(MsgRestaurantNewOrder, orderID, entity.NotificationData{OrderID: orderID, Reference: "restaurant"}), delay)
}

// NotifyRestaurantOrderReady schedules the order-ready alert for restaurant staff.
func NotifyRestaurantOrderReady(ctx context.Context, uc usecase.NotificationUsecase, orderID string, delay time.Duration) (string, error) {
	return uc.Schedule(ctx, catalogInput(MsgRestaurantReady, orderID, entity.NotificationData{OrderID: orderID, Reference: "restaurant"}), delay)
}
