package models

// OrderResult reports what happened while confirming a single order.
// NotificationSent reflects the delivery outcome; a false value is not an error.
type OrderResult struct {
	OrderID          string `json:"orderId"`
	NotificationSent bool   `json:"notificationSent"`
	WeatherChecked   bool   `json:"weatherChecked"`
	IsGoodWeather    bool   `json:"isGoodWeather"`
}
