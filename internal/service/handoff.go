package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/linemk/belekbox-shop/internal/domain/models"
)

const (
	handoffGreeting    = "Здравствуйте! Хочу заказать:"
	handoffNoPhone     = "Не указан"
	handoffNoComment   = "Нет комментария"
	handoffDeliveryMsg = "Доставка по всему Кыргызстану. Самовывоз в Бишкеке."
	whatsAppBaseURL    = "https://wa.me/"
)

// ComposeHandoffMessage собирает текст заказа для менеджера. Строки товаров идут в порядке корзины.
func ComposeHandoffMessage(order *models.Order) string {
	var b strings.Builder

	b.WriteString(handoffGreeting + "\n\n")
	fmt.Fprintf(&b, "Заказ #%s\n\n", order.OrderNumber)
	b.WriteString("Товары:\n")
	for i, item := range order.Items {
		fmt.Fprintf(&b, "%d. %s - %d шт. × %d сом = %d сом\n", i+1, item.Name, item.Quantity, item.Price, item.Subtotal())
	}
	fmt.Fprintf(&b, "\nИтого: %d сом\n\n", order.TotalAmount)
	fmt.Fprintf(&b, "Телефон: %s\n", valueOr(order.ClientPhone, handoffNoPhone))
	fmt.Fprintf(&b, "Комментарий: %s\n\n", valueOr(order.ClientComment, handoffNoComment))
	b.WriteString(handoffDeliveryMsg)

	return b.String()
}

// BuildHandoffURL - ссылка wa.me с готовым текстом. Сервер её не вызывает, её открывает покупатель.
func BuildHandoffURL(number, message string) string {
	// QueryEscape кодирует пробел как "+", а wa.me ожидает %20
	encoded := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return whatsAppBaseURL + number + "?text=" + encoded
}

func valueOr(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}
