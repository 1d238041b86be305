package enums

import (
	"fmt"
	"strings"
)

// PaymentMethod is how the customer settles an order: cash on delivery or a
// VietQR bank transfer made before shipping.
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodVietQR PaymentMethod = "vietqr"
)

var paymentMethodLabels = map[PaymentMethod]string{
	PaymentMethodCOD:    "Thanh toán khi nhận hàng",
	PaymentMethodVietQR: "Chuyển khoản VietQR",
}

func (p PaymentMethod) String() string {
	return string(p)
}

func (p PaymentMethod) IsValid() bool {
	_, ok := paymentMethodLabels[p]
	return ok
}

// Prepaid reports whether the customer pays before the order ships, which is
// when a payment link is attached to the order.
func (p PaymentMethod) Prepaid() bool {
	return p == PaymentMethodVietQR
}

// Label is the customer-facing Vietnamese name, empty for unknown values.
func (p PaymentMethod) Label() string {
	return paymentMethodLabels[p]
}

// ParsePaymentMethod ignores case and surrounding spaces.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	p := PaymentMethod(strings.ToLower(strings.TrimSpace(value)))
	if !p.IsValid() {
		return "", fmt.Errorf("invalid payment method %q", value)
	}
	return p, nil
}
