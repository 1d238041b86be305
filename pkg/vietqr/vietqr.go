// Package vietqr builds VietQR quick-link image URLs for bank transfers.
package vietqr

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/techzonevn/storefront-backend/pkg/config"
)

const baseURL = "https://img.vietqr.io/image/"

// Builder renders payment links for one receiving account.
type Builder struct {
	bankID      string
	accountNo   string
	accountName string
	template    string
}

// New returns a Builder, or nil when the config lacks bank details.
func New(cfg config.VietQRConfig) *Builder {
	if !cfg.Enabled() {
		return nil
	}
	template := strings.TrimSpace(cfg.Template)
	if template == "" {
		template = "compact2"
	}
	return &Builder{
		bankID:      strings.TrimSpace(cfg.BankID),
		accountNo:   strings.TrimSpace(cfg.AccountNo),
		accountName: strings.TrimSpace(cfg.AccountName),
		template:    template,
	}
}

// PaymentURL returns the quick link for amount VND with the order number as
// the transfer note.
func (b *Builder) PaymentURL(amount int64, orderNumber string) (string, error) {
	if b == nil {
		return "", fmt.Errorf("vietqr is not configured")
	}
	if amount <= 0 {
		return "", fmt.Errorf("amount must be positive")
	}
	q := url.Values{}
	q.Set("amount", strconv.FormatInt(amount, 10))
	if info := strings.TrimSpace(orderNumber); info != "" {
		q.Set("addInfo", info)
	}
	if b.accountName != "" {
		q.Set("accountName", b.accountName)
	}
	path := fmt.Sprintf("%s-%s-%s.png", url.PathEscape(b.bankID), url.PathEscape(b.accountNo), url.PathEscape(b.template))
	return baseURL + path + "?" + q.Encode(), nil
}
