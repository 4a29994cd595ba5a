package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
)

// Webhook header names.
const (
	WebhookTopicHeader = "X-Shopify-Topic"
	WebhookHMACHeader  = "X-Shopify-Hmac-Sha256"
	WebhookShopHeader  = "X-Shopify-Shop-Domain"
	WebhookIDHeader    = "X-Shopify-Webhook-Id"
)

// Webhook topics handled by the sync pipeline.
const (
	TopicProductsCreate  = "products/create"
	TopicProductsUpdate  = "products/update"
	TopicProductsDelete  = "products/delete"
	TopicOrdersFulfilled = "orders/fulfilled"
	TopicAppUninstalled  = "app/uninstalled"
)

// VerifyWebhookHMAC checks the base64-encoded HMAC-SHA256 digest Shopify
// attaches to webhook deliveries against the shared webhook secret.
func VerifyWebhookHMAC(secret string, body []byte, headerValue string) bool {
	if secret == "" || headerValue == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(headerValue))
}

// WebhookMetafield is a namespaced key/value pair in a webhook payload.
type WebhookMetafield struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}

// ProductWebhookPayload is the body of products/create|update|delete deliveries.
type ProductWebhookPayload struct {
	ID         int64              `json:"id"`
	AdminGID   string             `json:"admin_graphql_api_id"`
	Title      string             `json:"title"`
	Metafields []WebhookMetafield `json:"metafields"`
}

// ExternalID returns the product id as the mirror's external key.
func (p ProductWebhookPayload) ExternalID() string {
	if p.ID != 0 {
		return strconv.FormatInt(p.ID, 10)
	}
	return ParseGID(p.AdminGID)
}

// SustainabilityMetafields filters the payload down to the tracked namespace.
func (p ProductWebhookPayload) SustainabilityMetafields() map[string]string {
	out := make(map[string]string)
	for _, mf := range p.Metafields {
		if mf.Namespace == MetafieldNamespace {
			out[mf.Key] = mf.Value
		}
	}
	return out
}

// OrderWebhookPayload is the body of orders/fulfilled deliveries.
type OrderWebhookPayload struct {
	ID                int64  `json:"id"`
	AdminGID          string `json:"admin_graphql_api_id"`
	Name              string `json:"name"`
	FulfillmentStatus string `json:"fulfillment_status"`
	ShippingAddress   *struct {
		City      string   `json:"city"`
		Zip       string   `json:"zip"`
		Country   string   `json:"country_code"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"shipping_address"`
}

// ExternalID returns the order id as the mirror's external key.
func (o OrderWebhookPayload) ExternalID() string {
	if o.ID != 0 {
		return strconv.FormatInt(o.ID, 10)
	}
	return ParseGID(o.AdminGID)
}
