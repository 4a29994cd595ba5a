package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookHMAC(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"id":1001,"title":"Bamboo Toothbrush"}`)

	assert.True(t, VerifyWebhookHMAC(secret, body, signBody(secret, body)))
	assert.False(t, VerifyWebhookHMAC(secret, body, signBody("other", body)))
	assert.False(t, VerifyWebhookHMAC(secret, []byte(`tampered`), signBody(secret, body)))
	assert.False(t, VerifyWebhookHMAC("", body, signBody(secret, body)))
	assert.False(t, VerifyWebhookHMAC(secret, body, ""))
}

func TestProductWebhookPayloadExternalID(t *testing.T) {
	withID := ProductWebhookPayload{ID: 1001, AdminGID: "gid://shopify/Product/1001"}
	assert.Equal(t, "1001", withID.ExternalID())

	gidOnly := ProductWebhookPayload{AdminGID: "gid://shopify/Product/2002"}
	assert.Equal(t, "2002", gidOnly.ExternalID())
}

func TestSustainabilityMetafieldsFiltersNamespace(t *testing.T) {
	payload := ProductWebhookPayload{Metafields: []WebhookMetafield{
		{Namespace: MetafieldNamespace, Key: KeySustainableMaterials, Value: "0.8"},
		{Namespace: "custom", Key: "color", Value: "green"},
		{Namespace: MetafieldNamespace, Key: KeyPackagingWeight, Value: "0.4"},
	}}

	got := payload.SustainabilityMetafields()
	assert.Equal(t, map[string]string{
		KeySustainableMaterials: "0.8",
		KeyPackagingWeight:      "0.4",
	}, got)
}
